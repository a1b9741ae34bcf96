package bus

import (
	"context"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
)

// Bus carries content events to the external notification sender.
type Bus interface {
	Publish(ctx context.Context, ev realtime.ContentEvent) error
	Close() error
}
