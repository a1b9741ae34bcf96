package bus

import (
	"context"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
)

type logBus struct {
	log *logger.Logger
}

// NewLogBus is used when no redis address is configured.
func NewLogBus(log *logger.Logger) Bus {
	if log == nil {
		log = logger.NewNop()
	}
	return &logBus{log: log.With("service", "LogContentBus")}
}

func (b *logBus) Publish(_ context.Context, ev realtime.ContentEvent) error {
	b.log.Info("content changed",
		"entity_type", ev.EntityType,
		"entity_id", ev.EntityID,
		"action", ev.Action,
		"full_code", ev.FullCode,
	)
	return nil
}

func (b *logBus) Close() error { return nil }
