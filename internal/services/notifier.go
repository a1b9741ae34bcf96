package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dispatch"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime/bus"
)

// ContentNotifier tells the outside world that content changed. Notify never
// blocks on delivery and never reports failure to the caller.
type ContentNotifier interface {
	Notify(ctx context.Context, ev realtime.ContentEvent)
	Close(ctx context.Context) error
}

type NotifierOptions struct {
	QueueSize int
	// Timeout bounds a single publish.
	Timeout time.Duration
	Sink    dispatch.ErrorSink
}

type contentNotifier struct {
	log   *logger.Logger
	bus   bus.Bus
	queue *dispatch.Queue[realtime.ContentEvent]
	now   func() time.Time
}

func NewContentNotifier(log *logger.Logger, b bus.Bus, opts NotifierOptions) ContentNotifier {
	serviceLog := log.With("service", "ContentNotifier")
	if b == nil {
		b = bus.NewLogBus(log)
	}
	n := &contentNotifier{
		log: serviceLog,
		bus: b,
		now: func() time.Time { return time.Now().UTC() },
	}
	n.queue = dispatch.NewQueue(log, dispatch.Options{
		Name:    "content_events",
		Buffer:  opts.QueueSize,
		Workers: 1,
		Timeout: opts.Timeout,
		Sink:    opts.Sink,
	}, func(ctx context.Context, ev realtime.ContentEvent) error {
		return n.bus.Publish(ctx, ev)
	})
	return n
}

func (n *contentNotifier) Notify(_ context.Context, ev realtime.ContentEvent) {
	if n == nil || ev.EntityID == uuid.Nil || ev.Action == "" {
		return
	}
	if ev.At.IsZero() {
		ev.At = n.now()
	}
	n.queue.Submit(ev)
}

func (n *contentNotifier) Close(ctx context.Context) error {
	err := n.queue.Close(ctx)
	if cerr := n.bus.Close(); cerr != nil {
		n.log.Warn("content bus close failed", "error", cerr)
	}
	return err
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, realtime.ContentEvent) {}
func (nopNotifier) Close(context.Context) error                 { return nil }

func notifierOrNop(n ContentNotifier) ContentNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
