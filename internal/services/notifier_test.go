package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	repotest "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos/testutil"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
)

type fakeBus struct {
	mu     sync.Mutex
	got    []realtime.ContentEvent
	fail   bool
	closed bool
}

func (b *fakeBus) Publish(_ context.Context, ev realtime.ContentEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("redis down")
	}
	b.got = append(b.got, ev)
	return nil
}

func (b *fakeBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func closeNotifier(t *testing.T, n ContentNotifier) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNotifierDeliversInOrder(t *testing.T) {
	b := &fakeBus{}
	n := NewContentNotifier(repotest.Logger(t), b, NotifierOptions{QueueSize: 8})

	id := uuid.New()
	n.Notify(context.Background(), realtime.ContentEvent{EntityType: realtime.EntityRule, EntityID: id, Action: realtime.ActionCreate})
	n.Notify(context.Background(), realtime.ContentEvent{EntityType: realtime.EntityRule, EntityID: id, Action: realtime.ActionApprove})
	n.Notify(context.Background(), realtime.ContentEvent{EntityType: realtime.EntityRule, Action: realtime.ActionDelete})
	closeNotifier(t, n)

	if len(b.got) != 2 {
		t.Fatalf("events: want=2 got=%d", len(b.got))
	}
	if b.got[0].Action != realtime.ActionCreate || b.got[1].Action != realtime.ActionApprove {
		t.Fatalf("unexpected order: %+v", b.got)
	}
	if b.got[0].At.IsZero() {
		t.Fatalf("event time not stamped")
	}
	if !b.closed {
		t.Fatalf("bus not closed")
	}
}

func TestNotifierSwallowsBusFailures(t *testing.T) {
	b := &fakeBus{fail: true}
	n := NewContentNotifier(repotest.Logger(t), b, NotifierOptions{QueueSize: 1, Timeout: time.Second})
	for i := 0; i < 10; i++ {
		n.Notify(context.Background(), realtime.ContentEvent{EntityType: realtime.EntityRule, EntityID: uuid.New(), Action: realtime.ActionUpdate})
	}
	closeNotifier(t, n)
	if len(b.got) != 0 {
		t.Fatalf("failing bus should record nothing")
	}
}
