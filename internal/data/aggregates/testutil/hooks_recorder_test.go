package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorderCapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Content.Rule.Create", "success", 10*time.Millisecond)
	h.ObserveOperation("Content.Rule.Approve", "invalid_state", time.Millisecond)
	h.ObserveOperation("Content.Rule.Create", "conflict", time.Millisecond)
	h.IncConflict("Content.Rule.Create")
	h.IncRetry("Content.Rule.Create")

	got := h.Statuses("Content.Rule.Create")
	if len(got) != 2 || got[0] != "success" || got[1] != "conflict" {
		t.Fatalf("create statuses: got=%v", got)
	}
	if len(h.Conflicts) != 1 || h.Conflicts[0] != "Content.Rule.Create" {
		t.Fatalf("unexpected conflicts: %+v", h.Conflicts)
	}
	if len(h.Retries) != 1 {
		t.Fatalf("unexpected retries: %+v", h.Retries)
	}
}
