package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
)

func TestInjectedTxRunnerCommitsOnSuccess(t *testing.T) {
	r := &InjectedTxRunner{}
	called := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !called {
		t.Fatalf("expected callback to run")
	}
	if r.BeginCalls != 1 || r.CommitCalls != 1 || r.RollbackCalls != 0 {
		t.Fatalf("unexpected counters begin=%d commit=%d rollback=%d", r.BeginCalls, r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunnerRollbackOnBodyError(t *testing.T) {
	r := &InjectedTxRunner{}
	bodyErr := errors.New("boom")
	err := r.InTx(context.Background(), func(_ dbctx.Context) error { return bodyErr })
	if !errors.Is(err, bodyErr) {
		t.Fatalf("expected body err, got %v", err)
	}
	if r.CommitCalls != 0 || r.RollbackCalls != 1 {
		t.Fatalf("unexpected counters commit=%d rollback=%d", r.CommitCalls, r.RollbackCalls)
	}
}

func TestInjectedTxRunnerFailAfterBody(t *testing.T) {
	r := &InjectedTxRunner{FailAfterBody: ErrInjected}
	ran := false
	err := r.InTx(context.Background(), func(_ dbctx.Context) error {
		ran = true
		return nil
	})
	if !ran {
		t.Fatalf("body should run before the injected failure")
	}
	if !errors.Is(err, ErrInjected) {
		t.Fatalf("expected injected err, got %v", err)
	}
	if r.RollbackCalls != 1 {
		t.Fatalf("rollback calls: want=1 got=%d", r.RollbackCalls)
	}
}
