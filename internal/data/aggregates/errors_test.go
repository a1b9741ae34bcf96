package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"gorm.io/gorm"
)

func TestMapErrorCodes(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want domainagg.ErrorCode
	}{
		{"validation", ValidationError("bad input"), domainagg.CodeValidation},
		{"conflict", ConflictError("stale"), domainagg.CodeConflict},
		{"record not found", gorm.ErrRecordNotFound, domainagg.CodeNotFound},
		{"pg unique", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, domainagg.CodeNotFound},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, domainagg.CodeRetryable},
		{"sqlite unique", errors.New("UNIQUE constraint failed: rule_codes.full_code"), domainagg.CodeConflict},
		{"sqlite busy", errors.New("database is locked"), domainagg.CodeRetryable},
		{"unknown", errors.New("boom"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := MapError("op", tc.in)
			if !domainagg.IsCode(err, tc.want) {
				t.Fatalf("want=%s got=%q (%v)", tc.want, domainagg.CodeOf(err), err)
			}
		})
	}
}

func TestMapErrorTransitionCarriesCurrent(t *testing.T) {
	err := MapError("op", fmt.Errorf("wrapped: %w", &workflow.TransitionError{Action: "reject", Current: workflow.StatusLegacy}))
	ae, ok := domainagg.AsError(err)
	if !ok || ae.Code != domainagg.CodeInvalidState {
		t.Fatalf("expected invalid_state, got %v", err)
	}
	if ae.Current != "legacy" {
		t.Fatalf("current: want=legacy got=%q", ae.Current)
	}
}

func TestMapErrorPassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	if out := MapError("other", in); out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil should map to nil")
	}
}
