package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	repotest "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos/testutil"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
)

func TestGormTxRunnerRunsBodyOnceOnContention(t *testing.T) {
	r := NewGormTxRunner(repotest.DB(t))

	calls := 0
	err := r.InTx(context.Background(), func(dbc dbctx.Context) error {
		calls++
		if dbc.Tx == nil {
			t.Fatalf("body ran without a transaction")
		}
		return &pgconn.PgError{Code: "40001"}
	})
	if calls != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected the driver error back, got %v", err)
	}
}

func TestContentionSurfacesAsRetryable(t *testing.T) {
	deps := BaseDeps{DB: repotest.DB(t), Log: repotest.Logger(t)}

	calls := 0
	err := executeWrite(context.Background(), deps, "Content.Rule.Approve", func(dbctx.Context) error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: "40P01"}
		}
		return nil
	})
	if calls != 1 {
		t.Fatalf("write was replayed: calls=%d", calls)
	}
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("want retryable, got %v", err)
	}
}
