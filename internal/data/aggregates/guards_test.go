package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
)

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); !domainagg.IsCode(MapError("op", err), domainagg.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	editor := workflow.Principal{ID: uuid.New(), Role: workflow.RoleEditor}
	mod := workflow.Principal{ID: uuid.New(), Role: workflow.RoleModerator}

	if err := requireRole("op", mod, workflow.RoleModerator); err != nil {
		t.Fatalf("moderator should pass: %v", err)
	}
	if err := requireRole("op", editor, workflow.RoleModerator); !domainagg.IsCode(err, domainagg.CodePermission) {
		t.Fatalf("editor should be denied, got %v", err)
	}
	if err := requireRole("op", workflow.Principal{Role: workflow.RoleOwner}, workflow.RoleEditor); !domainagg.IsCode(err, domainagg.CodePermission) {
		t.Fatalf("principal without id should be denied, got %v", err)
	}
}

func TestUpdateByStatusRequiresContext(t *testing.T) {
	g := NewCASGuard(nil)
	if _, err := g.UpdateByStatus(dbctx.Context{Ctx: context.Background()}, "rules", uuid.New(), []workflow.Status{workflow.StatusPending}, map[string]any{"status": "approved"}); err == nil {
		t.Fatalf("expected error without db")
	}
}
