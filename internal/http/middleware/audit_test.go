package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/audit"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/ctxutil"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []*types.ActivityLogEntry
}

func (a *recordingAudit) Record(_ context.Context, e *types.ActivityLogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *recordingAudit) Query(context.Context, workflow.Principal, services.ActivityQueryRequest) (*services.ActivityPage, error) {
	return &services.ActivityPage{}, nil
}

func (a *recordingAudit) Summarize(context.Context, workflow.Principal, services.ActivitySummaryRequest) ([]repos.ActivitySummaryRow, error) {
	return nil, nil
}

func auditRouter(rec *recordingAudit, staff uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext(), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		rd.StaffID = staff
		c.Next()
	})
	r.POST("/rules", Audit(rec, audit.ActionCreate, audit.ResourceRule), func(c *gin.Context) {
		c.Set(AuditResourceKey, "new-id")
		c.Status(http.StatusCreated)
	})
	r.PUT("/rules/:id", Audit(rec, audit.ActionUpdate, audit.ResourceRule), func(c *gin.Context) {
		_ = c.Error(errors.New("rule not found"))
		c.Status(http.StatusNotFound)
	})
	r.DELETE("/rules/:id", Audit(rec, audit.ActionDelete, audit.ResourceRule), func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})
	return r
}

func TestAuditRecordsOutcome(t *testing.T) {
	rec := &recordingAudit{}
	staff := uuid.New()
	r := auditRouter(rec, staff)

	send := func(method, path string) {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set(headerSessionID, "abc")
		req.Header.Set("User-Agent", "panel/1.0")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	send(http.MethodPost, "/rules")
	send(http.MethodPut, "/rules/r-1")
	send(http.MethodDelete, "/rules/r-2")

	if len(rec.entries) != 3 {
		t.Fatalf("entries: want=3 got=%d", len(rec.entries))
	}

	created := rec.entries[0]
	if !created.Success || created.ResourceID != "new-id" || created.ActionType != audit.ActionCreate {
		t.Fatalf("create entry: %+v", created)
	}
	if created.StaffUserID != staff || created.SessionID != "abc" || created.UserAgent != "panel/1.0" {
		t.Fatalf("request metadata not copied: %+v", created)
	}

	updated := rec.entries[1]
	if updated.Success || updated.ResourceID != "r-1" || updated.ErrorMessage != "rule not found" {
		t.Fatalf("update entry: %+v", updated)
	}

	deleted := rec.entries[2]
	if deleted.Success || deleted.ErrorMessage != http.StatusText(http.StatusConflict) {
		t.Fatalf("delete entry: %+v", deleted)
	}
}

func TestAuditParamRecordsNestedEdgeID(t *testing.T) {
	rec := &recordingAudit{}
	r := auditRouter(rec, uuid.New())
	r.POST("/rules/:id/references", AuditParam(rec, audit.ActionLinkAdd, audit.ResourceCrossReference, "refId"), func(c *gin.Context) {
		c.Set(AuditResourceKey, "edge-new")
		c.Status(http.StatusCreated)
	})
	r.DELETE("/rules/:id/references/:refId", AuditParam(rec, audit.ActionLinkDrop, audit.ResourceCrossReference, "refId"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/rules/r-1/references", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/rules/r-1/references/edge-7", nil))

	if len(rec.entries) != 2 {
		t.Fatalf("entries: want=2 got=%d", len(rec.entries))
	}
	added, removed := rec.entries[0], rec.entries[1]
	if added.ResourceType != audit.ResourceCrossReference || added.ResourceID != "edge-new" {
		t.Fatalf("add entry: %+v", added)
	}
	if removed.ActionType != audit.ActionLinkDrop || removed.ResourceID != "edge-7" || !removed.Success {
		t.Fatalf("remove entry: %+v", removed)
	}
	if string(removed.ActionDetails) != `{"rule_id":"r-1"}` {
		t.Fatalf("enclosing rule not kept: %s", removed.ActionDetails)
	}
}
