package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/aggregates"
	repotest "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos/testutil"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/audit"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/observability"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime/bus"
)

type apiHarness struct {
	t        *testing.T
	db       *gorm.DB
	services Services
	engine   *gin.Engine
	metrics  *observability.Metrics
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := repotest.Logger(t)
	db := repotest.DB(t)
	metrics := observability.NewMetrics()

	reposet := wireRepos(db, log)
	serviceset := wireServices(db, log, reposet, serviceOptions{
		JWTSecretKey:      "test-secret",
		Bus:               bus.NewLogBus(log),
		Hooks:             aggregates.MultiHooks(aggregates.NewLogHooks(log), metrics),
		Sink:              metrics.DispatchSink(),
		AuditQueueSize:    64,
		NotifyQueueSize:   16,
		NotifyTimeout:     time.Second,
		SchedulerInterval: time.Minute,
	})
	server := wireServer(log, wireHandlers(log, db, serviceset), wireMiddleware(log, serviceset), serviceset, routerOptions{
		Metrics: metrics,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = serviceset.Notifier.Close(ctx)
		_ = serviceset.AuditDispatcher.Close(ctx)
	})
	return &apiHarness{t: t, db: db, services: serviceset, engine: server.Engine, metrics: metrics}
}

func (h *apiHarness) token(p workflow.Principal) string {
	h.t.Helper()
	tok, err := h.services.Auth.IssueToken(p, time.Hour)
	require.NoError(h.t, err)
	return tok
}

func (h *apiHarness) do(method, path, token string, body any) (int, map[string]any) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Session-Id", "sess-1")
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" && bytes.HasPrefix(rec.Body.Bytes(), []byte("{")) {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

// drainAudit flushes queued activity rows so they can be queried.
func (h *apiHarness) drainAudit() {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(h.t, h.services.AuditDispatcher.Close(ctx))
}

func errorBody(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %v", body)
	return e
}

func TestHealthcheckPingsDatabase(t *testing.T) {
	h := newAPIHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestAPIRequiresBearerToken(t *testing.T) {
	h := newAPIHarness(t)

	status, body := h.do(http.MethodGet, "/api/v1/rules", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "unauthorized", errorBody(t, body)["code"])

	status, _ = h.do(http.MethodGet, "/api/v1/rules", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodGet, "/api/v1/rules", h.token(repotest.Editor()), nil)
	require.Equal(t, http.StatusOK, status)
}

func TestRuleReviewFlowOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	cat := repotest.SeedCategory(t, context.Background(), h.db, "C", 1)
	editor := h.token(repotest.Editor())
	moderator := h.token(repotest.Moderator())

	status, body := h.do(http.MethodPost, "/api/v1/rules", editor, map[string]any{
		"category_id": cat.ID,
		"title":       "No RDM",
		"content":     "Random deathmatch is not allowed.",
	})
	require.Equal(t, http.StatusCreated, status, "%v", body)
	rule := body["rule"].(map[string]any)
	require.Equal(t, "pending_approval", rule["status"])
	require.Equal(t, false, rule["is_active"])
	id := rule["id"].(string)

	status, body = h.do(http.MethodPost, "/api/v1/rules/"+id+"/approve", moderator, map[string]any{"review_notes": "looks good"})
	require.Equal(t, http.StatusOK, status, "%v", body)
	rule = body["rule"].(map[string]any)
	require.Equal(t, "approved", rule["status"])
	require.Equal(t, true, rule["is_active"])
	require.Equal(t, "C.1", rule["full_code"])

	status, body = h.do(http.MethodPost, "/api/v1/rules/"+id+"/approve", moderator, nil)
	require.Equal(t, http.StatusConflict, status)
	e := errorBody(t, body)
	require.Equal(t, "invalid_state", e["code"])
	require.Equal(t, "approved", e["current_status"])

	status, _ = h.do(http.MethodPost, "/api/v1/rules/"+id+"/reject", editor, map[string]any{"review_notes": "no"})
	require.Equal(t, http.StatusForbidden, status)
}

func TestValidationAndLookupErrors(t *testing.T) {
	h := newAPIHarness(t)
	cat := repotest.SeedCategory(t, context.Background(), h.db, "C", 1)
	tok := h.token(repotest.Moderator())

	status, body := h.do(http.MethodPost, "/api/v1/rules", tok, map[string]any{"category_id": cat.ID})
	require.Equal(t, http.StatusBadRequest, status)
	e := errorBody(t, body)
	require.Equal(t, "validation", e["code"])
	require.Equal(t, "content", e["field"])

	status, body = h.do(http.MethodGet, "/api/v1/rules/"+uuid.NewString(), tok, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", errorBody(t, body)["code"])

	status, body = h.do(http.MethodGet, "/api/v1/rules/not-a-uuid", tok, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_id", errorBody(t, body)["code"])

	status, body = h.do(http.MethodGet, "/api/v1/rules/search?q=x", tok, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "q", errorBody(t, body)["field"])
}

func TestActivityIsAdminOnlyAndRecordsMutations(t *testing.T) {
	h := newAPIHarness(t)
	cat := repotest.SeedCategory(t, context.Background(), h.db, "C", 1)
	mod := repotest.Moderator()

	status, body := h.do(http.MethodPost, "/api/v1/rules", h.token(mod), map[string]any{
		"category_id": cat.ID,
		"content":     "Respect staff decisions.",
	})
	require.Equal(t, http.StatusCreated, status, "%v", body)
	ruleID := body["rule"].(map[string]any)["id"].(string)

	status, _ = h.do(http.MethodPost, "/api/v1/rules", h.token(mod), map[string]any{"category_id": cat.ID})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(http.MethodGet, "/api/v1/activity", h.token(mod), nil)
	require.Equal(t, http.StatusForbidden, status)

	h.drainAudit()

	status, body = h.do(http.MethodGet, "/api/v1/activity?staff_user_id="+mod.ID.String(), h.token(repotest.Admin()), nil)
	require.Equal(t, http.StatusOK, status, "%v", body)
	entries := body["activity"].([]any)
	require.Len(t, entries, 2)

	var ok, failed int
	for _, raw := range entries {
		entry := raw.(map[string]any)
		require.Equal(t, audit.ActionCreate, entry["action_type"])
		require.Equal(t, audit.ResourceRule, entry["resource_type"])
		require.Equal(t, "sess-1", entry["session_id"])
		if entry["success"] == true {
			ok++
			require.Equal(t, ruleID, entry["resource_id"])
		} else {
			failed++
			require.NotEmpty(t, entry["error_message"])
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, failed)
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	h := newAPIHarness(t)
	tok := h.token(repotest.Editor())
	status, _ := h.do(http.MethodGet, "/api/v1/categories", tok, nil)
	require.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `rules_api_requests_total{method="GET",route="/api/v1/categories",status="200"}`)
}
