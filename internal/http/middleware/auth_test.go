package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

func authRouter(t *testing.T, auth services.AuthService, role workflow.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.NewNop(), auth)
	r := gin.New()
	r.Use(AttachRequestContext())
	r.GET("/who", am.RequireAuth(), RequireRole(role), func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, p.ID.String()+" "+p.Role.String())
	})
	return r
}

func TestRequireAuthAndRole(t *testing.T) {
	auth := services.NewAuthService(logger.NewNop(), "secret")
	r := authRouter(t, auth, workflow.RoleModerator)

	mod := workflow.Principal{ID: uuid.New(), Role: workflow.RoleModerator}
	modTok, err := auth.IssueToken(mod, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	editorTok, err := auth.IssueToken(workflow.Principal{ID: uuid.New(), Role: workflow.RoleEditor}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	foreign, err := services.NewAuthService(logger.NewNop(), "other").IssueToken(mod, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic " + modTok, http.StatusUnauthorized},
		{"wrong key", "Bearer " + foreign, http.StatusUnauthorized},
		{"below role", "Bearer " + editorTok, http.StatusForbidden},
		{"moderator", "Bearer " + modTok, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d body=%s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status == http.StatusOK && rec.Body.String() != mod.ID.String()+" moderator" {
				t.Fatalf("principal: got %q", rec.Body.String())
			}
		})
	}
}
