package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/audit"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	httpH "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/handlers"
	httpMW "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/middleware"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/observability"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware
	Audit          services.AuditService

	CategoryHandler     *httpH.CategoryHandler
	RuleHandler         *httpH.RuleHandler
	ReferenceHandler    *httpH.ReferenceHandler
	AnnouncementHandler *httpH.AnnouncementHandler
	ScheduledHandler    *httpH.ScheduledAnnouncementHandler
	ActivityHandler     *httpH.ActivityHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api/v1")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}
	track := func(action, resource string) gin.HandlerFunc {
		return httpMW.Audit(cfg.Audit, action, resource)
	}

	// Categories
	if h := cfg.CategoryHandler; h != nil {
		api.GET("/categories", h.List)
		api.POST("/categories", track(audit.ActionCreate, audit.ResourceCategory), h.Create)
		api.POST("/categories/reorder", track(audit.ActionReorder, audit.ResourceCategory), h.Reorder)
		api.PUT("/categories/:id", track(audit.ActionUpdate, audit.ResourceCategory), h.Update)
		api.DELETE("/categories/:id", track(audit.ActionDelete, audit.ResourceCategory), h.Delete)
	}

	// Rules
	if h := cfg.RuleHandler; h != nil {
		api.GET("/rules", h.List)
		api.GET("/rules/search", h.Search)
		api.GET("/rules/:id", h.Get)
		api.POST("/rules", track(audit.ActionCreate, audit.ResourceRule), h.Create)
		api.PUT("/rules/:id", track(audit.ActionUpdate, audit.ResourceRule), h.Update)
		api.DELETE("/rules/:id", track(audit.ActionDelete, audit.ResourceRule), h.Delete)
		api.POST("/rules/:id/restore", track(audit.ActionRestore, audit.ResourceRule), h.Restore)
		api.POST("/rules/:id/approve", track(audit.ActionApprove, audit.ResourceRule), h.Approve)
		api.POST("/rules/:id/reject", track(audit.ActionReject, audit.ResourceRule), h.Reject)
	}

	// Cross references
	if h := cfg.ReferenceHandler; h != nil {
		api.GET("/rules/:id/references", h.List)
		api.POST("/rules/:id/references", httpMW.AuditParam(cfg.Audit, audit.ActionLinkAdd, audit.ResourceCrossReference, "refId"), h.Create)
		api.DELETE("/rules/:id/references/:refId", httpMW.AuditParam(cfg.Audit, audit.ActionLinkDrop, audit.ResourceCrossReference, "refId"), h.Delete)
	}

	// Announcements
	if h := cfg.AnnouncementHandler; h != nil {
		api.GET("/announcements", h.List)
		api.POST("/announcements", track(audit.ActionCreate, audit.ResourceAnnouncement), h.Create)
		api.PUT("/announcements/:id", track(audit.ActionUpdate, audit.ResourceAnnouncement), h.Update)
		api.DELETE("/announcements/:id", track(audit.ActionDelete, audit.ResourceAnnouncement), h.Delete)
		api.POST("/announcements/:id/approve", track(audit.ActionApprove, audit.ResourceAnnouncement), h.Approve)
		api.POST("/announcements/:id/reject", track(audit.ActionReject, audit.ResourceAnnouncement), h.Reject)
	}

	// Scheduled announcements
	if h := cfg.ScheduledHandler; h != nil {
		api.GET("/scheduled-announcements", h.List)
		api.POST("/scheduled-announcements", track(audit.ActionCreate, audit.ResourceScheduledAnnouncement), h.Schedule)
		api.DELETE("/scheduled-announcements/:id", track(audit.ActionDelete, audit.ResourceScheduledAnnouncement), h.Cancel)
		api.POST("/scheduled-announcements/:id/publish", track(audit.ActionPublish, audit.ResourceScheduledAnnouncement), h.Publish)
	}

	// Activity (admin+)
	if h := cfg.ActivityHandler; h != nil {
		activity := api.Group("/activity", httpMW.RequireRole(workflow.RoleAdmin))
		activity.GET("", h.List)
		activity.GET("/summary", h.Summary)
	}

	return r
}
