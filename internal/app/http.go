package app

import (
	"gorm.io/gorm"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http"
	httpH "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/handlers"
	httpMW "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/http/middleware"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/observability"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Category     *httpH.CategoryHandler
	Rule         *httpH.RuleHandler
	Reference    *httpH.ReferenceHandler
	Announcement *httpH.AnnouncementHandler
	Scheduled    *httpH.ScheduledAnnouncementHandler
	Activity     *httpH.ActivityHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(db),
		Category:     httpH.NewCategoryHandler(log, services.Categories),
		Rule:         httpH.NewRuleHandler(log, services.Rules),
		Reference:    httpH.NewReferenceHandler(log, services.References),
		Announcement: httpH.NewAnnouncementHandler(log, services.Announcements),
		Scheduled:    httpH.NewScheduledAnnouncementHandler(log, services.Scheduled),
		Activity:     httpH.NewActivityHandler(log, services.Audit),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

type routerOptions struct {
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics
}

func wireServer(log *logger.Logger, handlers Handlers, middleware Middleware, services Services, opts routerOptions) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:            log,
		ServiceName:    opts.ServiceName,
		CORSOrigins:    opts.CORSOrigins,
		Metrics:        opts.Metrics,
		AuthMiddleware: middleware.Auth,
		Audit:          services.Audit,

		CategoryHandler:     handlers.Category,
		RuleHandler:         handlers.Rule,
		ReferenceHandler:    handlers.Reference,
		AnnouncementHandler: handlers.Announcement,
		ScheduledHandler:    handlers.Scheduled,
		ActivityHandler:     handlers.Activity,
		HealthHandler:       handlers.Health,
	})
}
