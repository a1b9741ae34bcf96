package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/aggregates"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dispatch"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime/bus"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/services"
)

type Services struct {
	Auth          services.AuthService
	Rules         services.RuleService
	References    services.CrossReferenceService
	Categories    services.CategoryService
	Announcements services.AnnouncementService
	Scheduled     services.ScheduledAnnouncementService
	Audit         services.AuditService

	AuditDispatcher *services.AuditDispatcher
	Notifier        services.ContentNotifier
	Publisher       *services.ScheduledPublisher
}

type serviceOptions struct {
	JWTSecretKey      string
	Bus               bus.Bus
	Hooks             aggregates.Hooks
	Sink              dispatch.ErrorSink
	AuditQueueSize    int
	NotifyQueueSize   int
	NotifyTimeout     time.Duration
	SchedulerInterval time.Duration
}

func wireServices(db *gorm.DB, log *logger.Logger, r Repos, opts serviceOptions) Services {
	log.Info("Wiring services...")
	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: opts.Hooks}

	ruleAgg := aggregates.NewRuleAggregate(aggregates.RuleAggregateDeps{
		Base:       base,
		Categories: r.Category,
		Rules:      r.Rule,
		Codes:      r.RuleCode,
	})
	categoryAgg := aggregates.NewCategoryAggregate(aggregates.CategoryAggregateDeps{
		Base:       base,
		Categories: r.Category,
		Rules:      r.Rule,
	})
	refAgg := aggregates.NewCrossReferenceAggregate(aggregates.CrossReferenceAggregateDeps{
		Base:  base,
		Rules: r.Rule,
		Refs:  r.CrossReference,
	})
	annAgg := aggregates.NewAnnouncementAggregate(aggregates.AnnouncementAggregateDeps{
		Base:          base,
		Announcements: r.Announcement,
		Scheduled:     r.ScheduledAnnouncement,
	})
	logContracts(log, ruleAgg, categoryAgg, refAgg, annAgg)

	notifier := services.NewContentNotifier(log, opts.Bus, services.NotifierOptions{
		QueueSize: opts.NotifyQueueSize,
		Timeout:   opts.NotifyTimeout,
		Sink:      opts.Sink,
	})
	dispatcher := services.NewAuditDispatcher(log, r.ActivityLog, opts.AuditQueueSize, opts.Sink)
	audit := services.NewAuditService(services.AuditServiceDeps{
		Log:           log,
		Dispatcher:    dispatcher,
		Activity:      r.ActivityLog,
		Rules:         r.Rule,
		Codes:         r.RuleCode,
		Announcements: r.Announcement,
		Categories:    r.Category,
	})

	refs := services.NewCrossReferenceService(services.CrossReferenceServiceDeps{
		Log:        log,
		Aggregate:  refAgg,
		Rules:      r.Rule,
		Codes:      r.RuleCode,
		Categories: r.Category,
		Refs:       r.CrossReference,
		Notifier:   notifier,
	})
	scheduled := services.NewScheduledAnnouncementService(services.ScheduledAnnouncementServiceDeps{
		Log:       log,
		Aggregate: annAgg,
		Scheduled: r.ScheduledAnnouncement,
		Notifier:  notifier,
		Audit:     audit,
	})

	return Services{
		Auth: services.NewAuthService(log, opts.JWTSecretKey),
		Rules: services.NewRuleService(services.RuleServiceDeps{
			Log:        log,
			Aggregate:  ruleAgg,
			Rules:      r.Rule,
			Codes:      r.RuleCode,
			Categories: r.Category,
			References: refs,
			Audit:      audit,
			Notifier:   notifier,
		}),
		References: refs,
		Categories: services.NewCategoryService(services.CategoryServiceDeps{
			Log:        log,
			Aggregate:  categoryAgg,
			Categories: r.Category,
			Notifier:   notifier,
		}),
		Announcements: services.NewAnnouncementService(services.AnnouncementServiceDeps{
			Log:           log,
			Aggregate:     annAgg,
			Announcements: r.Announcement,
			Notifier:      notifier,
		}),
		Scheduled: scheduled,
		Audit:     audit,

		AuditDispatcher: dispatcher,
		Notifier:        notifier,
		Publisher:       services.NewScheduledPublisher(log, scheduled, opts.SchedulerInterval),
	}
}

func logContracts(log *logger.Logger, aggs ...domainagg.Aggregate) {
	for _, a := range aggs {
		c := a.Contract()
		if err := c.Validate(); err != nil {
			log.Warn("aggregate contract invalid", "error", err)
			continue
		}
		log.Debug("aggregate wired", "name", c.Name, "tx", c.Tx, "locks", c.Locks)
	}
}
