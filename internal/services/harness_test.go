package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	repotest "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos/testutil"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []realtime.ContentEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev realtime.ContentEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) Close(context.Context) error { return nil }

func (n *recordingNotifier) Events() []realtime.ContentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]realtime.ContentEvent(nil), n.events...)
}

func (n *recordingNotifier) Actions(entity string) []string {
	var out []string
	for _, ev := range n.Events() {
		if ev.EntityType == entity {
			out = append(out, ev.Action)
		}
	}
	return out
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []*types.ActivityLogEntry
}

func (a *recordingAudit) Record(_ context.Context, e *types.ActivityLogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *recordingAudit) Query(context.Context, types.Principal, ActivityQueryRequest) (*ActivityPage, error) {
	return &ActivityPage{}, nil
}

func (a *recordingAudit) Summarize(context.Context, types.Principal, ActivitySummaryRequest) ([]repos.ActivitySummaryRow, error) {
	return nil, nil
}

func (a *recordingAudit) Entries() []*types.ActivityLogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*types.ActivityLogEntry(nil), a.entries...)
}

type svcHarness struct {
	ctx      context.Context
	db       *gorm.DB
	notifier *recordingNotifier
	audit    *recordingAudit

	categoryRepo repos.CategoryRepo
	ruleRepo     repos.RuleRepo
	codeRepo     repos.RuleCodeRepo
	refRepo      repos.CrossReferenceRepo
	annRepo      repos.AnnouncementRepo
	schedRepo    repos.ScheduledAnnouncementRepo
	activityRepo repos.ActivityLogRepo

	rules         RuleService
	refs          CrossReferenceService
	categories    CategoryService
	announcements AnnouncementService
	scheduled     ScheduledAnnouncementService
}

func newSvcHarness(t *testing.T) *svcHarness {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)

	h := &svcHarness{
		ctx:          context.Background(),
		db:           db,
		notifier:     &recordingNotifier{},
		audit:        &recordingAudit{},
		categoryRepo: repos.NewCategoryRepo(db, log),
		ruleRepo:     repos.NewRuleRepo(db, log),
		codeRepo:     repos.NewRuleCodeRepo(db, log),
		refRepo:      repos.NewCrossReferenceRepo(db, log),
		annRepo:      repos.NewAnnouncementRepo(db, log),
		schedRepo:    repos.NewScheduledAnnouncementRepo(db, log),
		activityRepo: repos.NewActivityLogRepo(db, log),
	}
	base := aggregates.BaseDeps{DB: db, Log: log}

	annAgg := aggregates.NewAnnouncementAggregate(aggregates.AnnouncementAggregateDeps{
		Base:          base,
		Announcements: h.annRepo,
		Scheduled:     h.schedRepo,
	})
	h.refs = NewCrossReferenceService(CrossReferenceServiceDeps{
		Log: log,
		Aggregate: aggregates.NewCrossReferenceAggregate(aggregates.CrossReferenceAggregateDeps{
			Base:  base,
			Rules: h.ruleRepo,
			Refs:  h.refRepo,
		}),
		Rules:      h.ruleRepo,
		Codes:      h.codeRepo,
		Categories: h.categoryRepo,
		Refs:       h.refRepo,
		Notifier:   h.notifier,
	})
	h.rules = NewRuleService(RuleServiceDeps{
		Log: log,
		Aggregate: aggregates.NewRuleAggregate(aggregates.RuleAggregateDeps{
			Base:       base,
			Categories: h.categoryRepo,
			Rules:      h.ruleRepo,
			Codes:      h.codeRepo,
		}),
		Rules:      h.ruleRepo,
		Codes:      h.codeRepo,
		Categories: h.categoryRepo,
		References: h.refs,
		Audit:      h.audit,
		Notifier:   h.notifier,
	})
	h.categories = NewCategoryService(CategoryServiceDeps{
		Log: log,
		Aggregate: aggregates.NewCategoryAggregate(aggregates.CategoryAggregateDeps{
			Base:       base,
			Categories: h.categoryRepo,
			Rules:      h.ruleRepo,
		}),
		Categories: h.categoryRepo,
		Notifier:   h.notifier,
	})
	h.announcements = NewAnnouncementService(AnnouncementServiceDeps{
		Log:           log,
		Aggregate:     annAgg,
		Announcements: h.annRepo,
		Notifier:      h.notifier,
	})
	h.scheduled = NewScheduledAnnouncementService(ScheduledAnnouncementServiceDeps{
		Log:       log,
		Aggregate: annAgg,
		Scheduled: h.schedRepo,
		Notifier:  h.notifier,
		Audit:     h.audit,
	})
	return h
}

func (h *svcHarness) dbc() dbctx.Context {
	return dbctx.Context{Ctx: h.ctx}
}

func (h *svcHarness) category(t *testing.T, letter string) *types.Category {
	t.Helper()
	return repotest.SeedCategory(t, h.ctx, h.db, letter, int(letter[0]-'A'))
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }
