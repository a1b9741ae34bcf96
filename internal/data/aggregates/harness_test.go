package aggregates_test

import (
	"context"
	"testing"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/aggregates"
	aggtest "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/aggregates/testutil"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	repotest "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos/testutil"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"gorm.io/gorm"
)

type harness struct {
	ctx   context.Context
	db    *gorm.DB
	hooks *aggtest.HooksRecorder
	tx    *aggtest.InjectedTxRunner

	categoryRepo repos.CategoryRepo
	ruleRepo     repos.RuleRepo
	codeRepo     repos.RuleCodeRepo
	refRepo      repos.CrossReferenceRepo
	annRepo      repos.AnnouncementRepo
	schedRepo    repos.ScheduledAnnouncementRepo

	rules         domainagg.RuleAggregate
	categories    domainagg.CategoryAggregate
	refs          domainagg.CrossReferenceAggregate
	announcements domainagg.AnnouncementAggregate
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)

	h := &harness{
		ctx:          context.Background(),
		db:           db,
		hooks:        &aggtest.HooksRecorder{},
		tx:           &aggtest.InjectedTxRunner{Inner: aggregates.NewGormTxRunner(db)},
		categoryRepo: repos.NewCategoryRepo(db, log),
		ruleRepo:     repos.NewRuleRepo(db, log),
		codeRepo:     repos.NewRuleCodeRepo(db, log),
		refRepo:      repos.NewCrossReferenceRepo(db, log),
		annRepo:      repos.NewAnnouncementRepo(db, log),
		schedRepo:    repos.NewScheduledAnnouncementRepo(db, log),
	}
	base := aggregates.BaseDeps{DB: db, Log: log, Runner: h.tx, Hooks: h.hooks}

	h.rules = aggregates.NewRuleAggregate(aggregates.RuleAggregateDeps{
		Base:       base,
		Categories: h.categoryRepo,
		Rules:      h.ruleRepo,
		Codes:      h.codeRepo,
	})
	h.categories = aggregates.NewCategoryAggregate(aggregates.CategoryAggregateDeps{
		Base:       base,
		Categories: h.categoryRepo,
		Rules:      h.ruleRepo,
	})
	h.refs = aggregates.NewCrossReferenceAggregate(aggregates.CrossReferenceAggregateDeps{
		Base:  base,
		Rules: h.ruleRepo,
		Refs:  h.refRepo,
	})
	h.announcements = aggregates.NewAnnouncementAggregate(aggregates.AnnouncementAggregateDeps{
		Base:          base,
		Announcements: h.annRepo,
		Scheduled:     h.schedRepo,
	})
	return h
}

func (h *harness) dbc() dbctx.Context {
	return dbctx.Context{Ctx: h.ctx}
}

func (h *harness) category(t *testing.T, letter string) *types.Category {
	t.Helper()
	return repotest.SeedCategory(t, h.ctx, h.db, letter, int(letter[0]-'A'))
}

func TestAggregateContracts(t *testing.T) {
	h := newHarness(t)
	alloc := aggregates.NewCodeAllocator(h.ruleRepo, h.codeRepo)

	for _, a := range []domainagg.Aggregate{h.rules, h.categories, h.refs, h.announcements, alloc} {
		c := a.Contract()
		if err := c.Validate(); err != nil {
			t.Fatalf("%s: %v", c.Name, err)
		}
	}
	if alloc.Contract().OwnsTx() {
		t.Fatalf("code allocator must join the caller's transaction")
	}
	if !h.rules.Contract().Locking("categories") || !h.rules.Contract().Locking("rules") {
		t.Fatalf("rule aggregate must lock category and parent rows")
	}
	if h.refs.Contract().Locking("rules") {
		t.Fatalf("cross reference writes take no row locks")
	}
	if err := (domainagg.Contract{Name: "Content.X", Tx: domainagg.TxJoined}).Validate(); err == nil {
		t.Fatalf("joined contract without locks should fail validation")
	}
}
