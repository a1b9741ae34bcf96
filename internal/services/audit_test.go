package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	repotest "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos/testutil"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/audit"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/ctxutil"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
)

type auditFixture struct {
	h          *svcHarness
	dispatcher *AuditDispatcher
	svc        AuditService
}

func newAuditFixture(t *testing.T) *auditFixture {
	t.Helper()
	h := newSvcHarness(t)
	log := repotest.Logger(t)
	d := NewAuditDispatcher(log, h.activityRepo, 16)
	t.Cleanup(func() { _ = d.Close(context.Background()) })
	return &auditFixture{
		h:          h,
		dispatcher: d,
		svc: NewAuditService(AuditServiceDeps{
			Log:           log,
			Dispatcher:    d,
			Activity:      h.activityRepo,
			Rules:         h.ruleRepo,
			Codes:         h.codeRepo,
			Announcements: h.annRepo,
			Categories:    h.categoryRepo,
		}),
	}
}

// flush drains the dispatcher so stored rows are visible.
func (f *auditFixture) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.dispatcher.Close(ctx))
}

func (f *auditFixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.h.db.Model(&types.ActivityLogEntry{}).Count(&n).Error)
	return n
}

func TestRecordWithoutActionTypeInsertsNothing(t *testing.T) {
	f := newAuditFixture(t)
	staff := uuid.New()

	f.svc.Record(f.h.ctx, &types.ActivityLogEntry{StaffUserID: staff, ResourceType: audit.ResourceRule})
	f.svc.Record(f.h.ctx, &types.ActivityLogEntry{ActionType: audit.ActionCreate, ResourceType: audit.ResourceRule})
	f.svc.Record(f.h.ctx, &types.ActivityLogEntry{StaffUserID: staff, ActionType: audit.ActionCreate})
	f.svc.Record(f.h.ctx, nil)
	f.flush(t)

	require.Zero(t, f.count(t))
}

func TestRecordStoresCompleteEntry(t *testing.T) {
	f := newAuditFixture(t)
	staff := uuid.New()

	f.svc.Record(f.h.ctx, &types.ActivityLogEntry{
		StaffUserID:  staff,
		ActionType:   audit.ActionCreate,
		ResourceType: audit.ResourceRule,
		Success:      true,
		DurationMS:   12,
	})
	f.flush(t)
	require.EqualValues(t, 1, f.count(t))

	// After Close the dispatcher drops instead of blocking.
	f.svc.Record(f.h.ctx, &types.ActivityLogEntry{StaffUserID: staff, ActionType: audit.ActionUpdate, ResourceType: audit.ResourceRule})
	require.EqualValues(t, 1, f.count(t))
}

func TestQueryResolvesResourceLabelsNewestFirst(t *testing.T) {
	f := newAuditFixture(t)
	h := f.h
	admin := repotest.Admin()
	mod := repotest.Moderator()
	cat := h.category(t, "C")

	rule, err := h.rules.Create(h.ctx, mod, CreateRuleRequest{CategoryID: cat.ID, Content: "labelled"})
	require.NoError(t, err)
	ann, err := h.announcements.Create(h.ctx, mod, CreateAnnouncementRequest{Title: "Patch notes", Content: "v2"})
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Minute)
	entries := []*types.ActivityLogEntry{
		{StaffUserID: mod.ID, ActionType: audit.ActionCreate, ResourceType: audit.ResourceRule, ResourceID: rule.ID.String(), Success: true, CreatedAt: base},
		{StaffUserID: mod.ID, ActionType: audit.ActionCreate, ResourceType: audit.ResourceAnnouncement, ResourceID: ann.ID.String(), Success: true, CreatedAt: base.Add(time.Second)},
		{StaffUserID: admin.ID, ActionType: audit.ActionUpdate, ResourceType: audit.ResourceCategory, ResourceID: cat.ID.String(), Success: false, ErrorMessage: "boom", CreatedAt: base.Add(2 * time.Second)},
		{StaffUserID: admin.ID, ActionType: audit.ActionDelete, ResourceType: audit.ResourceRule, ResourceID: "not-a-uuid", Success: true, CreatedAt: base.Add(3 * time.Second)},
	}
	for _, e := range entries {
		f.svc.Record(h.ctx, e)
	}
	f.flush(t)

	page, err := f.svc.Query(h.ctx, admin, ActivityQueryRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 4, page.Total)
	require.Len(t, page.Entries, 4)
	require.Equal(t, audit.ActionDelete, page.Entries[0].ActionType)
	require.Empty(t, page.Entries[0].ResourceLabel)
	require.Equal(t, "C - "+cat.Name, page.Entries[1].ResourceLabel)
	require.Equal(t, "Patch notes", page.Entries[2].ResourceLabel)
	require.Equal(t, "C.1", page.Entries[3].ResourceLabel)

	filtered, err := f.svc.Query(h.ctx, admin, ActivityQueryRequest{StaffUserID: &mod.ID, Limit: 1})
	require.NoError(t, err)
	require.EqualValues(t, 2, filtered.Total)
	require.Len(t, filtered.Entries, 1)

	_, err = f.svc.Query(h.ctx, mod, ActivityQueryRequest{})
	require.True(t, domainagg.IsCode(err, domainagg.CodePermission))

	rows, err := f.svc.Summarize(h.ctx, admin, ActivitySummaryRequest{})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, row := range rows {
		if row.ResourceType == audit.ResourceCategory {
			require.EqualValues(t, 1, row.FailureCount)
		}
	}
}

func TestTrackRecordsOnceWithOutcome(t *testing.T) {
	rec := &recordingAudit{}
	staff := uuid.New()
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		StaffID:   staff,
		IPAddress: "192.0.2.1",
		UserAgent: "curl/8",
		SessionID: "sess-1",
	})

	calls := 0
	err := Track(ctx, rec, TrackMeta{ActionType: audit.ActionDelete, ResourceType: audit.ResourceRule, ResourceID: "r1"}, func(context.Context) error {
		calls++
		return errors.New("rule is locked")
	})
	require.EqualError(t, err, "rule is locked")
	require.Equal(t, 1, calls)

	id := uuid.New()
	out, err := Tracked(ctx, rec, TrackMeta{ActionType: audit.ActionCreate, ResourceType: audit.ResourceRule, Details: map[string]any{"title": "x"}},
		func(context.Context) (uuid.UUID, error) { return id, nil },
		func(v uuid.UUID) string { return v.String() })
	require.NoError(t, err)
	require.Equal(t, id, out)

	entries := rec.Entries()
	require.Len(t, entries, 2)

	failed := entries[0]
	require.False(t, failed.Success)
	require.Equal(t, "rule is locked", failed.ErrorMessage)
	require.Equal(t, "r1", failed.ResourceID)
	require.Equal(t, staff, failed.StaffUserID)
	require.Equal(t, "192.0.2.1", failed.IPAddress)
	require.Equal(t, "curl/8", failed.UserAgent)
	require.Equal(t, "sess-1", failed.SessionID)

	ok := entries[1]
	require.True(t, ok.Success)
	require.Equal(t, id.String(), ok.ResourceID)
	require.JSONEq(t, `{"title":"x"}`, string(ok.ActionDetails))
	require.GreaterOrEqual(t, ok.DurationMS, int64(0))
}

type failingActivityRepo struct {
	repos.ActivityLogRepo
}

func (failingActivityRepo) Create(dbctx.Context, *types.ActivityLogEntry) error {
	return errors.New("staff_activity_logs: disk full")
}

func TestRecordSurvivesStorageFailure(t *testing.T) {
	var (
		mu     sync.Mutex
		queues []string
		failed []error
	)
	sink := func(queue string, err error) {
		mu.Lock()
		defer mu.Unlock()
		queues = append(queues, queue)
		failed = append(failed, err)
	}
	log := repotest.Logger(t)
	d := NewAuditDispatcher(log, failingActivityRepo{}, 4, sink)
	svc := NewAuditService(AuditServiceDeps{Log: log, Dispatcher: d})

	require.NotPanics(t, func() {
		svc.Record(context.Background(), &types.ActivityLogEntry{
			StaffUserID:  uuid.New(),
			ActionType:   audit.ActionCreate,
			ResourceType: audit.ResourceRule,
			Success:      true,
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"activity_log"}, queues)
	require.ErrorContains(t, failed[0], "store activity create/rule")
}
