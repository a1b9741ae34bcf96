package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/audit"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dispatch"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

const (
	defaultActivityLimit = 50
	defaultSummaryDays   = 30
)

// AuditDispatcher writes activity entries on its own goroutine, outside any
// caller transaction.
type AuditDispatcher struct {
	log   *logger.Logger
	repo  repos.ActivityLogRepo
	queue *dispatch.Queue[*types.ActivityLogEntry]
}

// NewAuditDispatcher starts the writer. The optional sink observes dropped
// and failed writes.
func NewAuditDispatcher(log *logger.Logger, repo repos.ActivityLogRepo, queueSize int, sink ...dispatch.ErrorSink) *AuditDispatcher {
	d := &AuditDispatcher{
		log:  log.With("service", "AuditDispatcher"),
		repo: repo,
	}
	d.queue = dispatch.NewQueue(log, dispatch.Options{
		Name:    "activity_log",
		Buffer:  queueSize,
		Workers: 1,
		Sink:    firstSink(sink),
	}, d.write)
	return d
}

func (d *AuditDispatcher) write(ctx context.Context, entry *types.ActivityLogEntry) error {
	if err := d.repo.Create(dbctx.Context{Ctx: ctx}, entry); err != nil {
		return fmt.Errorf("store activity %s/%s: %w", entry.ActionType, entry.ResourceType, err)
	}
	return nil
}

func (d *AuditDispatcher) Enqueue(entry *types.ActivityLogEntry) bool {
	return d.queue.Submit(entry)
}

func firstSink(sinks []dispatch.ErrorSink) dispatch.ErrorSink {
	for _, s := range sinks {
		if s != nil {
			return s
		}
	}
	return nil
}

// Close drains pending entries.
func (d *AuditDispatcher) Close(ctx context.Context) error {
	return d.queue.Close(ctx)
}

type ActivityEntryView struct {
	*types.ActivityLogEntry
	ResourceLabel string `json:"resource_label,omitempty"`
}

type ActivityPage struct {
	Entries []*ActivityEntryView `json:"entries"`
	Total   int64                `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

type AuditService interface {
	// Record is fire-and-forget. Incomplete entries and storage failures are
	// logged and dropped.
	Record(ctx context.Context, entry *types.ActivityLogEntry)
	Query(ctx context.Context, actor workflow.Principal, req ActivityQueryRequest) (*ActivityPage, error)
	Summarize(ctx context.Context, actor workflow.Principal, req ActivitySummaryRequest) ([]repos.ActivitySummaryRow, error)
}

type AuditServiceDeps struct {
	Log           *logger.Logger
	Dispatcher    *AuditDispatcher
	Activity      repos.ActivityLogRepo
	Rules         repos.RuleRepo
	Codes         repos.RuleCodeRepo
	Announcements repos.AnnouncementRepo
	Categories    repos.CategoryRepo
	Now           func() time.Time
}

type auditService struct {
	deps AuditServiceDeps
	log  *logger.Logger
}

func NewAuditService(deps AuditServiceDeps) AuditService {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &auditService{deps: deps, log: deps.Log.With("service", "AuditService")}
}

func (s *auditService) Record(ctx context.Context, entry *types.ActivityLogEntry) {
	if missing := entry.Missing(); missing != "" {
		s.log.Warn("activity entry dropped", "missing", missing)
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.deps.Now()
	}
	if s.deps.Dispatcher == nil {
		s.log.Warn("activity entry dropped", "reason", "no dispatcher", "action_type", entry.ActionType)
		return
	}
	s.deps.Dispatcher.Enqueue(entry)
}

func (s *auditService) Query(ctx context.Context, actor workflow.Principal, req ActivityQueryRequest) (*ActivityPage, error) {
	const op = "Audit.Query"
	if err := requireRole(op, actor, workflow.RoleAdmin); err != nil {
		return nil, err
	}
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	if req.Limit == 0 {
		req.Limit = defaultActivityLimit
	}
	rows, total, err := s.deps.Activity.List(dbctx.Context{Ctx: ctx}, repos.ActivityFilter{
		StaffUserID:  req.StaffUserID,
		ActionType:   req.ActionType,
		ResourceType: req.ResourceType,
		From:         req.From,
		To:           req.To,
		Limit:        req.Limit,
		Offset:       req.Offset,
	})
	if err != nil {
		return nil, readFailed(op, err)
	}
	labels := s.resourceLabels(ctx, rows)
	page := &ActivityPage{
		Entries: make([]*ActivityEntryView, 0, len(rows)),
		Total:   total,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}
	for _, row := range rows {
		page.Entries = append(page.Entries, &ActivityEntryView{
			ActivityLogEntry: row,
			ResourceLabel:    labels[labelKey{row.ResourceType, row.ResourceID}],
		})
	}
	return page, nil
}

func (s *auditService) Summarize(ctx context.Context, actor workflow.Principal, req ActivitySummaryRequest) ([]repos.ActivitySummaryRow, error) {
	const op = "Audit.Summarize"
	if err := requireRole(op, actor, workflow.RoleAdmin); err != nil {
		return nil, err
	}
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	days := req.WindowDays
	if days == 0 {
		days = defaultSummaryDays
	}
	since := s.deps.Now().AddDate(0, 0, -days)
	rows, err := s.deps.Activity.Summarize(dbctx.Context{Ctx: ctx}, req.StaffUserID, since)
	if err != nil {
		return nil, readFailed(op, err)
	}
	if rows == nil {
		rows = []repos.ActivitySummaryRow{}
	}
	return rows, nil
}

type labelKey struct {
	resourceType string
	resourceID   string
}

// resourceLabels resolves display labels in one query per resource type.
// Lookup failures only cost the labels.
func (s *auditService) resourceLabels(ctx context.Context, rows []*types.ActivityLogEntry) map[labelKey]string {
	byType := map[string][]uuid.UUID{}
	for _, row := range rows {
		id, err := uuid.Parse(row.ResourceID)
		if err != nil {
			continue
		}
		byType[row.ResourceType] = append(byType[row.ResourceType], id)
	}
	out := map[labelKey]string{}
	dbc := dbctx.Context{Ctx: ctx}

	if ids := uniqueIDs(byType[audit.ResourceRule]); len(ids) > 0 && s.deps.Codes != nil {
		codes, err := s.deps.Codes.GetByRuleIDs(dbc, ids)
		if err != nil {
			s.log.Warn("rule labels unavailable", "error", err)
		}
		for _, c := range codes {
			out[labelKey{audit.ResourceRule, c.RuleID.String()}] = c.FullCode
		}
	}
	if ids := uniqueIDs(byType[audit.ResourceAnnouncement]); len(ids) > 0 && s.deps.Announcements != nil {
		anns, err := s.deps.Announcements.GetByIDs(dbc, ids)
		if err != nil {
			s.log.Warn("announcement labels unavailable", "error", err)
		}
		for _, a := range anns {
			out[labelKey{audit.ResourceAnnouncement, a.ID.String()}] = a.Title
		}
	}
	if ids := uniqueIDs(byType[audit.ResourceCategory]); len(ids) > 0 && s.deps.Categories != nil {
		cats, err := s.deps.Categories.GetByIDs(dbc, ids)
		if err != nil {
			s.log.Warn("category labels unavailable", "error", err)
		}
		for _, c := range cats {
			out[labelKey{audit.ResourceCategory, c.ID.String()}] = c.LetterCode + " - " + c.Name
		}
	}
	return out
}
