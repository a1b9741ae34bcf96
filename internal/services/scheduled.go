package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/audit"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/ctxutil"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
)

const (
	publishBatchSize        = 50
	scheduledPublisherAgent = "scheduled-publisher"
)

type ScheduledAnnouncementService interface {
	List(ctx context.Context, actor workflow.Principal, req ListScheduledRequest) ([]*types.ScheduledAnnouncement, error)
	Schedule(ctx context.Context, actor workflow.Principal, req ScheduleAnnouncementRequest) (*types.ScheduledAnnouncement, error)
	Cancel(ctx context.Context, actor workflow.Principal, id uuid.UUID) error
	// Publish promotes one row on demand.
	Publish(ctx context.Context, actor workflow.Principal, id uuid.UUID) (domainagg.PublishScheduledResult, error)
	// PublishDue promotes every row due at now and reports how many were published.
	PublishDue(ctx context.Context, now time.Time) (int, error)
}

type ScheduledAnnouncementServiceDeps struct {
	Log       *logger.Logger
	Aggregate domainagg.AnnouncementAggregate
	Scheduled repos.ScheduledAnnouncementRepo
	Notifier  ContentNotifier
	// Audit records background promotions; HTTP-triggered ones are recorded
	// by the request middleware.
	Audit AuditService
}

type scheduledAnnouncementService struct {
	deps ScheduledAnnouncementServiceDeps
	log  *logger.Logger
}

func NewScheduledAnnouncementService(deps ScheduledAnnouncementServiceDeps) ScheduledAnnouncementService {
	deps.Notifier = notifierOrNop(deps.Notifier)
	return &scheduledAnnouncementService{deps: deps, log: deps.Log.With("service", "ScheduledAnnouncementService")}
}

func (s *scheduledAnnouncementService) List(ctx context.Context, actor workflow.Principal, req ListScheduledRequest) ([]*types.ScheduledAnnouncement, error) {
	const op = "ScheduledAnnouncement.List"
	if err := requireRole(op, actor, workflow.RoleModerator); err != nil {
		return nil, err
	}
	rows, err := s.deps.Scheduled.List(dbctx.Context{Ctx: ctx}, req.IncludePublished)
	if err != nil {
		return nil, readFailed(op, err)
	}
	return rows, nil
}

func (s *scheduledAnnouncementService) Schedule(ctx context.Context, actor workflow.Principal, req ScheduleAnnouncementRequest) (*types.ScheduledAnnouncement, error) {
	const op = "ScheduledAnnouncement.Schedule"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	row, err := s.deps.Aggregate.Schedule(ctx, domainagg.ScheduleAnnouncementInput{
		Actor:           actor,
		Title:           req.Title,
		Content:         req.Content,
		Priority:        req.Priority,
		ScheduledFor:    req.ScheduledFor,
		AutoExpireHours: req.AutoExpireHours,
	})
	if err != nil {
		return nil, err
	}
	s.deps.Notifier.Notify(ctx, realtime.ContentEvent{
		EntityType: realtime.EntityScheduledAnnouncement,
		EntityID:   row.ID,
		Action:     realtime.ActionCreate,
		ActorID:    actor.ID,
		Title:      row.Title,
	})
	return row, nil
}

func (s *scheduledAnnouncementService) Cancel(ctx context.Context, actor workflow.Principal, id uuid.UUID) error {
	if err := s.deps.Aggregate.CancelScheduled(ctx, domainagg.DeleteInput{Actor: actor, ID: id}); err != nil {
		return err
	}
	s.deps.Notifier.Notify(ctx, realtime.ContentEvent{
		EntityType: realtime.EntityScheduledAnnouncement,
		EntityID:   id,
		Action:     realtime.ActionDelete,
		ActorID:    actor.ID,
	})
	return nil
}

func (s *scheduledAnnouncementService) Publish(ctx context.Context, actor workflow.Principal, id uuid.UUID) (domainagg.PublishScheduledResult, error) {
	res, err := s.deps.Aggregate.PublishScheduled(ctx, domainagg.PublishScheduledInput{Actor: &actor, ID: id})
	if err != nil {
		return res, err
	}
	s.notifyPublished(ctx, actor.ID, res)
	return res, nil
}

func (s *scheduledAnnouncementService) PublishDue(ctx context.Context, now time.Time) (int, error) {
	const op = "ScheduledAnnouncement.PublishDue"
	due, err := s.deps.Scheduled.ListDue(dbctx.Context{Ctx: ctx}, now, publishBatchSize)
	if err != nil {
		return 0, readFailed(op, err)
	}
	published := 0
	for _, row := range due {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		res, err := s.publishOne(ctx, row, now)
		if err != nil {
			// Another publisher or a manual trigger got there first.
			if domainagg.IsCode(err, domainagg.CodeInvalidState) || domainagg.IsCode(err, domainagg.CodeNotFound) {
				continue
			}
			s.log.Warn("scheduled publish failed", "scheduled_id", row.ID, "error", err)
			continue
		}
		published++
		s.notifyPublished(ctx, uuid.Nil, res)
	}
	return published, nil
}

// publishOne promotes a due row and records it as an activity of the staff
// member who scheduled it.
func (s *scheduledAnnouncementService) publishOne(ctx context.Context, row *types.ScheduledAnnouncement, now time.Time) (domainagg.PublishScheduledResult, error) {
	actx := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		StaffID:   row.SubmittedBy,
		UserAgent: scheduledPublisherAgent,
	})
	meta := TrackMeta{
		ActionType:   audit.ActionPublish,
		ResourceType: audit.ResourceScheduledAnnouncement,
		ResourceID:   row.ID.String(),
		Details:      map[string]any{"trigger": "schedule", "scheduled_for": row.ScheduledFor},
	}
	return Tracked(actx, s.deps.Audit, meta, func(ctx context.Context) (domainagg.PublishScheduledResult, error) {
		return s.deps.Aggregate.PublishScheduled(ctx, domainagg.PublishScheduledInput{ID: row.ID, At: now})
	}, nil)
}

func (s *scheduledAnnouncementService) notifyPublished(ctx context.Context, actorID uuid.UUID, res domainagg.PublishScheduledResult) {
	s.deps.Notifier.Notify(ctx, realtime.ContentEvent{
		EntityType: realtime.EntityAnnouncement,
		EntityID:   res.Announcement.ID,
		Action:     realtime.ActionCreate,
		ActorID:    actorID,
		Title:      res.Announcement.Title,
	})
}

// ScheduledPublisher promotes due scheduled announcements on a fixed interval.
type ScheduledPublisher struct {
	log      *logger.Logger
	svc      ScheduledAnnouncementService
	interval time.Duration
	now      func() time.Time
}

func NewScheduledPublisher(baseLog *logger.Logger, svc ScheduledAnnouncementService, interval time.Duration) *ScheduledPublisher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ScheduledPublisher{
		log:      baseLog.With("component", "ScheduledPublisher"),
		svc:      svc,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run blocks until ctx ends.
func (p *ScheduledPublisher) Run(ctx context.Context) error {
	p.log.Info("Starting scheduled announcement publisher", "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.log.Info("Scheduled publisher stopped")
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *ScheduledPublisher) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Scheduled publisher panic", "panic", r)
		}
	}()
	n, err := p.svc.PublishDue(ctx, p.now())
	if err != nil {
		p.log.Warn("PublishDue failed", "error", err)
		return
	}
	if n > 0 {
		p.log.Info("Published scheduled announcements", "count", n)
	}
}
