package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
)

type AnnouncementService interface {
	// List applies visibility. Expired rows are only returned to admin+ and
	// only on request.
	List(ctx context.Context, actor workflow.Principal, req ListAnnouncementsRequest) ([]*types.Announcement, error)
	Create(ctx context.Context, actor workflow.Principal, req CreateAnnouncementRequest) (*types.Announcement, error)
	Update(ctx context.Context, actor workflow.Principal, id uuid.UUID, req UpdateAnnouncementRequest) (*types.Announcement, error)
	Approve(ctx context.Context, actor workflow.Principal, id uuid.UUID, req ReviewRequest) (*types.Announcement, error)
	Reject(ctx context.Context, actor workflow.Principal, id uuid.UUID, req ReviewRequest) (*types.Announcement, error)
	Delete(ctx context.Context, actor workflow.Principal, id uuid.UUID) error
}

type AnnouncementServiceDeps struct {
	Log           *logger.Logger
	Aggregate     domainagg.AnnouncementAggregate
	Announcements repos.AnnouncementRepo
	Notifier      ContentNotifier
	Now           func() time.Time
}

type announcementService struct {
	deps AnnouncementServiceDeps
	log  *logger.Logger
}

func NewAnnouncementService(deps AnnouncementServiceDeps) AnnouncementService {
	deps.Notifier = notifierOrNop(deps.Notifier)
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &announcementService{deps: deps, log: deps.Log.With("service", "AnnouncementService")}
}

func (s *announcementService) List(ctx context.Context, actor workflow.Principal, req ListAnnouncementsRequest) ([]*types.Announcement, error) {
	const op = "Announcement.List"
	if err := requireRole(op, actor, workflow.RoleEditor); err != nil {
		return nil, err
	}
	rows, err := s.deps.Announcements.List(dbctx.Context{Ctx: ctx}, repos.AnnouncementFilter{
		Scope:          workflow.VisibilityScope(actor),
		IncludeExpired: req.IncludeExpired && workflow.AtLeast(actor.Role, workflow.RoleAdmin),
		Now:            s.deps.Now(),
	})
	if err != nil {
		return nil, readFailed(op, err)
	}
	return rows, nil
}

func (s *announcementService) Create(ctx context.Context, actor workflow.Principal, req CreateAnnouncementRequest) (*types.Announcement, error) {
	const op = "Announcement.Create"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	row, err := s.deps.Aggregate.Create(ctx, domainagg.CreateAnnouncementInput{
		Actor:           actor,
		Title:           req.Title,
		Content:         req.Content,
		Priority:        req.Priority,
		ExpiresAt:       req.ExpiresAt,
		RequestedStatus: workflow.Status(req.Status),
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, actor, realtime.ActionCreate, row)
	return row, nil
}

func (s *announcementService) Update(ctx context.Context, actor workflow.Principal, id uuid.UUID, req UpdateAnnouncementRequest) (*types.Announcement, error) {
	const op = "Announcement.Update"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	row, err := s.deps.Aggregate.Update(ctx, domainagg.UpdateAnnouncementInput{
		Actor:           actor,
		ID:              id,
		Title:           req.Title,
		Content:         req.Content,
		Priority:        req.Priority,
		ExpiresAt:       req.ExpiresAt,
		RequestedStatus: workflow.Status(req.Status),
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, actor, realtime.ActionUpdate, row)
	return row, nil
}

func (s *announcementService) Approve(ctx context.Context, actor workflow.Principal, id uuid.UUID, req ReviewRequest) (*types.Announcement, error) {
	if err := Validate("Announcement.Approve", req); err != nil {
		return nil, err
	}
	row, err := s.deps.Aggregate.Approve(ctx, domainagg.ReviewInput{Actor: actor, ID: id, Notes: req.Notes})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, actor, realtime.ActionApprove, row)
	return row, nil
}

func (s *announcementService) Reject(ctx context.Context, actor workflow.Principal, id uuid.UUID, req ReviewRequest) (*types.Announcement, error) {
	if err := Validate("Announcement.Reject", req); err != nil {
		return nil, err
	}
	row, err := s.deps.Aggregate.Reject(ctx, domainagg.ReviewInput{Actor: actor, ID: id, Notes: req.Notes})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, actor, realtime.ActionReject, row)
	return row, nil
}

func (s *announcementService) Delete(ctx context.Context, actor workflow.Principal, id uuid.UUID) error {
	if err := s.deps.Aggregate.Delete(ctx, domainagg.DeleteInput{Actor: actor, ID: id}); err != nil {
		return err
	}
	s.deps.Notifier.Notify(ctx, realtime.ContentEvent{
		EntityType: realtime.EntityAnnouncement,
		EntityID:   id,
		Action:     realtime.ActionDelete,
		ActorID:    actor.ID,
	})
	return nil
}

func (s *announcementService) notify(ctx context.Context, actor workflow.Principal, action string, row *types.Announcement) {
	s.deps.Notifier.Notify(ctx, realtime.ContentEvent{
		EntityType: realtime.EntityAnnouncement,
		EntityID:   row.ID,
		Action:     action,
		ActorID:    actor.ID,
		Title:      row.Title,
	})
}
