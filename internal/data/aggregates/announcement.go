package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/content"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
)

type AnnouncementAggregateDeps struct {
	Base BaseDeps

	Announcements repos.AnnouncementRepo
	Scheduled     repos.ScheduledAnnouncementRepo
}

type announcementAggregate struct {
	deps AnnouncementAggregateDeps
}

func NewAnnouncementAggregate(deps AnnouncementAggregateDeps) domainagg.AnnouncementAggregate {
	deps.Base = deps.Base.withDefaults()
	return &announcementAggregate{deps: deps}
}

func (a *announcementAggregate) Contract() domainagg.Contract {
	return domainagg.AnnouncementAggregateContract
}

func (a *announcementAggregate) configured(op string) error {
	if a.deps.Announcements == nil || a.deps.Scheduled == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "announcement aggregate repos not configured", nil)
	}
	return nil
}

func validatePriority(op string, p int) (int, error) {
	if p == 0 {
		return content.MinPriority, nil
	}
	if p < content.MinPriority || p > content.MaxPriority {
		return 0, domainagg.FieldError(op, "priority", "priority must be between 1 and 5")
	}
	return p, nil
}

func (a *announcementAggregate) Create(ctx context.Context, in domainagg.CreateAnnouncementInput) (*types.Announcement, error) {
	const op = "Content.Announcement.Create"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleEditor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Content)
	if title == "" {
		return nil, domainagg.FieldError(op, "title", "title is required")
	}
	if body == "" {
		return nil, domainagg.FieldError(op, "content", "content is required")
	}
	priority, err := validatePriority(op, in.Priority)
	if err != nil {
		return nil, err
	}
	at := a.deps.Base.at(in.At)
	if in.ExpiresAt != nil && !in.ExpiresAt.After(at) {
		return nil, domainagg.FieldError(op, "expires_at", "expires_at must be in the future")
	}
	sub := workflow.ResolveSubmission(in.Actor.Role, in.RequestedStatus)

	var out *types.Announcement
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row := &types.Announcement{
			ID:        uuid.New(),
			Title:     title,
			Content:   body,
			Priority:  priority,
			ExpiresAt: utcPtr(in.ExpiresAt),
			CreatedAt: at,
			UpdatedAt: at,
		}
		applyAnnouncementSubmission(row, sub, in.Actor.ID, at)
		if _, err := a.deps.Announcements.Create(dbc, []*types.Announcement{row}); err != nil {
			return err
		}
		out = row
		return nil
	})
	return out, err
}

func (a *announcementAggregate) Update(ctx context.Context, in domainagg.UpdateAnnouncementInput) (*types.Announcement, error) {
	const op = "Content.Announcement.Update"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleEditor); err != nil {
		return nil, err
	}
	if in.ID == uuid.Nil {
		return nil, domainagg.FieldError(op, "id", "missing announcement id")
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, domainagg.FieldError(op, "title", "title cannot be blank")
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return nil, domainagg.FieldError(op, "content", "content cannot be blank")
	}
	if in.Priority != nil {
		if *in.Priority < content.MinPriority || *in.Priority > content.MaxPriority {
			return nil, domainagg.FieldError(op, "priority", "priority must be between 1 and 5")
		}
	}
	at := a.deps.Base.at(in.At)
	sub := workflow.ResolveSubmission(in.Actor.Role, in.RequestedStatus)

	var out *types.Announcement
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Announcements.LockByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if row == nil || !workflow.CanEdit(in.Actor, row.Status, row.SubmittedBy) {
			return domainagg.NotFound(op, "announcement", in.ID)
		}
		updates := map[string]interface{}{"updated_at": at}
		if in.Title != nil {
			row.Title = strings.TrimSpace(*in.Title)
			updates["title"] = row.Title
		}
		if in.Content != nil {
			row.Content = strings.TrimSpace(*in.Content)
			updates["content"] = row.Content
		}
		if in.Priority != nil {
			row.Priority = *in.Priority
			updates["priority"] = row.Priority
		}
		if in.ExpiresAt != nil {
			row.ExpiresAt = utcPtr(in.ExpiresAt)
			updates["expires_at"] = *row.ExpiresAt
		}
		applyAnnouncementSubmission(row, sub, in.Actor.ID, at)
		row.UpdatedAt = at
		for k, v := range submissionFields(sub, in.Actor.ID, at) {
			updates[k] = v
		}
		if err := a.deps.Announcements.UpdateFields(dbc, row.ID, updates); err != nil {
			return err
		}
		out = row
		return nil
	})
	return out, err
}

func (a *announcementAggregate) Approve(ctx context.Context, in domainagg.ReviewInput) (*types.Announcement, error) {
	return a.review(ctx, "Content.Announcement.Approve", in, workflow.StatusApproved)
}

func (a *announcementAggregate) Reject(ctx context.Context, in domainagg.ReviewInput) (*types.Announcement, error) {
	return a.review(ctx, "Content.Announcement.Reject", in, workflow.StatusRejected)
}

func (a *announcementAggregate) review(ctx context.Context, op string, in domainagg.ReviewInput, to workflow.Status) (*types.Announcement, error) {
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleModerator); err != nil {
		return nil, err
	}
	if in.ID == uuid.Nil {
		return nil, domainagg.FieldError(op, "id", "missing announcement id")
	}
	notes := strings.TrimSpace(in.Notes)
	if to == workflow.StatusRejected && notes == "" {
		return nil, domainagg.FieldError(op, "review_notes", "review notes are required to reject")
	}
	at := a.deps.Base.at(in.At)

	var out *types.Announcement
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Announcements.LockByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "announcement", in.ID)
		}
		if err := workflow.CheckReviewable(reviewAction(to), row.Status); err != nil {
			return err
		}
		reviewer := in.Actor.ID
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, types.Announcement{}.TableName(), row.ID, []workflow.Status{workflow.StatusPending}, map[string]any{
			"status":       to,
			"is_active":    to == workflow.StatusApproved,
			"reviewed_by":  reviewer,
			"reviewed_at":  at,
			"review_notes": notes,
			"updated_at":   at,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "announcement status changed during review"); err != nil {
			return err
		}
		row.Status = to
		row.IsActive = to == workflow.StatusApproved
		row.ReviewedBy = &reviewer
		row.ReviewedAt = &at
		row.ReviewNotes = notes
		row.UpdatedAt = at
		out = row
		return nil
	})
	return out, err
}

func (a *announcementAggregate) Delete(ctx context.Context, in domainagg.DeleteInput) error {
	const op = "Content.Announcement.Delete"
	if err := a.configured(op); err != nil {
		return err
	}
	if err := requireRole(op, in.Actor, workflow.RoleModerator); err != nil {
		return err
	}
	if in.ID == uuid.Nil {
		return domainagg.FieldError(op, "id", "missing announcement id")
	}
	at := a.deps.Base.at(in.At)
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Announcements.LockByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "announcement", in.ID)
		}
		return a.deps.Announcements.SoftDelete(dbc, row.ID, at)
	})
}

func (a *announcementAggregate) Schedule(ctx context.Context, in domainagg.ScheduleAnnouncementInput) (*types.ScheduledAnnouncement, error) {
	const op = "Content.Announcement.Schedule"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleModerator); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Content)
	if title == "" {
		return nil, domainagg.FieldError(op, "title", "title is required")
	}
	if body == "" {
		return nil, domainagg.FieldError(op, "content", "content is required")
	}
	if in.ScheduledFor.IsZero() {
		return nil, domainagg.FieldError(op, "scheduled_for", "scheduled_for is required")
	}
	if in.AutoExpireHours != nil && *in.AutoExpireHours <= 0 {
		return nil, domainagg.FieldError(op, "auto_expire_hours", "auto_expire_hours must be positive")
	}
	priority, err := validatePriority(op, in.Priority)
	if err != nil {
		return nil, err
	}
	at := a.deps.Base.at(in.At)

	var out *types.ScheduledAnnouncement
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row := &types.ScheduledAnnouncement{
			ID:              uuid.New(),
			Title:           title,
			Content:         body,
			Priority:        priority,
			ScheduledFor:    in.ScheduledFor.UTC().Truncate(time.Microsecond),
			AutoExpireHours: in.AutoExpireHours,
			SubmittedBy:     in.Actor.ID,
			CreatedAt:       at,
			UpdatedAt:       at,
		}
		if _, err := a.deps.Scheduled.Create(dbc, row); err != nil {
			return err
		}
		out = row
		return nil
	})
	return out, err
}

func (a *announcementAggregate) CancelScheduled(ctx context.Context, in domainagg.DeleteInput) error {
	const op = "Content.Announcement.CancelScheduled"
	if err := a.configured(op); err != nil {
		return err
	}
	if err := requireRole(op, in.Actor, workflow.RoleModerator); err != nil {
		return err
	}
	if in.ID == uuid.Nil {
		return domainagg.FieldError(op, "id", "missing scheduled announcement id")
	}
	at := a.deps.Base.at(in.At)
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Scheduled.LockByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "scheduled announcement", in.ID)
		}
		if row.IsPublished {
			return domainagg.InvalidState(op, "published", "scheduled announcement is already published")
		}
		return a.deps.Scheduled.SoftDelete(dbc, row.ID, at)
	})
}

func (a *announcementAggregate) PublishScheduled(ctx context.Context, in domainagg.PublishScheduledInput) (domainagg.PublishScheduledResult, error) {
	const op = "Content.Announcement.PublishScheduled"
	var out domainagg.PublishScheduledResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if in.Actor != nil {
		if err := requireRole(op, *in.Actor, workflow.RoleModerator); err != nil {
			return out, err
		}
	}
	if in.ID == uuid.Nil {
		return out, domainagg.FieldError(op, "id", "missing scheduled announcement id")
	}
	at := a.deps.Base.at(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Scheduled.LockByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "scheduled announcement", in.ID)
		}
		if row.IsPublished {
			return domainagg.InvalidState(op, "published", "scheduled announcement is already published")
		}

		// A scheduled announcement was created by a moderator, so the
		// promoted row is published without another review.
		reviewer := row.SubmittedBy
		if in.Actor != nil {
			reviewer = in.Actor.ID
		}
		submitter := row.SubmittedBy
		live := &types.Announcement{
			ID:          uuid.New(),
			Title:       row.Title,
			Content:     row.Content,
			Priority:    row.Priority,
			Status:      workflow.StatusApproved,
			IsActive:    true,
			SubmittedBy: &submitter,
			SubmittedAt: &at,
			ReviewedBy:  &reviewer,
			ReviewedAt:  &at,
			CreatedAt:   at,
			UpdatedAt:   at,
		}
		if row.AutoExpireHours != nil && *row.AutoExpireHours > 0 {
			expires := at.Add(time.Duration(*row.AutoExpireHours) * time.Hour)
			live.ExpiresAt = &expires
		}
		if _, err := a.deps.Announcements.Create(dbc, []*types.Announcement{live}); err != nil {
			return err
		}

		if err := a.deps.Scheduled.UpdateFields(dbc, row.ID, map[string]interface{}{
			"is_published":              true,
			"published_at":              at,
			"published_announcement_id": live.ID,
			"updated_at":                at,
		}); err != nil {
			return err
		}
		row.IsPublished = true
		row.PublishedAt = &at
		row.PublishedAnnouncementID = &live.ID
		row.UpdatedAt = at

		out = domainagg.PublishScheduledResult{Scheduled: row, Announcement: live}
		return nil
	})
	return out, err
}

func applyAnnouncementSubmission(row *types.Announcement, sub workflow.Submission, actor uuid.UUID, at time.Time) {
	row.Status = sub.Status
	row.IsActive = sub.IsActive
	row.SubmittedBy = &actor
	row.SubmittedAt = &at
	row.ReviewNotes = ""
	row.ReviewedBy = nil
	row.ReviewedAt = nil
	if sub.Reviewed {
		row.ReviewedBy = &actor
		row.ReviewedAt = &at
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC().Truncate(time.Microsecond)
	return &u
}
