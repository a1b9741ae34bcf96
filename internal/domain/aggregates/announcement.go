package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/content"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
)

var AnnouncementAggregateContract = Contract{
	Name:  "Content.AnnouncementAggregate",
	Tx:    TxOwned,
	Locks: []string{"announcements", "scheduled_announcements"},
	Notes: "Owns announcement review transitions and one-way promotion of scheduled announcements.",
}

// AnnouncementAggregate shares the review state machine with rules but is flat.
type AnnouncementAggregate interface {
	Aggregate

	Create(ctx context.Context, in CreateAnnouncementInput) (*content.Announcement, error)
	Update(ctx context.Context, in UpdateAnnouncementInput) (*content.Announcement, error)
	Approve(ctx context.Context, in ReviewInput) (*content.Announcement, error)
	Reject(ctx context.Context, in ReviewInput) (*content.Announcement, error)
	Delete(ctx context.Context, in DeleteInput) error

	// Schedule stores an announcement to be promoted at ScheduledFor.
	Schedule(ctx context.Context, in ScheduleAnnouncementInput) (*content.ScheduledAnnouncement, error)

	// CancelScheduled removes an unpublished scheduled announcement.
	CancelScheduled(ctx context.Context, in DeleteInput) error

	// PublishScheduled promotes a scheduled row into a new live announcement.
	// The scheduled row is marked published in the same transaction.
	PublishScheduled(ctx context.Context, in PublishScheduledInput) (PublishScheduledResult, error)
}

type CreateAnnouncementInput struct {
	Actor           workflow.Principal
	Title           string
	Content         string
	Priority        int
	ExpiresAt       *time.Time
	RequestedStatus workflow.Status
	At              time.Time
}

type UpdateAnnouncementInput struct {
	Actor           workflow.Principal
	ID              uuid.UUID
	Title           *string
	Content         *string
	Priority        *int
	ExpiresAt       *time.Time
	RequestedStatus workflow.Status
	At              time.Time
}

type ScheduleAnnouncementInput struct {
	Actor           workflow.Principal
	Title           string
	Content         string
	Priority        int
	ScheduledFor    time.Time
	AutoExpireHours *int
	At              time.Time
}

type PublishScheduledInput struct {
	// Actor is nil when the background publisher promotes a due row.
	Actor *workflow.Principal
	ID    uuid.UUID
	At    time.Time
}

type PublishScheduledResult struct {
	Scheduled    *content.ScheduledAnnouncement
	Announcement *content.Announcement
}
