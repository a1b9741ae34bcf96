package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"gorm.io/gorm"
)

const (
	MinPriority = 1
	MaxPriority = 5
)

type Announcement struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string    `gorm:"column:title;not null" json:"title"`
	Content  string    `gorm:"column:content;type:text;not null" json:"content"`
	Priority int       `gorm:"column:priority;not null" json:"priority"`

	Status   workflow.Status `gorm:"column:status;type:varchar(32);index" json:"status"`
	IsActive bool            `gorm:"column:is_active;not null;index" json:"is_active"`

	SubmittedBy *uuid.UUID `gorm:"type:uuid;index" json:"submitted_by,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `gorm:"column:review_notes" json:"review_notes,omitempty"`

	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Announcement) TableName() string { return "announcements" }

func (a *Announcement) Expired(now time.Time) bool {
	return a != nil && a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// ScheduledAnnouncement is promoted into a new Announcement once ScheduledFor
// passes or on manual trigger. The two rows never share an id.
type ScheduledAnnouncement struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string    `gorm:"column:title;not null" json:"title"`
	Content  string    `gorm:"column:content;type:text;not null" json:"content"`
	Priority int       `gorm:"column:priority;not null" json:"priority"`

	ScheduledFor    time.Time `gorm:"not null;index" json:"scheduled_for"`
	AutoExpireHours *int      `gorm:"column:auto_expire_hours" json:"auto_expire_hours,omitempty"`

	IsPublished             bool       `gorm:"column:is_published;not null;index" json:"is_published"`
	PublishedAt             *time.Time `json:"published_at,omitempty"`
	PublishedAnnouncementID *uuid.UUID `gorm:"type:uuid" json:"published_announcement_id,omitempty"`

	SubmittedBy uuid.UUID `gorm:"type:uuid;not null" json:"submitted_by"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ScheduledAnnouncement) TableName() string { return "scheduled_announcements" }
