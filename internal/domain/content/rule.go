package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Rule is a numbered rule or sub-rule. Hierarchy depth is capped at two:
// a sub-rule's parent is always a main rule.
//
// IsActive=false covers both unpublished rows (draft, pending, rejected) and
// deleted ones; DeletedAt distinguishes the latter.
type Rule struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"category_id"`
	ParentRuleID *uuid.UUID `gorm:"type:uuid;index" json:"parent_rule_id,omitempty"`

	Title   string `gorm:"column:title" json:"title"`
	Content string `gorm:"column:content;type:text;not null" json:"content"`

	RuleNumber     int    `gorm:"column:rule_number;not null;index" json:"rule_number"`
	SubNumber      *int   `gorm:"column:sub_number" json:"sub_number,omitempty"`
	RevisionLetter string `gorm:"column:revision_letter;size:1;not null" json:"revision_letter"`

	Status   workflow.Status `gorm:"column:status;type:varchar(32);index" json:"status"`
	IsActive bool            `gorm:"column:is_active;not null;index" json:"is_active"`

	SubmittedBy *uuid.UUID `gorm:"type:uuid;index" json:"submitted_by,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `gorm:"column:review_notes" json:"review_notes,omitempty"`

	// Ordered list of image references owned by the external upload service.
	Images datatypes.JSON `gorm:"column:images" json:"images"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Rule) TableName() string { return "rules" }

func (r *Rule) IsSubRule() bool { return r != nil && r.ParentRuleID != nil }

// RuleCode is the derived, globally unique code row of a rule.
type RuleCode struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RuleID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"rule_id"`
	FullCode             string    `gorm:"column:full_code;not null;uniqueIndex" json:"full_code"`
	SearchableContent    string    `gorm:"column:searchable_content;type:text" json:"searchable_content"`
	TruncatedDescription string    `gorm:"column:truncated_description" json:"truncated_description"`
	CreatedAt            time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null" json:"updated_at"`
}

func (RuleCode) TableName() string { return "rule_codes" }
