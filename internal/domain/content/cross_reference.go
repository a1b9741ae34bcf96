package content

import (
	"time"

	"github.com/google/uuid"
)

type ReferenceType string

const (
	ReferenceRelated       ReferenceType = "related"
	ReferenceSupersedes    ReferenceType = "supersedes"
	ReferenceClarifies     ReferenceType = "clarifies"
	ReferenceConflictsWith ReferenceType = "conflicts_with"
	ReferenceSeeAlso       ReferenceType = "see_also"
)

var ReferenceTypes = []ReferenceType{
	ReferenceRelated,
	ReferenceSupersedes,
	ReferenceClarifies,
	ReferenceConflictsWith,
	ReferenceSeeAlso,
}

func (t ReferenceType) Valid() bool {
	for _, known := range ReferenceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CrossReference is one directed edge between two rules. Bidirectional edges
// are still stored once; the flag only affects how the target displays it.
type CrossReference struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SourceRuleID     uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_rule_xref_edge,priority:1" json:"source_rule_id"`
	TargetRuleID     uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_rule_xref_edge,priority:2;index" json:"target_rule_id"`
	ReferenceType    ReferenceType `gorm:"column:reference_type;type:varchar(32);not null;uniqueIndex:idx_rule_xref_edge,priority:3" json:"reference_type"`
	ReferenceContext string        `gorm:"column:reference_context" json:"reference_context,omitempty"`
	IsBidirectional  bool          `gorm:"column:is_bidirectional;not null" json:"is_bidirectional"`
	CreatedBy        uuid.UUID     `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt        time.Time     `gorm:"not null" json:"created_at"`
}

func (CrossReference) TableName() string { return "rule_cross_references" }
