package domain

import (
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/audit"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/content"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
)

const (
	StatusLegacy   = workflow.StatusLegacy
	StatusDraft    = workflow.StatusDraft
	StatusPending  = workflow.StatusPending
	StatusApproved = workflow.StatusApproved
	StatusRejected = workflow.StatusRejected

	ReferenceRelated       = content.ReferenceRelated
	ReferenceSupersedes    = content.ReferenceSupersedes
	ReferenceClarifies     = content.ReferenceClarifies
	ReferenceConflictsWith = content.ReferenceConflictsWith
	ReferenceSeeAlso       = content.ReferenceSeeAlso
)

type Status = workflow.Status
type Role = workflow.Role
type Principal = workflow.Principal

type Category = content.Category
type Rule = content.Rule
type RuleCode = content.RuleCode
type CrossReference = content.CrossReference
type ReferenceType = content.ReferenceType
type Announcement = content.Announcement
type ScheduledAnnouncement = content.ScheduledAnnouncement

type ActivityLogEntry = audit.ActivityLogEntry
