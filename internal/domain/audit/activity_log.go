package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Action types recorded for staff operations.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionRestore  = "restore"
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionPublish  = "publish"
	ActionReorder  = "reorder"
	ActionView     = "view"
	ActionSearch   = "search"
	ActionLinkAdd  = "add_reference"
	ActionLinkDrop = "remove_reference"
)

// Resource types recorded for staff operations.
const (
	ResourceRule                  = "rule"
	ResourceCategory              = "category"
	ResourceAnnouncement          = "announcement"
	ResourceScheduledAnnouncement = "scheduled_announcement"
	ResourceCrossReference        = "cross_reference"
	ResourceActivityLog           = "activity_log"
)

// ActivityLogEntry is an append-only fact about one staff action.
type ActivityLogEntry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StaffUserID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"staff_user_id"`
	ActionType    string         `gorm:"column:action_type;not null;index" json:"action_type"`
	ResourceType  string         `gorm:"column:resource_type;not null;index" json:"resource_type"`
	ResourceID    string         `gorm:"column:resource_id;index" json:"resource_id,omitempty"`
	ActionDetails datatypes.JSON `gorm:"column:action_details" json:"action_details,omitempty"`
	IPAddress     string         `gorm:"column:ip_address" json:"ip_address,omitempty"`
	UserAgent     string         `gorm:"column:user_agent" json:"user_agent,omitempty"`
	SessionID     string         `gorm:"column:session_id" json:"session_id,omitempty"`
	Success       bool           `gorm:"column:success;not null" json:"success"`
	ErrorMessage  string         `gorm:"column:error_message" json:"error_message,omitempty"`
	DurationMS    int64          `gorm:"column:duration_ms;not null" json:"duration_ms"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
}

func (ActivityLogEntry) TableName() string { return "staff_activity_logs" }

// Missing returns the name of the first absent required field, or "".
func (e *ActivityLogEntry) Missing() string {
	switch {
	case e == nil:
		return "entry"
	case e.StaffUserID == uuid.Nil:
		return "staff_user_id"
	case e.ActionType == "":
		return "action_type"
	case e.ResourceType == "":
		return "resource_type"
	default:
		return ""
	}
}
