package realtime

import (
	"time"

	"github.com/google/uuid"
)

// Action names carried by ContentEvent.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionDelete  = "delete"
)

// Entity names carried by ContentEvent.
const (
	EntityRule                  = "rule"
	EntityAnnouncement          = "announcement"
	EntityScheduledAnnouncement = "scheduled_announcement"
	EntityCategory              = "category"
	EntityCrossReference        = "cross_reference"
)

// ContentEvent is published after a content transition commits.
type ContentEvent struct {
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	Action     string    `json:"action"`
	ActorID    uuid.UUID `json:"actor_id,omitempty"`
	FullCode   string    `json:"full_code,omitempty"`
	Title      string    `json:"title,omitempty"`
	At         time.Time `json:"at"`
}
