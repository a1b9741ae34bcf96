package workflow

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Status is the review state shared by rules and announcements.
// The empty value is a legacy row created before review existed and
// is treated like an approved one for visibility.
type Status string

const (
	StatusLegacy   Status = ""
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending_approval"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Public reports whether the status is visible to every staff level.
func (s Status) Public() bool {
	return s == StatusApproved || s == StatusLegacy
}

// Value stores the legacy status as NULL.
func (s Status) Value() (driver.Value, error) {
	if s == StatusLegacy {
		return nil, nil
	}
	return string(s), nil
}

func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StatusLegacy
	case string:
		*s = Status(v)
	case []byte:
		*s = Status(v)
	default:
		return fmt.Errorf("workflow: cannot scan %T into Status", src)
	}
	return nil
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if s == StatusLegacy || s.Valid() {
		return s, nil
	}
	return StatusLegacy, fmt.Errorf("unknown status %q", raw)
}

// TransitionError describes a transition the machine does not allow from Current.
type TransitionError struct {
	Action  string
	Current Status
}

func (e *TransitionError) Error() string {
	current := string(e.Current)
	if current == "" {
		current = "legacy"
	}
	return fmt.Sprintf("cannot %s content in status %s", e.Action, current)
}

// CheckReviewable guards approve and reject: both are only legal from pending_approval.
func CheckReviewable(action string, current Status) error {
	if current != StatusPending {
		return &TransitionError{Action: action, Current: current}
	}
	return nil
}
