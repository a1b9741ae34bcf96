package workflow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role is the staff permission level. Values are ordered: a higher value
// holds every permission of the lower ones.
type Role int

const (
	RoleUnknown Role = iota
	RoleEditor
	RoleModerator
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleEditor:    "editor",
	RoleModerator: "moderator",
	RoleAdmin:     "admin",
	RoleOwner:     "owner",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole accepts the lower-case role names issued by the identity layer.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "editor":
		return RoleEditor, nil
	case "moderator":
		return RoleModerator, nil
	case "admin":
		return RoleAdmin, nil
	case "owner":
		return RoleOwner, nil
	default:
		return RoleUnknown, fmt.Errorf("unknown role %q", raw)
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// AtLeast is the single permission comparison used across the service.
func AtLeast(actual, required Role) bool {
	if !actual.Valid() || !required.Valid() {
		return false
	}
	return actual >= required
}

// CanManage reports whether actor may administer a staff member holding target.
func CanManage(actor, target Role) bool {
	return actor.Valid() && target.Valid() && actor > target
}

// Principal is the authenticated caller of every operation.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

func (p Principal) Valid() bool {
	return p.ID != uuid.Nil && p.Role.Valid()
}

func (p Principal) AtLeast(required Role) bool {
	return p.Valid() && AtLeast(p.Role, required)
}
