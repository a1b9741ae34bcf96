package workflow

import "github.com/google/uuid"

// Scope is the list-query form of the visibility policy.
type Scope struct {
	// All disables status filtering entirely.
	All bool
	// Public statuses are visible regardless of submitter; legacy rows are
	// included via IncludeLegacy.
	Public        []Status
	IncludeLegacy bool
	// Own statuses are visible only when submitted_by == OwnerID.
	OwnerID uuid.UUID
	Own     []Status
}

// VisibilityScope derives the list filter for a principal.
func VisibilityScope(p Principal) Scope {
	if AtLeast(p.Role, RoleModerator) {
		return Scope{All: true}
	}
	return Scope{
		Public:        []Status{StatusApproved},
		IncludeLegacy: true,
		OwnerID:       p.ID,
		Own:           []Status{StatusDraft, StatusPending},
	}
}

// CanView is the row-level form of the same policy. It must agree with
// VisibilityScope for every input.
func CanView(p Principal, status Status, submittedBy *uuid.UUID) bool {
	scope := VisibilityScope(p)
	if scope.All {
		return true
	}
	if status == StatusLegacy {
		return scope.IncludeLegacy
	}
	for _, s := range scope.Public {
		if s == status {
			return true
		}
	}
	if submittedBy == nil || *submittedBy != scope.OwnerID || scope.OwnerID == uuid.Nil {
		return false
	}
	for _, s := range scope.Own {
		if s == status {
			return true
		}
	}
	return false
}

// VisibleStatuses lists the statuses a principal can see on rows submitted by
// someone else. Legacy rows are included for every level.
func VisibleStatuses(p Principal) []Status {
	if AtLeast(p.Role, RoleModerator) {
		return []Status{StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusLegacy}
	}
	return []Status{StatusApproved, StatusLegacy}
}

// CanEdit reports whether p may resubmit a row. Editors may edit what they
// can view plus any row they submitted, so a rejected submission can be
// reworked by its author.
func CanEdit(p Principal, status Status, submittedBy *uuid.UUID) bool {
	if CanView(p, status, submittedBy) {
		return true
	}
	return p.ID != uuid.Nil && submittedBy != nil && *submittedBy == p.ID
}
