package workflow

// Submission is the outcome of a create or edit, before persistence.
type Submission struct {
	Status   Status
	IsActive bool
	// Reviewed is set when the submitter's level publishes directly and
	// the submitter must be recorded as reviewer.
	Reviewed bool
}

// ResolveSubmission decides the status a create/edit lands in.
//
// An explicit draft or pending_approval request is honoured for every level.
// Otherwise editors land in pending_approval and moderators and above publish
// directly. Any other requested value is ignored.
func ResolveSubmission(actor Role, requested Status) Submission {
	if requested == StatusDraft || requested == StatusPending {
		return Submission{Status: requested, IsActive: false}
	}
	if AtLeast(actor, RoleModerator) {
		return Submission{Status: StatusApproved, IsActive: true, Reviewed: true}
	}
	return Submission{Status: StatusPending, IsActive: false}
}
