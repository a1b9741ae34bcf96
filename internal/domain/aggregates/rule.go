package aggregates

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/content"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
)

var RuleAggregateContract = Contract{
	Name:  "Content.RuleAggregate",
	Tx:    TxOwned,
	Locks: []string{"categories", "rules"},
	Notes: "Owns rule numbering, the rule_codes projection and review transitions. " +
		"Numbers are allocated under a row lock on the category (main rules) or parent (sub-rules).",
}

// RuleAggregate owns rule lifecycle invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeInvalidState, CodeConflict, CodePermission, CodeRetryable, CodeInternal.
type RuleAggregate interface {
	Aggregate

	// Create numbers a new rule, allocates its code and applies the submission policy.
	Create(ctx context.Context, in CreateRuleInput) (RuleResult, error)

	// Update edits a rule and resubmits it through the submission policy.
	Update(ctx context.Context, in UpdateRuleInput) (RuleResult, error)

	// Approve publishes a pending rule.
	Approve(ctx context.Context, in ReviewInput) (RuleResult, error)

	// Reject declines a pending rule; notes are required.
	Reject(ctx context.Context, in ReviewInput) (RuleResult, error)

	// Delete soft-deletes a rule and its sub-rules and releases their codes.
	Delete(ctx context.Context, in DeleteInput) (DeleteRuleResult, error)

	// Restore reactivates a deleted rule together with the sub-rules deleted with it.
	Restore(ctx context.Context, in RestoreInput) (RuleResult, error)
}

type CreateRuleInput struct {
	Actor           workflow.Principal
	CategoryID      uuid.UUID
	ParentRuleID    *uuid.UUID
	Title           string
	Content         string
	Images          json.RawMessage
	RequestedStatus workflow.Status
	At              time.Time
}

type UpdateRuleInput struct {
	Actor           workflow.Principal
	RuleID          uuid.UUID
	Title           *string
	Content         *string
	Images          json.RawMessage
	RevisionLetter  *string
	RequestedStatus workflow.Status
	At              time.Time
}

type ReviewInput struct {
	Actor workflow.Principal
	ID    uuid.UUID
	Notes string
	At    time.Time
}

type DeleteInput struct {
	Actor workflow.Principal
	ID    uuid.UUID
	At    time.Time
}

type RestoreInput struct {
	Actor workflow.Principal
	ID    uuid.UUID
	At    time.Time
}

type RuleResult struct {
	Rule     *content.Rule
	FullCode string
	// Restored lists sub-rules brought back together with Rule.
	Restored []uuid.UUID
}

type DeleteRuleResult struct {
	RuleID   uuid.UUID
	Cascaded []uuid.UUID
}

var CodeAllocatorContract = Contract{
	Name:  "Content.CodeAllocator",
	Tx:    TxJoined,
	Locks: []string{"categories", "rules"},
	Notes: "Runs inside the caller's transaction after the category or parent row is locked, " +
		"so MAX+1 and the insert are one serialized unit.",
}
