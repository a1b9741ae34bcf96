package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/content"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
)

var CrossReferenceAggregateContract = Contract{
	Name:  "Content.CrossReferenceAggregate",
	Tx:    TxOwned,
	Notes: "Owns edge creation and removal. Edges to inactive rules are kept and filtered at " +
		"read time by the table repo.",
}

type CrossReferenceAggregate interface {
	Aggregate

	// AddEdge stores one directed edge even when it is bidirectional.
	AddEdge(ctx context.Context, in AddEdgeInput) (*content.CrossReference, error)

	// RemoveEdge deletes an edge that references RuleID on either end.
	RemoveEdge(ctx context.Context, in RemoveEdgeInput) error
}

type AddEdgeInput struct {
	Actor         workflow.Principal
	SourceRuleID  uuid.UUID
	TargetRuleID  uuid.UUID
	Type          content.ReferenceType
	Context       string
	Bidirectional *bool
	At            time.Time
}

type RemoveEdgeInput struct {
	Actor  workflow.Principal
	EdgeID uuid.UUID
	RuleID uuid.UUID
}
