package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
)

type CrossReferenceAggregateDeps struct {
	Base BaseDeps

	Rules repos.RuleRepo
	Refs  repos.CrossReferenceRepo
}

type crossReferenceAggregate struct {
	deps CrossReferenceAggregateDeps
}

func NewCrossReferenceAggregate(deps CrossReferenceAggregateDeps) domainagg.CrossReferenceAggregate {
	deps.Base = deps.Base.withDefaults()
	return &crossReferenceAggregate{deps: deps}
}

func (a *crossReferenceAggregate) Contract() domainagg.Contract {
	return domainagg.CrossReferenceAggregateContract
}

func (a *crossReferenceAggregate) configured(op string) error {
	if a.deps.Rules == nil || a.deps.Refs == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "cross reference aggregate repos not configured", nil)
	}
	return nil
}

func (a *crossReferenceAggregate) AddEdge(ctx context.Context, in domainagg.AddEdgeInput) (*types.CrossReference, error) {
	const op = "Content.CrossReference.AddEdge"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleEditor); err != nil {
		return nil, err
	}
	if in.SourceRuleID == uuid.Nil {
		return nil, domainagg.FieldError(op, "source_rule_id", "missing source rule id")
	}
	if in.TargetRuleID == uuid.Nil {
		return nil, domainagg.FieldError(op, "target_rule_id", "target_rule_id is required")
	}
	if in.SourceRuleID == in.TargetRuleID {
		return nil, domainagg.FieldError(op, "target_rule_id", "a rule cannot reference itself")
	}
	refType := types.ReferenceType(strings.TrimSpace(string(in.Type)))
	if refType == "" {
		refType = types.ReferenceRelated
	}
	if !refType.Valid() {
		return nil, domainagg.FieldError(op, "reference_type", fmt.Sprintf("unknown reference type %q", in.Type))
	}
	bidirectional := true
	if in.Bidirectional != nil {
		bidirectional = *in.Bidirectional
	}
	at := a.deps.Base.at(in.At)

	var out *types.CrossReference
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		for _, id := range []uuid.UUID{in.SourceRuleID, in.TargetRuleID} {
			r, err := a.deps.Rules.GetByID(dbc, id)
			if err != nil {
				return err
			}
			if r == nil || !r.IsActive {
				return domainagg.NotFound(op, "rule", id)
			}
		}
		exists, err := a.deps.Refs.Exists(dbc, in.SourceRuleID, in.TargetRuleID, refType)
		if err != nil {
			return err
		}
		if exists {
			return ConflictError("cross reference already exists")
		}
		row := &types.CrossReference{
			ID:               uuid.New(),
			SourceRuleID:     in.SourceRuleID,
			TargetRuleID:     in.TargetRuleID,
			ReferenceType:    refType,
			ReferenceContext: strings.TrimSpace(in.Context),
			IsBidirectional:  bidirectional,
			CreatedBy:        in.Actor.ID,
			CreatedAt:        at,
		}
		if _, err := a.deps.Refs.Create(dbc, row); err != nil {
			return err
		}
		out = row
		return nil
	})
	return out, err
}

func (a *crossReferenceAggregate) RemoveEdge(ctx context.Context, in domainagg.RemoveEdgeInput) error {
	const op = "Content.CrossReference.RemoveEdge"
	if err := a.configured(op); err != nil {
		return err
	}
	if err := requireRole(op, in.Actor, workflow.RoleEditor); err != nil {
		return err
	}
	if in.EdgeID == uuid.Nil {
		return domainagg.FieldError(op, "reference_id", "missing reference id")
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Refs.GetByID(dbc, in.EdgeID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "cross reference", in.EdgeID)
		}
		if in.RuleID != uuid.Nil && row.SourceRuleID != in.RuleID && row.TargetRuleID != in.RuleID {
			return domainagg.NotFound(op, "cross reference", in.EdgeID)
		}
		return a.deps.Refs.Delete(dbc, row.ID)
	})
}
