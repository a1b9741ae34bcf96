package aggregates

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/rulecode"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
)

// CodeAllocator numbers rules and maintains their rule_codes rows.
// It never opens a transaction; callers pass the one they hold.
type CodeAllocator struct {
	rules repos.RuleRepo
	codes repos.RuleCodeRepo
}

func NewCodeAllocator(rules repos.RuleRepo, codes repos.RuleCodeRepo) *CodeAllocator {
	return &CodeAllocator{rules: rules, codes: codes}
}

func (a *CodeAllocator) Contract() domainagg.Contract {
	return domainagg.CodeAllocatorContract
}

// NextNumber returns MAX+1 over every main rule of the category, or over every
// child of parentRuleID when set. Deleted rows count so numbers are never reused.
func (a *CodeAllocator) NextNumber(dbc dbctx.Context, categoryID uuid.UUID, parentRuleID *uuid.UUID) (int, error) {
	if parentRuleID != nil {
		maxSub, err := a.rules.GetMaxSubNumber(dbc, *parentRuleID)
		if err != nil {
			return 0, err
		}
		return maxSub + 1, nil
	}
	if categoryID == uuid.Nil {
		return 0, ValidationError("category_id is required to number a main rule")
	}
	maxNum, err := a.rules.GetMaxRuleNumber(dbc, categoryID)
	if err != nil {
		return 0, err
	}
	return maxNum + 1, nil
}

// Allocate replaces the rule's code row with a fresh projection.
//
// A row already holding the same full code is removed only when it is stale:
// it belongs to this rule, or to a rule that is deleted or gone. A live owner
// means numbering went wrong and is reported as a conflict.
func (a *CodeAllocator) Allocate(dbc dbctx.Context, rule *types.Rule, letter string) (*types.RuleCode, error) {
	if rule == nil || rule.ID == uuid.Nil {
		return nil, ValidationError("rule is required for code allocation")
	}
	proj, err := rulecode.Project(letter, rule.RuleNumber, rule.SubNumber, rule.RevisionLetter, rule.Title, rule.Content)
	if err != nil {
		return nil, ValidationError(err.Error())
	}

	existing, err := a.codes.GetByFullCode(dbc, proj.FullCode)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.RuleID != rule.ID {
		owner, err := a.rules.GetByIDUnscoped(dbc, existing.RuleID)
		if err != nil {
			return nil, err
		}
		if owner != nil && !owner.DeletedAt.Valid {
			return nil, ConflictError(fmt.Sprintf("code %s is held by live rule %s", proj.FullCode, owner.ID))
		}
	}
	if existing != nil {
		if err := a.codes.DeleteByID(dbc, existing.ID); err != nil {
			return nil, err
		}
	}
	if err := a.codes.DeleteByRuleIDs(dbc, []uuid.UUID{rule.ID}); err != nil {
		return nil, err
	}

	return a.codes.Create(dbc, &types.RuleCode{
		RuleID:               rule.ID,
		FullCode:             proj.FullCode,
		SearchableContent:    proj.SearchableContent,
		TruncatedDescription: proj.TruncatedDescription,
	})
}

// Release deletes the code rows of the given rules, freeing their code strings.
func (a *CodeAllocator) Release(dbc dbctx.Context, ruleIDs []uuid.UUID) error {
	return a.codes.DeleteByRuleIDs(dbc, ruleIDs)
}
