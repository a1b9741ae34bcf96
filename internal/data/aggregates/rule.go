package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/rulecode"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RuleAggregateDeps struct {
	Base BaseDeps

	Categories repos.CategoryRepo
	Rules      repos.RuleRepo
	Codes      repos.RuleCodeRepo
}

type ruleAggregate struct {
	deps  RuleAggregateDeps
	codes *CodeAllocator
}

func NewRuleAggregate(deps RuleAggregateDeps) domainagg.RuleAggregate {
	deps.Base = deps.Base.withDefaults()
	return &ruleAggregate{deps: deps, codes: NewCodeAllocator(deps.Rules, deps.Codes)}
}

func (a *ruleAggregate) Contract() domainagg.Contract {
	return domainagg.RuleAggregateContract
}

func (a *ruleAggregate) configured(op string) error {
	if a.deps.Categories == nil || a.deps.Rules == nil || a.deps.Codes == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "rule aggregate repos not configured", nil)
	}
	return nil
}

func (a *ruleAggregate) Create(ctx context.Context, in domainagg.CreateRuleInput) (domainagg.RuleResult, error) {
	const op = "Content.Rule.Create"
	var out domainagg.RuleResult

	if err := a.configured(op); err != nil {
		return out, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleEditor); err != nil {
		return out, err
	}
	body := strings.TrimSpace(in.Content)
	if body == "" {
		return out, domainagg.FieldError(op, "content", "content is required")
	}
	if in.CategoryID == uuid.Nil && in.ParentRuleID == nil {
		return out, domainagg.FieldError(op, "category_id", "category_id is required")
	}
	images, err := normalizeImages(op, in.Images)
	if err != nil {
		return out, err
	}

	at := a.deps.Base.at(in.At)
	sub := workflow.ResolveSubmission(in.Actor.Role, in.RequestedStatus)

	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row := &types.Rule{
			ID:             uuid.New(),
			Title:          strings.TrimSpace(in.Title),
			Content:        body,
			RevisionLetter: rulecode.FirstRevision,
			Images:         images,
			CreatedAt:      at,
			UpdatedAt:      at,
		}
		applyRuleSubmission(row, sub, in.Actor.ID, at)

		var cat *types.Category
		if in.ParentRuleID != nil {
			parent, err := a.deps.Rules.LockByID(dbc, *in.ParentRuleID)
			if err != nil {
				return err
			}
			if parent == nil {
				return domainagg.NotFound(op, "parent rule", *in.ParentRuleID)
			}
			if parent.ParentRuleID != nil {
				return domainagg.FieldError(op, "parent_rule_id", "sub-rules cannot have sub-rules")
			}
			if in.CategoryID != uuid.Nil && in.CategoryID != parent.CategoryID {
				return domainagg.FieldError(op, "category_id", "category_id does not match the parent rule")
			}
			cat, err = a.deps.Categories.GetByID(dbc, parent.CategoryID)
			if err != nil {
				return err
			}
			if cat == nil {
				return domainagg.NotFound(op, "category", parent.CategoryID)
			}
			next, err := a.codes.NextNumber(dbc, cat.ID, &parent.ID)
			if err != nil {
				return err
			}
			row.ParentRuleID = &parent.ID
			row.RuleNumber = parent.RuleNumber
			row.SubNumber = &next
		} else {
			locked, err := a.deps.Categories.LockByID(dbc, in.CategoryID)
			if err != nil {
				return err
			}
			if locked == nil {
				return domainagg.NotFound(op, "category", in.CategoryID)
			}
			cat = locked
			next, err := a.codes.NextNumber(dbc, cat.ID, nil)
			if err != nil {
				return err
			}
			row.RuleNumber = next
		}
		row.CategoryID = cat.ID

		if _, err := a.deps.Rules.Create(dbc, []*types.Rule{row}); err != nil {
			return err
		}
		code, err := a.codes.Allocate(dbc, row, cat.LetterCode)
		if err != nil {
			return err
		}
		out = domainagg.RuleResult{Rule: row, FullCode: code.FullCode}
		return nil
	})
	return out, err
}

func (a *ruleAggregate) Update(ctx context.Context, in domainagg.UpdateRuleInput) (domainagg.RuleResult, error) {
	const op = "Content.Rule.Update"
	var out domainagg.RuleResult

	if err := a.configured(op); err != nil {
		return out, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleEditor); err != nil {
		return out, err
	}
	if in.RuleID == uuid.Nil {
		return out, domainagg.FieldError(op, "id", "missing rule id")
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return out, domainagg.FieldError(op, "content", "content cannot be blank")
	}
	if in.RevisionLetter != nil && !rulecode.ValidRevision(*in.RevisionLetter) {
		return out, domainagg.FieldError(op, "revision_letter", "revision_letter must be a single lower-case letter")
	}
	var images datatypes.JSON
	if in.Images != nil {
		var err error
		if images, err = normalizeImages(op, in.Images); err != nil {
			return out, err
		}
	}

	at := a.deps.Base.at(in.At)
	sub := workflow.ResolveSubmission(in.Actor.Role, in.RequestedStatus)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Rules.LockByID(dbc, in.RuleID)
		if err != nil {
			return err
		}
		if row == nil || !workflow.CanEdit(in.Actor, row.Status, row.SubmittedBy) {
			return domainagg.NotFound(op, "rule", in.RuleID)
		}

		updates := map[string]interface{}{"updated_at": at}
		if in.Title != nil {
			row.Title = strings.TrimSpace(*in.Title)
			updates["title"] = row.Title
		}
		if in.Content != nil {
			row.Content = strings.TrimSpace(*in.Content)
			updates["content"] = row.Content
		}
		if in.RevisionLetter != nil {
			row.RevisionLetter = *in.RevisionLetter
			updates["revision_letter"] = row.RevisionLetter
		}
		if in.Images != nil {
			row.Images = images
			updates["images"] = images
		}
		applyRuleSubmission(row, sub, in.Actor.ID, at)
		row.UpdatedAt = at
		for k, v := range submissionFields(sub, in.Actor.ID, at) {
			updates[k] = v
		}
		if err := a.deps.Rules.UpdateFields(dbc, row.ID, updates); err != nil {
			return err
		}

		cat, err := a.deps.Categories.GetByID(dbc, row.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return domainagg.NotFound(op, "category", row.CategoryID)
		}
		code, err := a.codes.Allocate(dbc, row, cat.LetterCode)
		if err != nil {
			return err
		}
		out = domainagg.RuleResult{Rule: row, FullCode: code.FullCode}
		return nil
	})
	return out, err
}

func (a *ruleAggregate) Approve(ctx context.Context, in domainagg.ReviewInput) (domainagg.RuleResult, error) {
	const op = "Content.Rule.Approve"
	return a.review(ctx, op, in, workflow.StatusApproved)
}

func (a *ruleAggregate) Reject(ctx context.Context, in domainagg.ReviewInput) (domainagg.RuleResult, error) {
	const op = "Content.Rule.Reject"
	return a.review(ctx, op, in, workflow.StatusRejected)
}

func (a *ruleAggregate) review(ctx context.Context, op string, in domainagg.ReviewInput, to workflow.Status) (domainagg.RuleResult, error) {
	var out domainagg.RuleResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleModerator); err != nil {
		return out, err
	}
	if in.ID == uuid.Nil {
		return out, domainagg.FieldError(op, "id", "missing rule id")
	}
	notes := strings.TrimSpace(in.Notes)
	if to == workflow.StatusRejected && notes == "" {
		return out, domainagg.FieldError(op, "review_notes", "review notes are required to reject")
	}
	at := a.deps.Base.at(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Rules.LockByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "rule", in.ID)
		}
		if err := workflow.CheckReviewable(reviewAction(to), row.Status); err != nil {
			return err
		}

		reviewer := in.Actor.ID
		updates := map[string]any{
			"status":       to,
			"is_active":    to == workflow.StatusApproved,
			"reviewed_by":  reviewer,
			"reviewed_at":  at,
			"review_notes": notes,
			"updated_at":   at,
		}
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, types.Rule{}.TableName(), row.ID, []workflow.Status{workflow.StatusPending}, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "rule status changed during review"); err != nil {
			return err
		}
		row.Status = to
		row.IsActive = to == workflow.StatusApproved
		row.ReviewedBy = &reviewer
		row.ReviewedAt = &at
		row.ReviewNotes = notes
		row.UpdatedAt = at

		code, err := a.deps.Codes.GetByRuleID(dbc, row.ID)
		if err != nil {
			return err
		}
		out = domainagg.RuleResult{Rule: row}
		if code != nil {
			out.FullCode = code.FullCode
		}
		return nil
	})
	return out, err
}

func (a *ruleAggregate) Delete(ctx context.Context, in domainagg.DeleteInput) (domainagg.DeleteRuleResult, error) {
	const op = "Content.Rule.Delete"
	var out domainagg.DeleteRuleResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleModerator); err != nil {
		return out, err
	}
	if in.ID == uuid.Nil {
		return out, domainagg.FieldError(op, "id", "missing rule id")
	}
	at := a.deps.Base.at(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Rules.LockByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "rule", in.ID)
		}
		children, err := a.deps.Rules.ListChildren(dbc, []uuid.UUID{row.ID})
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(children)+1)
		ids = append(ids, row.ID)
		cascaded := make([]uuid.UUID, 0, len(children))
		for _, c := range children {
			ids = append(ids, c.ID)
			cascaded = append(cascaded, c.ID)
		}
		if err := a.deps.Rules.SoftDelete(dbc, ids, at); err != nil {
			return err
		}
		if err := a.codes.Release(dbc, ids); err != nil {
			return err
		}
		out = domainagg.DeleteRuleResult{RuleID: row.ID, Cascaded: cascaded}
		return nil
	})
	return out, err
}

func (a *ruleAggregate) Restore(ctx context.Context, in domainagg.RestoreInput) (domainagg.RuleResult, error) {
	const op = "Content.Rule.Restore"
	var out domainagg.RuleResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleModerator); err != nil {
		return out, err
	}
	if in.ID == uuid.Nil {
		return out, domainagg.FieldError(op, "id", "missing rule id")
	}
	at := a.deps.Base.at(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Rules.LockByIDUnscoped(dbc, in.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "rule", in.ID)
		}
		if !row.DeletedAt.Valid {
			return domainagg.InvalidState(op, string(row.Status), "rule is not deleted")
		}
		if row.ParentRuleID != nil {
			parent, err := a.deps.Rules.GetByID(dbc, *row.ParentRuleID)
			if err != nil {
				return err
			}
			if parent == nil {
				return domainagg.InvalidState(op, string(row.Status), "parent rule is deleted; restore it first")
			}
		}
		cat, err := a.deps.Categories.GetByID(dbc, row.CategoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			return domainagg.NotFound(op, "category", row.CategoryID)
		}

		children, err := a.deps.Rules.ListChildrenDeletedAt(dbc, row.ID, row.DeletedAt.Time)
		if err != nil {
			return err
		}
		var restored []uuid.UUID
		var fullCode string
		for _, r := range append([]*types.Rule{row}, children...) {
			// Unpublished rows come back unpublished; review still applies.
			active := r.Status.Public()
			if err := a.deps.Rules.Undelete(dbc, r.ID, active, at); err != nil {
				return err
			}
			r.IsActive = active
			r.DeletedAt = gorm.DeletedAt{}
			r.UpdatedAt = at
			code, err := a.codes.Allocate(dbc, r, cat.LetterCode)
			if err != nil {
				return err
			}
			if r.ID == row.ID {
				fullCode = code.FullCode
			} else {
				restored = append(restored, r.ID)
			}
		}
		out = domainagg.RuleResult{Rule: row, FullCode: fullCode, Restored: restored}
		return nil
	})
	return out, err
}

func applyRuleSubmission(row *types.Rule, sub workflow.Submission, actor uuid.UUID, at time.Time) {
	row.Status = sub.Status
	row.IsActive = sub.IsActive
	row.SubmittedBy = &actor
	row.SubmittedAt = &at
	row.ReviewNotes = ""
	row.ReviewedBy = nil
	row.ReviewedAt = nil
	if sub.Reviewed {
		row.ReviewedBy = &actor
		row.ReviewedAt = &at
	}
}
