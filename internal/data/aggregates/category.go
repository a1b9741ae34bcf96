package aggregates

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/rulecode"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
)

const reorderWarning = "category order changed; letter codes and issued rule codes were not renumbered"

type CategoryAggregateDeps struct {
	Base BaseDeps

	Categories repos.CategoryRepo
	Rules      repos.RuleRepo
}

type categoryAggregate struct {
	deps CategoryAggregateDeps
}

func NewCategoryAggregate(deps CategoryAggregateDeps) domainagg.CategoryAggregate {
	deps.Base = deps.Base.withDefaults()
	return &categoryAggregate{deps: deps}
}

func (a *categoryAggregate) Contract() domainagg.Contract {
	return domainagg.CategoryAggregateContract
}

func (a *categoryAggregate) configured(op string) error {
	if a.deps.Categories == nil || a.deps.Rules == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "category aggregate repos not configured", nil)
	}
	return nil
}

func (a *categoryAggregate) Create(ctx context.Context, in domainagg.CreateCategoryInput) (*types.Category, error) {
	const op = "Content.Category.Create"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleAdmin); err != nil {
		return nil, err
	}
	letter := strings.ToUpper(strings.TrimSpace(in.LetterCode))
	if !rulecode.ValidLetter(letter) {
		return nil, domainagg.FieldError(op, "letter_code", "letter_code must be a single letter A-Z")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domainagg.FieldError(op, "name", "name is required")
	}
	if in.OrderIndex != nil && *in.OrderIndex < 0 {
		return nil, domainagg.FieldError(op, "order_index", "order_index must not be negative")
	}
	at := a.deps.Base.at(in.At)

	var out *types.Category
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Categories.GetByLetter(dbc, letter)
		if err != nil {
			return err
		}
		if existing != nil {
			return ConflictError(fmt.Sprintf("category letter %s is already in use", letter))
		}
		order := 0
		if in.OrderIndex != nil {
			order = *in.OrderIndex
		} else {
			maxOrder, err := a.deps.Categories.GetMaxOrderIndex(dbc)
			if err != nil {
				return err
			}
			order = maxOrder + 1
		}
		row := &types.Category{
			ID:          uuid.New(),
			LetterCode:  letter,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			OrderIndex:  order,
			CreatedAt:   at,
			UpdatedAt:   at,
		}
		if _, err := a.deps.Categories.Create(dbc, []*types.Category{row}); err != nil {
			return err
		}
		out = row
		return nil
	})
	return out, err
}

func (a *categoryAggregate) Update(ctx context.Context, in domainagg.UpdateCategoryInput) (*types.Category, error) {
	const op = "Content.Category.Update"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleAdmin); err != nil {
		return nil, err
	}
	if in.ID == uuid.Nil {
		return nil, domainagg.FieldError(op, "id", "missing category id")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domainagg.FieldError(op, "name", "name cannot be blank")
	}
	at := a.deps.Base.at(in.At)

	var out *types.Category
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Categories.LockByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "category", in.ID)
		}
		updates := map[string]interface{}{"updated_at": at}
		if in.Name != nil {
			row.Name = strings.TrimSpace(*in.Name)
			updates["name"] = row.Name
		}
		if in.Description != nil {
			row.Description = strings.TrimSpace(*in.Description)
			updates["description"] = row.Description
		}
		if err := a.deps.Categories.UpdateFields(dbc, row.ID, updates); err != nil {
			return err
		}
		row.UpdatedAt = at
		out = row
		return nil
	})
	return out, err
}

func (a *categoryAggregate) Delete(ctx context.Context, in domainagg.DeleteInput) error {
	const op = "Content.Category.Delete"
	if err := a.configured(op); err != nil {
		return err
	}
	if err := requireRole(op, in.Actor, workflow.RoleAdmin); err != nil {
		return err
	}
	if in.ID == uuid.Nil {
		return domainagg.FieldError(op, "id", "missing category id")
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Categories.LockByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NotFound(op, "category", in.ID)
		}
		n, err := a.deps.Rules.CountLiveByCategory(dbc, row.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return domainagg.InvalidState(op, "in_use", fmt.Sprintf("category %s still has %d rules; delete them first", row.LetterCode, n))
		}
		return a.deps.Categories.Delete(dbc, row.ID)
	})
}

func (a *categoryAggregate) Reorder(ctx context.Context, in domainagg.ReorderCategoriesInput) (domainagg.ReorderCategoriesResult, error) {
	const op = "Content.Category.Reorder"
	var out domainagg.ReorderCategoriesResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if err := requireRole(op, in.Actor, workflow.RoleAdmin); err != nil {
		return out, err
	}
	if len(in.Positions) == 0 {
		return out, domainagg.FieldError(op, "categories", "at least one position is required")
	}
	seen := make(map[uuid.UUID]bool, len(in.Positions))
	for _, p := range in.Positions {
		if p.ID == uuid.Nil {
			return out, domainagg.FieldError(op, "id", "missing category id")
		}
		if p.OrderIndex < 0 {
			return out, domainagg.FieldError(op, "order_index", "order_index must not be negative")
		}
		if seen[p.ID] {
			return out, domainagg.FieldError(op, "categories", fmt.Sprintf("category %s listed twice", p.ID))
		}
		seen[p.ID] = true
	}
	at := a.deps.Base.at(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		var moved []*types.Category
		for _, p := range in.Positions {
			row, err := a.deps.Categories.LockByID(dbc, p.ID)
			if err != nil {
				return err
			}
			if row == nil {
				return domainagg.NotFound(op, "category", p.ID)
			}
			if row.OrderIndex == p.OrderIndex {
				continue
			}
			if err := a.deps.Categories.UpdateFields(dbc, row.ID, map[string]interface{}{
				"order_index": p.OrderIndex,
				"updated_at":  at,
			}); err != nil {
				return err
			}
			row.OrderIndex = p.OrderIndex
			row.UpdatedAt = at
			moved = append(moved, row)
		}
		all, err := a.deps.Categories.List(dbc)
		if err != nil {
			return err
		}
		sort.SliceStable(moved, func(i, j int) bool { return moved[i].OrderIndex < moved[j].OrderIndex })
		out = domainagg.ReorderCategoriesResult{Categories: all, Moved: moved}
		if len(moved) > 0 {
			out.Warning = reorderWarning
		}
		return nil
	})
	return out, err
}
