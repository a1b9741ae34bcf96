package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/content"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
)

var CategoryAggregateContract = Contract{
	Name:  "Content.CategoryAggregate",
	Tx:    TxOwned,
	Locks: []string{"categories"},
	Notes: "Owns category letters, ordering and the delete guard. Reordering never rewrites " +
		"letter codes or issued rule codes; callers get a warning instead.",
}

type CategoryAggregate interface {
	Aggregate

	Create(ctx context.Context, in CreateCategoryInput) (*content.Category, error)
	Update(ctx context.Context, in UpdateCategoryInput) (*content.Category, error)

	// Delete fails with CodeInvalidState while the category owns active rules.
	Delete(ctx context.Context, in DeleteInput) error

	// Reorder applies every position in one transaction.
	Reorder(ctx context.Context, in ReorderCategoriesInput) (ReorderCategoriesResult, error)
}

type CreateCategoryInput struct {
	Actor       workflow.Principal
	LetterCode  string
	Name        string
	Description string
	OrderIndex  *int
	At          time.Time
}

type UpdateCategoryInput struct {
	Actor       workflow.Principal
	ID          uuid.UUID
	Name        *string
	Description *string
	At          time.Time
}

type CategoryPosition struct {
	ID         uuid.UUID
	OrderIndex int
}

type ReorderCategoriesInput struct {
	Actor     workflow.Principal
	Positions []CategoryPosition
	At        time.Time
}

type ReorderCategoriesResult struct {
	Categories []*content.Category
	// Moved lists categories whose position changed while their letter code,
	// and the codes already issued under it, stayed the same.
	Moved   []*content.Category
	Warning string
}
