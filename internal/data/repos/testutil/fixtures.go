package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/rulecode"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"gorm.io/gorm"
)

func Editor() workflow.Principal    { return workflow.Principal{ID: uuid.New(), Role: workflow.RoleEditor} }
func Moderator() workflow.Principal { return workflow.Principal{ID: uuid.New(), Role: workflow.RoleModerator} }
func Admin() workflow.Principal     { return workflow.Principal{ID: uuid.New(), Role: workflow.RoleAdmin} }
func Owner() workflow.Principal     { return workflow.Principal{ID: uuid.New(), Role: workflow.RoleOwner} }

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, letter string, order int) *types.Category {
	tb.Helper()
	now := time.Now().UTC()
	c := &types.Category{
		ID:         uuid.New(),
		LetterCode: letter,
		Name:       "Category " + letter,
		OrderIndex: order,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

// SeedRule inserts a main rule with its code row, bypassing the aggregate.
func SeedRule(tb testing.TB, ctx context.Context, tx *gorm.DB, cat *types.Category, number int, status workflow.Status, active bool, submittedBy *uuid.UUID) *types.Rule {
	tb.Helper()
	now := time.Now().UTC()
	r := &types.Rule{
		ID:             uuid.New(),
		CategoryID:     cat.ID,
		Title:          "Rule",
		Content:        "content",
		RuleNumber:     number,
		RevisionLetter: rulecode.FirstRevision,
		Status:         status,
		IsActive:       active,
		SubmittedBy:    submittedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed rule: %v", err)
	}
	code := &types.RuleCode{
		ID:                   uuid.New(),
		RuleID:               r.ID,
		FullCode:             rulecode.Render(cat.LetterCode, number, nil, rulecode.FirstRevision),
		SearchableContent:    rulecode.Searchable(r.Title, r.Content),
		TruncatedDescription: rulecode.Truncate(r.Content),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := tx.WithContext(ctx).Create(code).Error; err != nil {
		tb.Fatalf("seed rule code: %v", err)
	}
	return r
}
