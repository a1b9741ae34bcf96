package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	domainagg "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/aggregates"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/rulecode"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/realtime"
)

type CategoryService interface {
	List(ctx context.Context, actor workflow.Principal) ([]*types.Category, error)
	Create(ctx context.Context, actor workflow.Principal, req CreateCategoryRequest) (*types.Category, error)
	Update(ctx context.Context, actor workflow.Principal, id uuid.UUID, req UpdateCategoryRequest) (*types.Category, error)
	Delete(ctx context.Context, actor workflow.Principal, id uuid.UUID) error
	Reorder(ctx context.Context, actor workflow.Principal, req ReorderCategoriesRequest) (domainagg.ReorderCategoriesResult, error)

	// Seed inserts categories whose letter is not taken yet. Existing rows are
	// left untouched, so it is safe to run on every start.
	Seed(ctx context.Context, seeds []CategorySeed) (int, error)
}

// CategorySeed is one entry of the category seed file.
type CategorySeed struct {
	LetterCode  string `yaml:"letter_code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	OrderIndex  *int   `yaml:"order_index"`
}

type categorySeedFile struct {
	Categories []CategorySeed `yaml:"categories"`
}

// LoadCategorySeeds reads a YAML seed file. A missing path yields no seeds.
func LoadCategorySeeds(path string) ([]CategorySeed, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read category seed file: %w", err)
	}
	return ParseCategorySeeds(b)
}

func ParseCategorySeeds(b []byte) ([]CategorySeed, error) {
	var f categorySeedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse category seeds: %w", err)
	}
	seen := map[string]bool{}
	for i := range f.Categories {
		c := &f.Categories[i]
		c.LetterCode = strings.ToUpper(strings.TrimSpace(c.LetterCode))
		c.Name = strings.TrimSpace(c.Name)
		if !rulecode.ValidLetter(c.LetterCode) {
			return nil, fmt.Errorf("category seed %d: invalid letter_code %q", i, c.LetterCode)
		}
		if c.Name == "" {
			return nil, fmt.Errorf("category seed %s: name is required", c.LetterCode)
		}
		if seen[c.LetterCode] {
			return nil, fmt.Errorf("category seed %s: duplicate letter_code", c.LetterCode)
		}
		seen[c.LetterCode] = true
	}
	return f.Categories, nil
}

type CategoryServiceDeps struct {
	Log        *logger.Logger
	Aggregate  domainagg.CategoryAggregate
	Categories repos.CategoryRepo
	Notifier   ContentNotifier
}

type categoryService struct {
	deps CategoryServiceDeps
	log  *logger.Logger
}

func NewCategoryService(deps CategoryServiceDeps) CategoryService {
	deps.Notifier = notifierOrNop(deps.Notifier)
	return &categoryService{deps: deps, log: deps.Log.With("service", "CategoryService")}
}

func (s *categoryService) List(ctx context.Context, actor workflow.Principal) ([]*types.Category, error) {
	const op = "Category.List"
	if err := requireRole(op, actor, workflow.RoleEditor); err != nil {
		return nil, err
	}
	rows, err := s.deps.Categories.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, readFailed(op, err)
	}
	return rows, nil
}

func (s *categoryService) Create(ctx context.Context, actor workflow.Principal, req CreateCategoryRequest) (*types.Category, error) {
	const op = "Category.Create"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	row, err := s.deps.Aggregate.Create(ctx, domainagg.CreateCategoryInput{
		Actor:       actor,
		LetterCode:  req.LetterCode,
		Name:        req.Name,
		Description: req.Description,
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, actor, realtime.ActionCreate, row.ID, row.Name)
	return row, nil
}

func (s *categoryService) Update(ctx context.Context, actor workflow.Principal, id uuid.UUID, req UpdateCategoryRequest) (*types.Category, error) {
	const op = "Category.Update"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	row, err := s.deps.Aggregate.Update(ctx, domainagg.UpdateCategoryInput{
		Actor:       actor,
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, actor, realtime.ActionUpdate, row.ID, row.Name)
	return row, nil
}

func (s *categoryService) Delete(ctx context.Context, actor workflow.Principal, id uuid.UUID) error {
	if err := s.deps.Aggregate.Delete(ctx, domainagg.DeleteInput{Actor: actor, ID: id}); err != nil {
		return err
	}
	s.notify(ctx, actor, realtime.ActionDelete, id, "")
	return nil
}

func (s *categoryService) Reorder(ctx context.Context, actor workflow.Principal, req ReorderCategoriesRequest) (domainagg.ReorderCategoriesResult, error) {
	const op = "Category.Reorder"
	if err := Validate(op, req); err != nil {
		return domainagg.ReorderCategoriesResult{}, err
	}
	positions := make([]domainagg.CategoryPosition, 0, len(req.Categories))
	for _, p := range req.Categories {
		positions = append(positions, domainagg.CategoryPosition{ID: p.ID, OrderIndex: p.OrderIndex})
	}
	res, err := s.deps.Aggregate.Reorder(ctx, domainagg.ReorderCategoriesInput{Actor: actor, Positions: positions})
	if err != nil {
		return res, err
	}
	for _, c := range res.Moved {
		s.notify(ctx, actor, realtime.ActionUpdate, c.ID, c.Name)
	}
	return res, nil
}

func (s *categoryService) Seed(ctx context.Context, seeds []CategorySeed) (int, error) {
	dbc := dbctx.Context{Ctx: ctx}
	created := 0
	for _, seed := range seeds {
		existing, err := s.deps.Categories.GetByLetter(dbc, seed.LetterCode)
		if err != nil {
			return created, fmt.Errorf("seed category %s: %w", seed.LetterCode, err)
		}
		if existing != nil {
			continue
		}
		order := 0
		if seed.OrderIndex != nil {
			order = *seed.OrderIndex
		} else {
			maxOrder, err := s.deps.Categories.GetMaxOrderIndex(dbc)
			if err != nil {
				return created, fmt.Errorf("seed category %s: %w", seed.LetterCode, err)
			}
			order = maxOrder + 1
		}
		now := time.Now().UTC()
		if _, err := s.deps.Categories.Create(dbc, []*types.Category{{
			ID:          uuid.New(),
			LetterCode:  seed.LetterCode,
			Name:        seed.Name,
			Description: seed.Description,
			OrderIndex:  order,
			CreatedAt:   now,
			UpdatedAt:   now,
		}}); err != nil {
			return created, fmt.Errorf("seed category %s: %w", seed.LetterCode, err)
		}
		created++
	}
	if created > 0 {
		s.log.Info("Seeded categories", "count", created)
	}
	return created, nil
}

func (s *categoryService) notify(ctx context.Context, actor workflow.Principal, action string, id uuid.UUID, name string) {
	s.deps.Notifier.Notify(ctx, realtime.ContentEvent{
		EntityType: realtime.EntityCategory,
		EntityID:   id,
		Action:     action,
		ActorID:    actor.ID,
		Title:      name,
	})
}
