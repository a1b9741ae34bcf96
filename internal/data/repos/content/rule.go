package content

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

// RuleFilter narrows List. Deleted rules are never returned.
type RuleFilter struct {
	CategoryID   *uuid.UUID
	ParentRuleID *uuid.UUID
	// MainOnly restricts to rules without a parent.
	MainOnly bool
	Status   *workflow.Status
	Scope    workflow.Scope
}

type RuleRepo interface {
	Create(dbc dbctx.Context, rows []*types.Rule) ([]*types.Rule, error)

	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Rule, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Rule, error)
	// GetByIDUnscoped also returns soft-deleted rules.
	GetByIDUnscoped(dbc dbctx.Context, id uuid.UUID) (*types.Rule, error)

	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Rule, error)
	LockByIDUnscoped(dbc dbctx.Context, id uuid.UUID) (*types.Rule, error)

	// GetMaxRuleNumber covers every main rule of the category, deleted ones included.
	GetMaxRuleNumber(dbc dbctx.Context, categoryID uuid.UUID) (int, error)
	// GetMaxSubNumber covers every child of the parent, deleted ones included.
	GetMaxSubNumber(dbc dbctx.Context, parentID uuid.UUID) (int, error)

	ListChildren(dbc dbctx.Context, parentIDs []uuid.UUID) ([]*types.Rule, error)
	ListChildrenDeletedAt(dbc dbctx.Context, parentID uuid.UUID, deletedAt time.Time) ([]*types.Rule, error)
	List(dbc dbctx.Context, f RuleFilter) ([]*types.Rule, error)
	// CountLiveByCategory counts every rule not soft-deleted, published or not.
	CountLiveByCategory(dbc dbctx.Context, categoryID uuid.UUID) (int64, error)
	Search(dbc dbctx.Context, query string, scope workflow.Scope, limit int) ([]*types.Rule, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(dbc dbctx.Context, ids []uuid.UUID, at time.Time) error
	Undelete(dbc dbctx.Context, id uuid.UUID, isActive bool, at time.Time) error
}

type ruleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRuleRepo(db *gorm.DB, baseLog *logger.Logger) RuleRepo {
	return &ruleRepo{db: db, log: baseLog.With("repo", "RuleRepo")}
}

func (r *ruleRepo) Create(dbc dbctx.Context, rows []*types.Rule) ([]*types.Rule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Rule{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.RevisionLetter == "" {
			row.RevisionLetter = "a"
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = row.CreatedAt
		}
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ruleRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Rule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Rule
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ruleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Rule, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ruleRepo) GetByIDUnscoped(dbc dbctx.Context, id uuid.UUID) (*types.Rule, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Rule
	if err := t.WithContext(dbc.Ctx).Unscoped().Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *ruleRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Rule, error) {
	return r.lock(dbc, id, false)
}

func (r *ruleRepo) LockByIDUnscoped(dbc dbctx.Context, id uuid.UUID) (*types.Rule, error) {
	return r.lock(dbc, id, true)
}

func (r *ruleRepo) lock(dbc dbctx.Context, id uuid.UUID, unscoped bool) (*types.Rule, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx)
	if unscoped {
		q = q.Unscoped()
	}
	var row types.Rule
	err := q.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *ruleRepo) GetMaxRuleNumber(dbc dbctx.Context, categoryID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var maxNum int
	if err := t.WithContext(dbc.Ctx).
		Unscoped().
		Model(&types.Rule{}).
		Where("category_id = ? AND parent_rule_id IS NULL", categoryID).
		Select("COALESCE(MAX(rule_number), 0)").
		Scan(&maxNum).Error; err != nil {
		return 0, err
	}
	return maxNum, nil
}

func (r *ruleRepo) GetMaxSubNumber(dbc dbctx.Context, parentID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var maxNum int
	if err := t.WithContext(dbc.Ctx).
		Unscoped().
		Model(&types.Rule{}).
		Where("parent_rule_id = ?", parentID).
		Select("COALESCE(MAX(sub_number), 0)").
		Scan(&maxNum).Error; err != nil {
		return 0, err
	}
	return maxNum, nil
}

func (r *ruleRepo) ListChildren(dbc dbctx.Context, parentIDs []uuid.UUID) ([]*types.Rule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Rule
	if len(parentIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("parent_rule_id IN ?", parentIDs).
		Order("sub_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ruleRepo) ListChildrenDeletedAt(dbc dbctx.Context, parentID uuid.UUID, deletedAt time.Time) ([]*types.Rule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Rule
	if err := t.WithContext(dbc.Ctx).
		Unscoped().
		Where("parent_rule_id = ? AND deleted_at = ?", parentID, deletedAt).
		Order("sub_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ruleRepo) List(dbc dbctx.Context, f RuleFilter) ([]*types.Rule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Rule{})
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.ParentRuleID != nil {
		q = q.Where("parent_rule_id = ?", *f.ParentRuleID)
	} else if f.MainOnly {
		q = q.Where("parent_rule_id IS NULL")
	}
	if f.Status != nil {
		if *f.Status == workflow.StatusLegacy {
			q = q.Where("status IS NULL")
		} else {
			q = q.Where("status = ?", string(*f.Status))
		}
	}
	q = applyScope(q, f.Scope)

	var out []*types.Rule
	if err := q.Order("rule_number ASC, sub_number ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ruleRepo) CountLiveByCategory(dbc dbctx.Context, categoryID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Rule{}).
		Where("category_id = ?", categoryID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ruleRepo) Search(dbc dbctx.Context, query string, scope workflow.Scope, limit int) ([]*types.Rule, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	query = strings.ToLower(strings.TrimSpace(query))
	var out []*types.Rule
	if query == "" {
		return out, nil
	}
	pattern := "%" + escapeLike(query) + "%"
	q := t.WithContext(dbc.Ctx).
		Model(&types.Rule{}).
		Where("id IN (?)", t.Session(&gorm.Session{NewDB: true}).
			Model(&types.RuleCode{}).
			Select("rule_id").
			Where("searchable_content LIKE ? ESCAPE '\\' OR LOWER(full_code) = ?", pattern, query))
	q = applyScope(q, scope)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("rule_number ASC, sub_number ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ruleRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Rule{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *ruleRepo) SoftDelete(dbc dbctx.Context, ids []uuid.UUID, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Rule{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_at": at,
			"updated_at": at,
		}).Error
}

func (r *ruleRepo) Undelete(dbc dbctx.Context, id uuid.UUID, isActive bool, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Unscoped().
		Model(&types.Rule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  isActive,
			"deleted_at": nil,
			"updated_at": at,
		}).Error
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
