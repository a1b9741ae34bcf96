package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

type RuleCodeRepo interface {
	Create(dbc dbctx.Context, row *types.RuleCode) (*types.RuleCode, error)

	GetByFullCode(dbc dbctx.Context, fullCode string) (*types.RuleCode, error)
	GetByRuleID(dbc dbctx.Context, ruleID uuid.UUID) (*types.RuleCode, error)
	GetByRuleIDs(dbc dbctx.Context, ruleIDs []uuid.UUID) ([]*types.RuleCode, error)

	DeleteByID(dbc dbctx.Context, id uuid.UUID) error
	DeleteByRuleIDs(dbc dbctx.Context, ruleIDs []uuid.UUID) error
}

type ruleCodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRuleCodeRepo(db *gorm.DB, baseLog *logger.Logger) RuleCodeRepo {
	return &ruleCodeRepo{db: db, log: baseLog.With("repo", "RuleCodeRepo")}
}

func (r *ruleCodeRepo) Create(dbc dbctx.Context, row *types.RuleCode) (*types.RuleCode, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *ruleCodeRepo) GetByFullCode(dbc dbctx.Context, fullCode string) (*types.RuleCode, error) {
	if fullCode == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.RuleCode
	if err := t.WithContext(dbc.Ctx).Where("full_code = ?", fullCode).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *ruleCodeRepo) GetByRuleID(dbc dbctx.Context, ruleID uuid.UUID) (*types.RuleCode, error) {
	if ruleID == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByRuleIDs(dbc, []uuid.UUID{ruleID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ruleCodeRepo) GetByRuleIDs(dbc dbctx.Context, ruleIDs []uuid.UUID) ([]*types.RuleCode, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.RuleCode
	if len(ruleIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("rule_id IN ?", ruleIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ruleCodeRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.RuleCode{}).Error
}

func (r *ruleCodeRepo) DeleteByRuleIDs(dbc dbctx.Context, ruleIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ruleIDs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("rule_id IN ?", ruleIDs).Delete(&types.RuleCode{}).Error
}
