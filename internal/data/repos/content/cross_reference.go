package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

type CrossReferenceRepo interface {
	Create(dbc dbctx.Context, row *types.CrossReference) (*types.CrossReference, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CrossReference, error)
	Exists(dbc dbctx.Context, sourceID, targetID uuid.UUID, refType types.ReferenceType) (bool, error)
	// ListForRule returns edges that have ruleID as source or target.
	ListForRule(dbc dbctx.Context, ruleID uuid.UUID) ([]*types.CrossReference, error)

	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type crossReferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCrossReferenceRepo(db *gorm.DB, baseLog *logger.Logger) CrossReferenceRepo {
	return &crossReferenceRepo{db: db, log: baseLog.With("repo", "CrossReferenceRepo")}
}

func (r *crossReferenceRepo) Create(dbc dbctx.Context, row *types.CrossReference) (*types.CrossReference, error) {
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
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *crossReferenceRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CrossReference, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.CrossReference
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *crossReferenceRepo) Exists(dbc dbctx.Context, sourceID, targetID uuid.UUID, refType types.ReferenceType) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.CrossReference{}).
		Where("source_rule_id = ? AND target_rule_id = ? AND reference_type = ?", sourceID, targetID, string(refType)).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *crossReferenceRepo) ListForRule(dbc dbctx.Context, ruleID uuid.UUID) ([]*types.CrossReference, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CrossReference
	if ruleID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("source_rule_id = ? OR target_rule_id = ?", ruleID, ruleID).
		Order("reference_type ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *crossReferenceRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.CrossReference{}).Error
}
