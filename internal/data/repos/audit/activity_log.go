package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

type ActivityFilter struct {
	StaffUserID  *uuid.UUID
	ActionType   string
	ResourceType string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

type SummaryRow struct {
	ActionType    string  `gorm:"column:action_type" json:"action_type"`
	ResourceType  string  `gorm:"column:resource_type" json:"resource_type"`
	Count         int64   `gorm:"column:count" json:"count"`
	FailureCount  int64   `gorm:"column:failure_count" json:"failure_count"`
	AvgDurationMS float64 `gorm:"column:avg_duration_ms" json:"avg_duration_ms"`
}

// ActivityLogRepo is append-only: there is no update or delete.
type ActivityLogRepo interface {
	Create(dbc dbctx.Context, row *types.ActivityLogEntry) error
	List(dbc dbctx.Context, f ActivityFilter) ([]*types.ActivityLogEntry, int64, error)
	Summarize(dbc dbctx.Context, staffUserID *uuid.UUID, since time.Time) ([]SummaryRow, error)
}

type activityLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return &activityLogRepo{db: db, log: baseLog.With("repo", "ActivityLogRepo")}
}

func (r *activityLogRepo) Create(dbc dbctx.Context, row *types.ActivityLogEntry) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *activityLogRepo) filtered(dbc dbctx.Context, f ActivityFilter) *gorm.DB {
	q := dbc.DB(r.db).Model(&types.ActivityLogEntry{})
	if f.StaffUserID != nil {
		q = q.Where("staff_user_id = ?", *f.StaffUserID)
	}
	if f.ActionType != "" {
		q = q.Where("action_type = ?", f.ActionType)
	}
	if f.ResourceType != "" {
		q = q.Where("resource_type = ?", f.ResourceType)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", f.To.UTC())
	}
	return q
}

func (r *activityLogRepo) List(dbc dbctx.Context, f ActivityFilter) ([]*types.ActivityLogEntry, int64, error) {
	var total int64
	if err := r.filtered(dbc, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := r.filtered(dbc, f).Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []*types.ActivityLogEntry
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *activityLogRepo) Summarize(dbc dbctx.Context, staffUserID *uuid.UUID, since time.Time) ([]SummaryRow, error) {
	q := dbc.DB(r.db).
		Model(&types.ActivityLogEntry{}).
		Select(`action_type,
			resource_type,
			COUNT(*) AS count,
			SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failure_count,
			CAST(AVG(duration_ms) AS DOUBLE PRECISION) AS avg_duration_ms`).
		Where("created_at >= ?", since.UTC())
	if staffUserID != nil {
		q = q.Where("staff_user_id = ?", *staffUserID)
	}
	var out []SummaryRow
	if err := q.Group("action_type, resource_type").
		Order("count DESC, action_type ASC, resource_type ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
