package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

type ScheduledAnnouncementRepo interface {
	Create(dbc dbctx.Context, row *types.ScheduledAnnouncement) (*types.ScheduledAnnouncement, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduledAnnouncement, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduledAnnouncement, error)
	List(dbc dbctx.Context, includePublished bool) ([]*types.ScheduledAnnouncement, error)
	// ListDue returns unpublished rows scheduled at or before now, oldest first.
	ListDue(dbc dbctx.Context, now time.Time, limit int) ([]*types.ScheduledAnnouncement, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(dbc dbctx.Context, id uuid.UUID, at time.Time) error
}

type scheduledAnnouncementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduledAnnouncementRepo(db *gorm.DB, baseLog *logger.Logger) ScheduledAnnouncementRepo {
	return &scheduledAnnouncementRepo{db: db, log: baseLog.With("repo", "ScheduledAnnouncementRepo")}
}

func (r *scheduledAnnouncementRepo) Create(dbc dbctx.Context, row *types.ScheduledAnnouncement) (*types.ScheduledAnnouncement, error) {
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

func (r *scheduledAnnouncementRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduledAnnouncement, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.ScheduledAnnouncement
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *scheduledAnnouncementRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduledAnnouncement, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.ScheduledAnnouncement
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
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

func (r *scheduledAnnouncementRepo) List(dbc dbctx.Context, includePublished bool) ([]*types.ScheduledAnnouncement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.ScheduledAnnouncement{})
	if !includePublished {
		q = q.Where("is_published = ?", false)
	}
	var out []*types.ScheduledAnnouncement
	if err := q.Order("scheduled_for ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduledAnnouncementRepo) ListDue(dbc dbctx.Context, now time.Time, limit int) ([]*types.ScheduledAnnouncement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).
		Where("is_published = ? AND scheduled_for <= ?", false, now).
		Order("scheduled_for ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.ScheduledAnnouncement
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduledAnnouncementRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.ScheduledAnnouncement{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *scheduledAnnouncementRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ScheduledAnnouncement{}).
		Where("id = ?", id).
		Update("deleted_at", at).Error
}
