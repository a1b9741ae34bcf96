package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/dbctx"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

type AnnouncementFilter struct {
	Status *workflow.Status
	Scope  workflow.Scope
	// IncludeExpired keeps rows whose expires_at is before Now.
	IncludeExpired bool
	Now            time.Time
	Limit          int
}

type AnnouncementRepo interface {
	Create(dbc dbctx.Context, rows []*types.Announcement) ([]*types.Announcement, error)

	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Announcement, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Announcement, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Announcement, error)
	List(dbc dbctx.Context, f AnnouncementFilter) ([]*types.Announcement, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(dbc dbctx.Context, id uuid.UUID, at time.Time) error
}

type announcementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnouncementRepo(db *gorm.DB, baseLog *logger.Logger) AnnouncementRepo {
	return &announcementRepo{db: db, log: baseLog.With("repo", "AnnouncementRepo")}
}

func (r *announcementRepo) Create(dbc dbctx.Context, rows []*types.Announcement) ([]*types.Announcement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Announcement{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
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

func (r *announcementRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Announcement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Announcement
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *announcementRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Announcement, error) {
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

func (r *announcementRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Announcement, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Announcement
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

func (r *announcementRepo) List(dbc dbctx.Context, f AnnouncementFilter) ([]*types.Announcement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Announcement{})
	if f.Status != nil {
		if *f.Status == workflow.StatusLegacy {
			q = q.Where("status IS NULL")
		} else {
			q = q.Where("status = ?", string(*f.Status))
		}
	}
	if !f.IncludeExpired {
		now := f.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		q = q.Where("expires_at IS NULL OR expires_at > ?", now)
	}
	q = applyScope(q, f.Scope)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []*types.Announcement
	if err := q.Order("priority DESC, created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *announcementRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Announcement{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *announcementRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Announcement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_at": at,
			"updated_at": at,
		}).Error
}
