package db

import (
	"fmt"

	types "github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Content
		// =========================
		&types.Category{},
		&types.Rule{},
		&types.RuleCode{},
		&types.CrossReference{},
		&types.Announcement{},
		&types.ScheduledAnnouncement{},

		// =========================
		// Audit
		// =========================
		&types.ActivityLogEntry{},
	)
}

// EnsureContentIndexes adds the partial unique indexes gorm tags cannot express.
// The statements are portable between Postgres and SQLite.
func EnsureContentIndexes(db *gorm.DB) error {
	// Main rule numbers are unique per category, active or not.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_rules_category_number
		ON rules(category_id, rule_number)
		WHERE parent_rule_id IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_rules_category_number: %w", err)
	}
	// Sub numbers are unique among the children of one parent.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_rules_parent_sub_number
		ON rules(parent_rule_id, sub_number)
		WHERE parent_rule_id IS NOT NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_rules_parent_sub_number: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_rules_visibility
		ON rules(status, submitted_by)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_rules_visibility: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_announcements_visibility
		ON announcements(status, submitted_by)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_announcements_visibility: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scheduled_announcements_due
		ON scheduled_announcements(scheduled_for)
		WHERE is_published = false AND deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_scheduled_announcements_due: %w", err)
	}
	return nil
}

func EnsureAuditIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_staff_activity_logs_summary
		ON staff_activity_logs(created_at, action_type, resource_type);
	`).Error; err != nil {
		return fmt.Errorf("create idx_staff_activity_logs_summary: %w", err)
	}
	return nil
}

// MigrateAll runs table migration followed by every raw index migration.
func MigrateAll(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return err
	}
	if err := EnsureContentIndexes(db); err != nil {
		return err
	}
	return EnsureAuditIndexes(db)
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureContentIndexes(s.db); err != nil {
		s.log.Error("Content index migration failed", "error", err)
		return err
	}
	if err := EnsureAuditIndexes(s.db); err != nil {
		s.log.Error("Audit index migration failed", "error", err)
		return err
	}
	return nil
}
