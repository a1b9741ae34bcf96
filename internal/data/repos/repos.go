package repos

import (
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos/audit"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos/content"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
	"gorm.io/gorm"
)

type CategoryRepo = content.CategoryRepo
type RuleRepo = content.RuleRepo
type RuleCodeRepo = content.RuleCodeRepo
type CrossReferenceRepo = content.CrossReferenceRepo
type AnnouncementRepo = content.AnnouncementRepo
type ScheduledAnnouncementRepo = content.ScheduledAnnouncementRepo

type RuleFilter = content.RuleFilter
type AnnouncementFilter = content.AnnouncementFilter

type ActivityLogRepo = audit.ActivityLogRepo
type ActivityFilter = audit.ActivityFilter
type ActivitySummaryRow = audit.SummaryRow

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return content.NewCategoryRepo(db, baseLog)
}
func NewRuleRepo(db *gorm.DB, baseLog *logger.Logger) RuleRepo {
	return content.NewRuleRepo(db, baseLog)
}
func NewRuleCodeRepo(db *gorm.DB, baseLog *logger.Logger) RuleCodeRepo {
	return content.NewRuleCodeRepo(db, baseLog)
}
func NewCrossReferenceRepo(db *gorm.DB, baseLog *logger.Logger) CrossReferenceRepo {
	return content.NewCrossReferenceRepo(db, baseLog)
}
func NewAnnouncementRepo(db *gorm.DB, baseLog *logger.Logger) AnnouncementRepo {
	return content.NewAnnouncementRepo(db, baseLog)
}
func NewScheduledAnnouncementRepo(db *gorm.DB, baseLog *logger.Logger) ScheduledAnnouncementRepo {
	return content.NewScheduledAnnouncementRepo(db, baseLog)
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return audit.NewActivityLogRepo(db, baseLog)
}
