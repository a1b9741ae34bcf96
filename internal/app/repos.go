package app

import (
	"gorm.io/gorm"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/repos"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

type Repos struct {
	Category              repos.CategoryRepo
	Rule                  repos.RuleRepo
	RuleCode              repos.RuleCodeRepo
	CrossReference        repos.CrossReferenceRepo
	Announcement          repos.AnnouncementRepo
	ScheduledAnnouncement repos.ScheduledAnnouncementRepo
	ActivityLog           repos.ActivityLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Category:              repos.NewCategoryRepo(db, log),
		Rule:                  repos.NewRuleRepo(db, log),
		RuleCode:              repos.NewRuleCodeRepo(db, log),
		CrossReference:        repos.NewCrossReferenceRepo(db, log),
		Announcement:          repos.NewAnnouncementRepo(db, log),
		ScheduledAnnouncement: repos.NewScheduledAnnouncementRepo(db, log),
		ActivityLog:           repos.NewActivityLogRepo(db, log),
	}
}
