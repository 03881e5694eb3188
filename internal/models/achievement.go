package models

import (
	"time"
)

// CriterionKind names the statistic an achievement is measured against.
type CriterionKind string

// Supported criteria.
const (
	CriterionTotalUniqueVisits    CriterionKind = "total_unique_visits"
	CriterionUniqueMunicipalities CriterionKind = "unique_municipalities"
)

// Achievement is a persisted achievement definition. IDs are assigned by the catalog.
type Achievement struct {
	ID               uint          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name             string        `gorm:"not null;size:100" json:"name"`
	Description      string        `gorm:"type:text" json:"description"`
	Criterion        CriterionKind `gorm:"not null;size:50" json:"criterion"`
	Threshold        int           `gorm:"not null" json:"threshold"`
	UnlockedImageURL string        `gorm:"size:255" json:"unlocked_image_url,omitempty"`
}

// TableName specifies the table name for Achievement model.
func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement records that a user has been credited with an achievement.
type UserAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	User          User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AchievementID uint        `gorm:"not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID" json:"achievement"`
	UnlockedAt    time.Time   `gorm:"not null" json:"unlocked_at"`
}

// TableName specifies the table name for UserAchievement model.
func (UserAchievement) TableName() string {
	return "user_achievements"
}
