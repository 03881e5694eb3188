package models

import (
	"time"
)

// Visit is one row of the visit ledger. Rows are append-only.
type Visit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_visits_user_location,priority:1" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	LocationID uint      `gorm:"not null;index:idx_visits_user_location,priority:2" json:"location_id"`
	Location   Location  `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE" json:"-"`
	VisitedAt  time.Time `gorm:"not null" json:"visited_at"`
}

// TableName specifies the table name for Visit model.
func (Visit) TableName() string {
	return "user_visits"
}

// VisitOutcome is the result of recording a visit.
type VisitOutcome struct {
	// Created is true when this was the user's first visit to the location.
	Created bool
}

// UserStats are the aggregate counts achievements are evaluated against.
type UserStats struct {
	UniqueVisits         int `json:"unique_visits"`
	UniqueMunicipalities int `json:"unique_municipalities"`
}

// MunicipalityProgress is the number of distinct locations a user visited in one municipality.
type MunicipalityProgress struct {
	MunicipalityID   uint   `json:"municipality_id"`
	MunicipalityName string `json:"municipality_name"`
	VisitedCount     int    `json:"visited_count"`
}
