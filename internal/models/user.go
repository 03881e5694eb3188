// Package models defines the persisted domain models for geoquest.
package models

import (
	"time"
)

// User represents a registered explorer.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:80" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}
