package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aimd54/geoquest/internal/models"
)

// VisitRepository is the visit ledger.
type VisitRepository struct {
	db *DB
}

// NewVisitRepository creates a new visit repository.
func NewVisitRepository(db *DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// RecordVisit records that userID checked in at locationID.
// Created is true when no earlier visit existed for the pair. When a visit already
// exists, a new ledger row is written only if recordRepeats is set.
// Callers must run it on a transaction handle so the lookup and insert are atomic.
func (r *VisitRepository) RecordVisit(ctx context.Context, userID, locationID uint, at time.Time, recordRepeats bool) (models.VisitOutcome, error) {
	visited, err := r.HasVisited(ctx, userID, locationID)
	if err != nil {
		return models.VisitOutcome{}, err
	}

	outcome := models.VisitOutcome{Created: !visited}
	if visited && !recordRepeats {
		return outcome, nil
	}

	visit := &models.Visit{
		UserID:     userID,
		LocationID: locationID,
		VisitedAt:  at,
	}
	if err := r.db.WithContext(ctx).Create(visit).Error; err != nil {
		return models.VisitOutcome{}, fmt.Errorf("failed to record visit of user %d to location %d: %w", userID, locationID, err)
	}
	return outcome, nil
}

// HasVisited reports whether userID has at least one visit to locationID.
func (r *VisitRepository) HasVisited(ctx context.Context, userID, locationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Visit{}).
		Where("user_id = ? AND location_id = ?", userID, locationID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up visit of user %d to location %d: %w", userID, locationID, err)
	}
	return count > 0, nil
}

// CountRows returns the number of ledger rows for a user, repeats included.
func (r *VisitRepository) CountRows(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Visit{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// VisitedLocations returns each distinct location the user has visited, ordered by name.
func (r *VisitRepository) VisitedLocations(ctx context.Context, userID uint) ([]models.Location, error) {
	db := r.db.WithContext(ctx)
	visited := db.Model(&models.Visit{}).Select("location_id").Where("user_id = ?", userID)

	var locations []models.Location
	err := db.Preload("Municipality").
		Where("id IN (?)", visited).
		Order("name ASC").
		Find(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get visited locations for user %d: %w", userID, err)
	}
	return locations, nil
}
