package repository

import (
	"context"
	"fmt"

	"github.com/aimd54/geoquest/internal/models"
)

// StatsRepository computes per-user aggregates over the visit ledger.
type StatsRepository struct {
	db *DB
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// UserStats counts the distinct locations and distinct municipalities the user has visited.
// Repeat visits never change the result.
func (r *StatsRepository) UserStats(ctx context.Context, userID uint) (models.UserStats, error) {
	db := r.db.WithContext(ctx)

	var uniqueVisits int64
	err := db.Model(&models.Visit{}).
		Select("COUNT(DISTINCT location_id)").
		Where("user_id = ?", userID).
		Scan(&uniqueVisits).Error
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to count unique visits for user %d: %w", userID, err)
	}

	var uniqueMunicipalities int64
	err = db.Table("user_visits").
		Select("COUNT(DISTINCT locations.municipality_id)").
		Joins("JOIN locations ON locations.id = user_visits.location_id").
		Where("user_visits.user_id = ?", userID).
		Scan(&uniqueMunicipalities).Error
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to count unique municipalities for user %d: %w", userID, err)
	}

	return models.UserStats{
		UniqueVisits:         int(uniqueVisits),
		UniqueMunicipalities: int(uniqueMunicipalities),
	}, nil
}

// ProgressByMunicipality returns the distinct visited location count per municipality, ordered by name.
func (r *StatsRepository) ProgressByMunicipality(ctx context.Context, userID uint) ([]models.MunicipalityProgress, error) {
	var progress []models.MunicipalityProgress
	err := r.db.WithContext(ctx).Table("user_visits").
		Select("municipalities.id AS municipality_id, municipalities.name AS municipality_name, COUNT(DISTINCT user_visits.location_id) AS visited_count").
		Joins("JOIN locations ON locations.id = user_visits.location_id").
		Joins("JOIN municipalities ON municipalities.id = locations.municipality_id").
		Where("user_visits.user_id = ?", userID).
		Group("municipalities.id, municipalities.name").
		Order("municipalities.name ASC").
		Scan(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get municipality progress for user %d: %w", userID, err)
	}
	return progress, nil
}
