package repository

import (
	"context"

	"github.com/aimd54/geoquest/internal/models"
)

// LevelRepository reads explorer levels.
type LevelRepository struct {
	db *DB
}

// NewLevelRepository creates a new level repository.
func NewLevelRepository(db *DB) *LevelRepository {
	return &LevelRepository{db: db}
}

// GetAll returns all levels ordered by required visits.
func (r *LevelRepository) GetAll(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	err := r.db.WithContext(ctx).Order("visits_required ASC").Find(&levels).Error
	return levels, err
}
