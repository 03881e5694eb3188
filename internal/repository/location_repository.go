package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/aimd54/geoquest/internal/models"
)

// LocationFilter narrows a location listing. Zero values match everything.
// Query is a case-insensitive substring of the name or the description.
type LocationFilter struct {
	MunicipalityID *uint
	Query          string
}

// LocationRepository handles read access to the location catalog.
type LocationRepository struct {
	db *DB
}

// NewLocationRepository creates a new location repository.
func NewLocationRepository(db *DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// List returns the locations matching filter, ordered by name, with municipalities preloaded.
func (r *LocationRepository) List(ctx context.Context, filter LocationFilter) ([]models.Location, error) {
	query := r.db.WithContext(ctx).Preload("Municipality")

	if filter.MunicipalityID != nil {
		query = query.Where("municipality_id = ?", *filter.MunicipalityID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	var locations []models.Location
	if err := query.Order("name ASC").Order("id ASC").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// GetByID retrieves a location with its municipality.
func (r *LocationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).Preload("Municipality").First(&location, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get location by id %d: %w", id, err)
	}
	return &location, nil
}

// Count returns the number of locations in the catalog.
func (r *LocationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Location{}).Count(&count).Error
	return count, err
}
