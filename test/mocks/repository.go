package mocks

import (
	"context"
	"errors"

	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/internal/repository"
)

// ErrDatabaseDown is returned by repository mocks configured to fail.
var ErrDatabaseDown = errors.New("database unavailable")

// MockLocationRepository is a simple mock for the location repository
type MockLocationRepository struct {
	ListFunc    func(filter repository.LocationFilter) ([]models.Location, error)
	GetByIDFunc func(id uint) (*models.Location, error)
	ListCalls   int
}

func (m *MockLocationRepository) List(_ context.Context, filter repository.LocationFilter) ([]models.Location, error) {
	m.ListCalls++
	if m.ListFunc != nil {
		return m.ListFunc(filter)
	}
	return []models.Location{}, nil
}

func (m *MockLocationRepository) GetByID(_ context.Context, id uint) (*models.Location, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

// MockVisitRepository is a simple mock for visit lookups
type MockVisitRepository struct {
	HasVisitedFunc func(userID, locationID uint) (bool, error)
}

func (m *MockVisitRepository) HasVisited(_ context.Context, userID, locationID uint) (bool, error) {
	if m.HasVisitedFunc != nil {
		return m.HasVisitedFunc(userID, locationID)
	}
	return false, nil
}
