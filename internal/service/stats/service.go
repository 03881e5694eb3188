// Package stats builds per-user visit progress reports.
package stats

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aimd54/geoquest/internal/apperrors"
	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/internal/repository"
	"github.com/aimd54/geoquest/pkg/logger"
)

// VisitedLocation is a location the user has checked in to.
type VisitedLocation struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	MunicipalityID   uint    `json:"municipality_id"`
	MunicipalityName string  `json:"municipality_name"`
	MainImageURL     string  `json:"main_image_url,omitempty"`
}

// LevelProgress is the user's current level and the next one to reach.
type LevelProgress struct {
	Current           *models.Level `json:"current"`
	Next              *models.Level `json:"next"`
	VisitsToNextLevel int           `json:"visits_to_next_level"`
}

// Progress is a user's visit history and aggregate statistics.
type Progress struct {
	UserID                 uint                          `json:"user_id"`
	TotalVisits            int                           `json:"total_visits"`
	TotalCheckins          int64                         `json:"total_checkins"`
	UniqueMunicipalities   int                           `json:"unique_municipalities"`
	VisitedLocations       []VisitedLocation             `json:"visited_locations"`
	TotalLocations         int64                         `json:"total_locations"`
	ProgressByMunicipality []models.MunicipalityProgress `json:"progress_by_municipality"`
	Level                  LevelProgress                 `json:"level"`
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// VisitRepository interface for visit ledger reads.
type VisitRepository interface {
	VisitedLocations(ctx context.Context, userID uint) ([]models.Location, error)
	CountRows(ctx context.Context, userID uint) (int64, error)
}

// StatsRepository interface for aggregate reads.
type StatsRepository interface {
	UserStats(ctx context.Context, userID uint) (models.UserStats, error)
	ProgressByMunicipality(ctx context.Context, userID uint) ([]models.MunicipalityProgress, error)
}

// LocationRepository interface for catalog size.
type LocationRepository interface {
	Count(ctx context.Context) (int64, error)
}

// LevelRepository interface for levels.
type LevelRepository interface {
	GetAll(ctx context.Context) ([]models.Level, error)
}

// Service assembles progress reports.
type Service struct {
	userRepo     UserRepository
	visitRepo    VisitRepository
	statsRepo    StatsRepository
	locationRepo LocationRepository
	levelRepo    LevelRepository
	log          *logger.Logger
}

// NewService creates a new stats service backed by db.
func NewService(db *repository.DB, log *logger.Logger) *Service {
	return &Service{
		userRepo:     repository.NewUserRepository(db),
		visitRepo:    repository.NewVisitRepository(db),
		statsRepo:    repository.NewStatsRepository(db),
		locationRepo: repository.NewLocationRepository(db),
		levelRepo:    repository.NewLevelRepository(db),
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new stats service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	visitRepo VisitRepository,
	statsRepo StatsRepository,
	locationRepo LocationRepository,
	levelRepo LevelRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		visitRepo:    visitRepo,
		statsRepo:    statsRepo,
		locationRepo: locationRepo,
		levelRepo:    levelRepo,
		log:          log,
	}
}

// GetProgress returns the visit history and statistics of a user.
func (s *Service) GetProgress(ctx context.Context, userID uint) (*Progress, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal(err)
	}

	stats, err := s.statsRepo.UserStats(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	checkins, err := s.visitRepo.CountRows(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	locations, err := s.visitRepo.VisitedLocations(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	total, err := s.locationRepo.Count(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	byMunicipality, err := s.statsRepo.ProgressByMunicipality(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	levels, err := s.levelRepo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	progress := &Progress{
		UserID:                 userID,
		TotalVisits:            stats.UniqueVisits,
		TotalCheckins:          checkins,
		UniqueMunicipalities:   stats.UniqueMunicipalities,
		VisitedLocations:       make([]VisitedLocation, 0, len(locations)),
		TotalLocations:         total,
		ProgressByMunicipality: byMunicipality,
		Level:                  levelProgress(levels, stats.UniqueVisits),
	}
	if progress.ProgressByMunicipality == nil {
		progress.ProgressByMunicipality = []models.MunicipalityProgress{}
	}

	for _, loc := range locations {
		progress.VisitedLocations = append(progress.VisitedLocations, VisitedLocation{
			ID:               loc.ID,
			Name:             loc.Name,
			Latitude:         loc.Latitude,
			Longitude:        loc.Longitude,
			MunicipalityID:   loc.MunicipalityID,
			MunicipalityName: loc.MunicipalityName(),
			MainImageURL:     loc.MainImageURL,
		})
	}

	s.log.Debug().
		Uint("user_id", userID).
		Int("unique_visits", stats.UniqueVisits).
		Int("unique_municipalities", stats.UniqueMunicipalities).
		Msg("Progress computed")

	return progress, nil
}

func levelProgress(levels []models.Level, uniqueVisits int) LevelProgress {
	current, next := models.LevelFor(levels, uniqueVisits)
	lp := LevelProgress{Current: current, Next: next}
	if next != nil {
		lp.VisitsToNextLevel = next.VisitsRequired - uniqueVisits
	}
	return lp
}
