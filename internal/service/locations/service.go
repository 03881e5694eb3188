// Package locations serves the read-only location catalog.
package locations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/geoquest/internal/apperrors"
	"github.com/aimd54/geoquest/internal/cache"
	prommetrics "github.com/aimd54/geoquest/internal/metrics"
	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/internal/repository"
	"github.com/aimd54/geoquest/pkg/logger"
)

// Summary is a location as shown in listings.
type Summary struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	MunicipalityID   uint    `json:"municipality_id"`
	MunicipalityName string  `json:"municipality_name"`
	Description      string  `json:"description"`
	BestSeason       string  `json:"best_season,omitempty"`
	BestTimeOfDay    string  `json:"best_time_of_day,omitempty"`
	Difficulty       string  `json:"difficulty,omitempty"`
	IsNatural        bool    `json:"is_natural"`
	MainImageURL     string  `json:"main_image_url,omitempty"`
}

// Detail is a single location. UnlockedContentURL is set only for users who visited it.
type Detail struct {
	Summary
	Visited            bool    `json:"visited"`
	UnlockedContentURL *string `json:"unlocked_content_url"`
}

// Filter narrows a listing.
type Filter = repository.LocationFilter

// LocationRepository interface for catalog reads.
type LocationRepository interface {
	List(ctx context.Context, filter repository.LocationFilter) ([]models.Location, error)
	GetByID(ctx context.Context, id uint) (*models.Location, error)
}

// VisitRepository interface for visit lookups.
type VisitRepository interface {
	HasVisited(ctx context.Context, userID, locationID uint) (bool, error)
}

// Service lists and describes locations. Listings are cached; visit-dependent
// fields never are.
type Service struct {
	locationRepo LocationRepository
	visitRepo    VisitRepository
	cache        cache.Cache
	ttl          time.Duration
	log          *logger.Logger
}

// NewService creates a new location service.
func NewService(db *repository.DB, c cache.Cache, ttl time.Duration, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repository.NewLocationRepository(db), repository.NewVisitRepository(db), c, ttl, log)
}

// NewServiceWithInterfaces creates a new location service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(locationRepo LocationRepository, visitRepo VisitRepository, c cache.Cache, ttl time.Duration, log *logger.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		locationRepo: locationRepo,
		visitRepo:    visitRepo,
		cache:        c,
		ttl:          ttl,
		log:          log,
	}
}

func listKey(filter Filter) string {
	municipality := "all"
	if filter.MunicipalityID != nil {
		municipality = fmt.Sprint(*filter.MunicipalityID)
	}
	return fmt.Sprintf("locations:m=%s:q=%s", municipality, strings.ToLower(strings.TrimSpace(filter.Query)))
}

// List returns the locations matching filter ordered by name.
func (s *Service) List(ctx context.Context, filter Filter) ([]Summary, error) {
	key := listKey(filter)

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var summaries []Summary
		if jsonErr := json.Unmarshal([]byte(cached), &summaries); jsonErr == nil {
			prommetrics.RecordCacheLookup("hit")
			return summaries, nil
		}
		s.log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
		prommetrics.RecordCacheLookup("miss")
	case errors.Is(err, cache.ErrMiss):
		prommetrics.RecordCacheLookup("miss")
	default:
		prommetrics.RecordCacheLookup("error")
		s.log.Warn().Err(err).Str("key", key).Msg("Cache lookup failed, reading from database")
	}

	locations, err := s.locationRepo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	summaries := make([]Summary, 0, len(locations))
	for i := range locations {
		summaries = append(summaries, toSummary(&locations[i]))
	}

	if payload, err := json.Marshal(summaries); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache location list")
		}
	}

	return summaries, nil
}

// Get returns one location. When userID is given and the user has visited the
// location, the unlocked content URL is included.
func (s *Service) Get(ctx context.Context, id uint, userID *uint) (*Detail, error) {
	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("location")
		}
		return nil, apperrors.Internal(err)
	}

	detail := &Detail{
		Summary: toSummary(location),
	}

	if userID != nil {
		visited, err := s.visitRepo.HasVisited(ctx, *userID, location.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		detail.Visited = visited
		if visited && location.UnlockedContentURL != "" {
			url := location.UnlockedContentURL
			detail.UnlockedContentURL = &url
		}
	}

	return detail, nil
}

func toSummary(l *models.Location) Summary {
	return Summary{
		ID:               l.ID,
		Name:             l.Name,
		Latitude:         l.Latitude,
		Longitude:        l.Longitude,
		MunicipalityID:   l.MunicipalityID,
		MunicipalityName: l.MunicipalityName(),
		Description:      l.Description,
		BestSeason:       l.BestSeason,
		BestTimeOfDay:    l.BestTimeOfDay,
		Difficulty:       l.Difficulty,
		IsNatural:        l.IsNatural,
		MainImageURL:     l.MainImageURL,
	}
}
