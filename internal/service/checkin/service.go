// Package checkin validates geofenced check-ins, records visits and unlocks achievements.
package checkin

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/geoquest/internal/apperrors"
	"github.com/aimd54/geoquest/internal/config"
	"github.com/aimd54/geoquest/internal/geo"
	prommetrics "github.com/aimd54/geoquest/internal/metrics"
	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/internal/repository"
	"github.com/aimd54/geoquest/internal/service/achievements"
	"github.com/aimd54/geoquest/pkg/logger"
)

// Result messages.
const (
	MessageTooFar      = "You are too far from the location to check in."
	MessageNewVisit    = "Check-in successful! New location visited."
	MessageRepeatVisit = "Check-in successful! You had already visited this location."
)

// Request is a check-in attempt by a user at a location.
type Request struct {
	UserID     uint
	LocationID uint
	Latitude   float64
	Longitude  float64
}

// UnlockedAchievement is an achievement credited by this check-in.
type UnlockedAchievement struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	UnlockedImageURL string `json:"unlocked_image_url,omitempty"`
}

// Result is the outcome of a check-in. A check-in outside the radius is a
// successful result with VisitRecorded set to false.
type Result struct {
	Message              string                `json:"message"`
	LocationID           uint                  `json:"location_id"`
	VisitRecorded        bool                  `json:"visit_recorded"`
	NewVisitCreated      bool                  `json:"new_visit_created"`
	DistanceMeters       float64               `json:"distance_meters"`
	RadiusMeters         float64               `json:"radius_meters"`
	UnlockedContentURL   *string               `json:"unlocked_content_url"`
	UnlockedAchievements []UnlockedAchievement `json:"unlocked_achievements"`
	Stats                *models.UserStats     `json:"stats,omitempty"`
}

// Service orchestrates check-ins. Each check-in runs in a single transaction:
// the visit, statistics and achievement credits commit or roll back together.
type Service struct {
	db            *repository.DB
	evaluator     *achievements.Evaluator
	radius        float64
	recordRepeats bool
	log           *logger.Logger
	now           func() time.Time
}

// NewService creates a new check-in service.
func NewService(db *repository.DB, evaluator *achievements.Evaluator, cfg config.CheckinConfig, log *logger.Logger) *Service {
	radius := cfg.RadiusMeters
	if radius <= 0 {
		radius = config.DefaultCheckinRadiusMeters
	}

	return &Service{
		db:            db,
		evaluator:     evaluator,
		radius:        radius,
		recordRepeats: cfg.RecordRepeatVisits,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RadiusMeters returns the geofence radius.
func (s *Service) RadiusMeters() float64 {
	return s.radius
}

// CheckIn validates the submitted position against the location and, when it
// is within the radius, records the visit and credits unlocked achievements.
func (s *Service) CheckIn(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if err := geo.Validate(req.Latitude, req.Longitude); err != nil {
		prommetrics.RecordCheckin(prommetrics.OutcomeRejected)
		return nil, err
	}

	var result *Result
	err := s.db.Transaction(ctx, func(tx *repository.DB) error {
		var err error
		result, err = s.checkIn(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, s.classify(req, err)
	}

	prommetrics.ObserveCheckinDuration(time.Since(start).Seconds())
	prommetrics.ObserveCheckinDistance(result.DistanceMeters)
	switch {
	case !result.VisitRecorded:
		prommetrics.RecordCheckin(prommetrics.OutcomeTooFar)
	case result.NewVisitCreated:
		prommetrics.RecordCheckin(prommetrics.OutcomeNewVisit)
	default:
		prommetrics.RecordCheckin(prommetrics.OutcomeRepeatVisit)
	}
	for _, a := range result.UnlockedAchievements {
		prommetrics.RecordAchievementUnlocked(a.Name)
	}

	s.log.Info().
		Uint("user_id", req.UserID).
		Uint("location_id", req.LocationID).
		Float64("distance_m", result.DistanceMeters).
		Bool("visit_recorded", result.VisitRecorded).
		Bool("new_visit", result.NewVisitCreated).
		Int("achievements_unlocked", len(result.UnlockedAchievements)).
		Msg("Check-in processed")

	return result, nil
}

func (s *Service) checkIn(ctx context.Context, tx *repository.DB, req Request) (*Result, error) {
	location, err := repository.NewLocationRepository(tx).GetByID(ctx, req.LocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("location")
		}
		return nil, err
	}

	if _, err := repository.NewUserRepository(tx).GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, err
	}

	within, distance := geo.Within(
		geo.Point{Lat: location.Latitude, Lng: location.Longitude},
		geo.Point{Lat: req.Latitude, Lng: req.Longitude},
		s.radius,
	)

	result := &Result{
		LocationID:           location.ID,
		DistanceMeters:       distance,
		RadiusMeters:         s.radius,
		UnlockedAchievements: []UnlockedAchievement{},
	}

	if !within {
		result.Message = MessageTooFar
		return result, nil
	}

	outcome, err := repository.NewVisitRepository(tx).RecordVisit(ctx, req.UserID, location.ID, s.now(), s.recordRepeats)
	if err != nil {
		return nil, err
	}

	stats, err := repository.NewStatsRepository(tx).UserStats(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	achievementRepo := repository.NewAchievementRepository(tx)
	credited, err := achievementRepo.CreditedIDs(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.evaluator.Evaluate(ctx, achievementRepo, req.UserID, stats, credited)
	if err != nil {
		return nil, err
	}

	result.VisitRecorded = true
	result.NewVisitCreated = outcome.Created
	result.Stats = &stats
	if location.UnlockedContentURL != "" {
		url := location.UnlockedContentURL
		result.UnlockedContentURL = &url
	}
	if outcome.Created {
		result.Message = MessageNewVisit
	} else {
		result.Message = MessageRepeatVisit
	}
	for _, a := range unlocked {
		result.UnlockedAchievements = append(result.UnlockedAchievements, UnlockedAchievement{
			ID:               a.ID,
			Name:             a.Name,
			Description:      a.Description,
			UnlockedImageURL: a.UnlockedImageURL,
		})
	}

	return result, nil
}

// classify passes application errors through and turns anything else into an
// internal error after logging its full context.
func (s *Service) classify(req Request, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		prommetrics.RecordCheckin(prommetrics.OutcomeRejected)
		return appErr
	}

	prommetrics.RecordCheckin(prommetrics.OutcomeError)
	s.log.Error().
		Err(err).
		Uint("user_id", req.UserID).
		Uint("location_id", req.LocationID).
		Msg("Check-in transaction rolled back")
	return apperrors.Internal(err)
}
