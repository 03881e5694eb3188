// Package achievements evaluates achievement rules and manages the achievement catalog.
package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/geoquest/internal/apperrors"
	prommetrics "github.com/aimd54/geoquest/internal/metrics"
	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/internal/repository"
	"github.com/aimd54/geoquest/pkg/logger"
)

// AchievementRepository interface for achievement operations.
type AchievementRepository interface {
	Store
	EnsureDefinition(ctx context.Context, achievement *models.Achievement) (bool, error)
	GetAll(ctx context.Context) ([]models.Achievement, error)
	CreditedIDs(ctx context.Context, userID uint) (map[uint]bool, error)
	GetUserAchievements(ctx context.Context, userID uint) ([]models.UserAchievement, error)
	HoldersCount(ctx context.Context, achievementID uint) (int64, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	ListIDs(ctx context.Context) ([]uint, error)
}

// StatsRepository interface for statistics operations.
type StatsRepository interface {
	UserStats(ctx context.Context, userID uint) (models.UserStats, error)
}

// Service manages the achievement catalog and user credits outside the check-in path.
type Service struct {
	achievementRepo AchievementRepository
	userRepo        UserRepository
	statsRepo       StatsRepository
	evaluator       *Evaluator
	log             *logger.Logger
}

// NewService creates a new achievement service.
func NewService(db *repository.DB, evaluator *Evaluator, log *logger.Logger) *Service {
	return &Service{
		achievementRepo: repository.NewAchievementRepository(db),
		userRepo:        repository.NewUserRepository(db),
		statsRepo:       repository.NewStatsRepository(db),
		evaluator:       evaluator,
		log:             log,
	}
}

// NewServiceWithInterfaces creates a new achievement service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	achievementRepo AchievementRepository,
	userRepo UserRepository,
	statsRepo StatsRepository,
	evaluator *Evaluator,
	log *logger.Logger,
) *Service {
	return &Service{
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
		statsRepo:       statsRepo,
		evaluator:       evaluator,
		log:             log,
	}
}

// SyncCatalog inserts catalog entries missing from the achievements table and
// warns about rows that differ from the catalog. Existing rows are never rewritten.
// Returns the number of inserted definitions.
func (s *Service) SyncCatalog(ctx context.Context) (int, error) {
	inserted := 0
	for _, rule := range s.evaluator.Catalog() {
		def := rule.Definition()
		created, err := s.achievementRepo.EnsureDefinition(ctx, &def)
		if err != nil {
			return inserted, fmt.Errorf("failed to sync achievement catalog: %w", err)
		}
		if created {
			inserted++
			s.log.Info().
				Uint("achievement_id", rule.ID).
				Str("achievement", rule.Name).
				Msg("Achievement definition created")
		}
	}

	persisted, err := s.achievementRepo.GetAll(ctx)
	if err != nil {
		return inserted, fmt.Errorf("failed to load achievements: %w", err)
	}

	byID := make(map[uint]models.Achievement, len(persisted))
	for _, a := range persisted {
		byID[a.ID] = a
	}
	for _, rule := range s.evaluator.Catalog() {
		row, ok := byID[rule.ID]
		if !ok {
			continue
		}
		if row.Criterion != rule.Criterion || row.Threshold != rule.Threshold || row.Name != rule.Name {
			s.log.Warn().
				Uint("achievement_id", rule.ID).
				Str("configured_name", rule.Name).
				Str("stored_name", row.Name).
				Int("configured_threshold", rule.Threshold).
				Int("stored_threshold", row.Threshold).
				Msg("Achievement definition differs from configured catalog")
		}
		delete(byID, rule.ID)
	}
	for id, row := range byID {
		s.log.Warn().
			Uint("achievement_id", id).
			Str("achievement", row.Name).
			Msg("Stored achievement is not in the configured catalog and will never be awarded")
	}

	s.log.Info().
		Int("catalog_size", len(s.evaluator.Catalog())).
		Int("inserted", inserted).
		Msg("Achievement catalog synchronized")

	return inserted, nil
}

// GetCatalog returns all persisted achievement definitions.
func (s *Service) GetCatalog(ctx context.Context) ([]models.Achievement, error) {
	achievements, err := s.achievementRepo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return achievements, nil
}

// GetUserAchievements returns the achievements credited to a user.
func (s *Service) GetUserAchievements(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	credits, err := s.achievementRepo.GetUserAchievements(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return credits, nil
}

// ReconcileUser evaluates a user against the catalog and credits what they qualify for.
// It picks up users who met a rule before the rule was added to the catalog.
func (s *Service) ReconcileUser(ctx context.Context, userID uint) ([]models.Achievement, error) {
	stats, err := s.statsRepo.UserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	credited, err := s.achievementRepo.CreditedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get credited achievements: %w", err)
	}

	unlocked, err := s.evaluator.Evaluate(ctx, s.achievementRepo, userID, stats, credited)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate achievements: %w", err)
	}

	for _, a := range unlocked {
		prommetrics.RecordAchievementUnlocked(a.Name)
	}
	return unlocked, nil
}

// ReconcileAll evaluates every user against the catalog.
// Returns the number of achievements credited.
func (s *Service) ReconcileAll(ctx context.Context) (int, error) {
	s.log.Info().Msg("Starting achievement reconciliation for all users")
	start := time.Now()

	userIDs, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get users")
		return 0, fmt.Errorf("failed to get users: %w", err)
	}

	creditedCount := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return creditedCount, err
		}

		unlocked, err := s.ReconcileUser(ctx, userID)
		if err != nil {
			s.log.Error().
				Err(err).
				Uint("user_id", userID).
				Msg("Failed to reconcile achievements")
			continue
		}

		for _, a := range unlocked {
			creditedCount++
			s.log.Info().
				Uint("user_id", userID).
				Str("achievement", a.Name).
				Msg("Achievement credited")
		}
	}

	s.UpdateHolderMetrics(ctx)
	prommetrics.SetReconcileLastRun()

	s.log.Info().
		Int("users_evaluated", len(userIDs)).
		Int("achievements_credited", creditedCount).
		Dur("duration", time.Since(start)).
		Msg("Achievement reconciliation complete")

	return creditedCount, nil
}

// UpdateHolderMetrics refreshes the per-achievement holder gauge.
func (s *Service) UpdateHolderMetrics(ctx context.Context) {
	achievements, err := s.achievementRepo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get achievements for holder metrics")
		return
	}

	for _, a := range achievements {
		count, err := s.achievementRepo.HoldersCount(ctx, a.ID)
		if err != nil {
			s.log.Error().Err(err).Uint("achievement_id", a.ID).Msg("Failed to count achievement holders")
			continue
		}
		prommetrics.SetAchievementHolders(a.Name, count)
	}
}

func (s *Service) ensureUser(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user")
		}
		return apperrors.Internal(err)
	}
	return nil
}
