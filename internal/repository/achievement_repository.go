package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/aimd54/geoquest/internal/models"
)

// AchievementRepository handles achievement definitions and user credits.
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// EnsureDefinition inserts the definition unless a row with its ID exists.
// It reports whether a row was inserted.
func (r *AchievementRepository) EnsureDefinition(ctx context.Context, achievement *models.Achievement) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(achievement)
	if result.Error != nil {
		return false, fmt.Errorf("failed to ensure achievement %d: %w", achievement.ID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetAll retrieves all achievement definitions ordered by ID.
func (r *AchievementRepository) GetAll(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.WithContext(ctx).Order("id ASC").Find(&achievements).Error
	return achievements, err
}

// GetByIDs returns the persisted definitions among ids, keyed by ID.
func (r *AchievementRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Achievement, error) {
	found := make(map[uint]models.Achievement, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var achievements []models.Achievement
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&achievements).Error; err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	for _, a := range achievements {
		found[a.ID] = a
	}
	return found, nil
}

// CreditAchievement records that userID unlocked achievementID.
// It returns false without error when the user already holds the achievement.
func (r *AchievementRepository) CreditAchievement(ctx context.Context, userID, achievementID uint, at time.Time) (bool, error) {
	credit := &models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    at,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(credit)
	if result.Error != nil {
		return false, fmt.Errorf("failed to credit achievement %d to user %d: %w", achievementID, userID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CreditedIDs returns the set of achievement IDs already credited to userID.
func (r *AchievementRepository) CreditedIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get credited achievements for user %d: %w", userID, err)
	}

	credited := make(map[uint]bool, len(ids))
	for _, id := range ids {
		credited[id] = true
	}
	return credited, nil
}

// GetUserAchievements retrieves the achievements credited to a user, oldest first.
func (r *AchievementRepository) GetUserAchievements(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	var credits []models.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Achievement").
		Order("unlocked_at ASC").
		Order("achievement_id ASC").
		Find(&credits).Error
	return credits, err
}

// HoldersCount returns the number of users credited with an achievement.
func (r *AchievementRepository) HoldersCount(ctx context.Context, achievementID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserAchievement{}).
		Where("achievement_id = ?", achievementID).
		Count(&count).Error
	return count, err
}
