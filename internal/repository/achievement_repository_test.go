package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/geoquest/internal/models"
)

func createTestAchievements(t *testing.T, repo *AchievementRepository) {
	t.Helper()

	defs := []models.Achievement{
		{ID: 1, Name: "Novice Explorer", Criterion: models.CriterionTotalUniqueVisits, Threshold: 1},
		{ID: 2, Name: "Keen Explorer", Criterion: models.CriterionTotalUniqueVisits, Threshold: 5},
	}
	for i := range defs {
		created, err := repo.EnsureDefinition(context.Background(), &defs[i])
		require.NoError(t, err)
		require.True(t, created)
	}
}

func TestAchievementRepository_EnsureDefinition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAchievementRepository(db)
	ctx := context.Background()

	createTestAchievements(t, repo)

	created, err := repo.EnsureDefinition(ctx, &models.Achievement{ID: 1, Name: "Renamed", Criterion: models.CriterionTotalUniqueVisits, Threshold: 9})
	require.NoError(t, err)
	assert.False(t, created)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Novice Explorer", all[0].Name, "existing rows are not overwritten")

	byID, err := repo.GetByIDs(ctx, []uint{2, 3})
	require.NoError(t, err)
	assert.Len(t, byID, 1)
	assert.Equal(t, "Keen Explorer", byID[2].Name)
}

func TestAchievementRepository_CreditAchievement(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAchievementRepository(db)
	ctx := context.Background()

	createTestAchievements(t, repo)
	user := createTestUser(t, db, "ana")
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	credited, err := repo.CreditAchievement(ctx, user.ID, 1, at)
	require.NoError(t, err)
	assert.True(t, credited)

	credited, err = repo.CreditAchievement(ctx, user.ID, 1, at.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, credited, "second credit must be a no-op")

	ids, err := repo.CreditedIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{1: true}, ids)

	credits, err := repo.GetUserAchievements(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.Equal(t, "Novice Explorer", credits[0].Achievement.Name)
	assert.True(t, credits[0].UnlockedAt.Equal(at))

	holders, err := repo.HoldersCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), holders)
}

func TestAchievementRepository_CreditUnknownAchievement(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAchievementRepository(db)
	user := createTestUser(t, db, "ana")

	_, err := repo.CreditAchievement(context.Background(), user.ID, 77, time.Now())
	assert.Error(t, err)
}
