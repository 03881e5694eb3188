package achievements

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/geoquest/internal/apperrors"
	"github.com/aimd54/geoquest/internal/models"
)

func setupTestService(repo *mockAchievementRepository, users map[uint]bool, stats map[uint]models.UserStats) *Service {
	return NewServiceWithInterfaces(
		repo,
		&mockUserRepository{users: users},
		&mockStatsRepository{stats: stats},
		NewEvaluator(defaultCatalog(), testLogger()),
		testLogger(),
	)
}

func TestService_SyncCatalog(t *testing.T) {
	ctx := context.Background()
	repo := newMockAchievementRepository()
	repo.definitions[99] = models.Achievement{ID: 99, Name: "Retired"}
	service := setupTestService(repo, nil, nil)

	inserted, err := service.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)

	inserted, err = service.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted, "sync is idempotent")

	catalog, err := service.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, 5)
}

func TestService_GetUserAchievements(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(defaultCatalog())
	service := setupTestService(repo, map[uint]bool{1: true}, nil)

	_, err := service.GetUserAchievements(ctx, 2)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	empty, err := service.GetUserAchievements(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestService_ReconcileAll(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(defaultCatalog())
	service := setupTestService(repo,
		map[uint]bool{1: true, 2: true, 3: true},
		map[uint]models.UserStats{
			1: {UniqueVisits: 5, UniqueMunicipalities: 3},
			2: {UniqueVisits: 1, UniqueMunicipalities: 1},
		},
	)

	credited, err := service.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, credited)
	assert.Len(t, repo.credits[1], 4)
	assert.Len(t, repo.credits[2], 2)
	assert.Empty(t, repo.credits[3])

	credited, err = service.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, credited)
}

func TestService_ReconcileAll_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(defaultCatalog())
	service := NewServiceWithInterfaces(
		repo,
		&mockUserRepository{users: map[uint]bool{1: true, 2: true}},
		&mockStatsRepository{
			stats: map[uint]models.UserStats{2: {UniqueVisits: 1}},
			err:   map[uint]error{1: errDatabase},
		},
		NewEvaluator(defaultCatalog(), testLogger()),
		testLogger(),
	)

	credited, err := service.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, credited)
}
