package achievements

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/geoquest/internal/config"
	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/pkg/logger"
)

// Mock repositories for testing
type mockAchievementRepository struct {
	definitions map[uint]models.Achievement
	credits     map[uint]map[uint]time.Time // userID -> achievementID -> unlocked at
	creditErr   error
	creditCalls int
}

func newMockAchievementRepository() *mockAchievementRepository {
	return &mockAchievementRepository{
		definitions: make(map[uint]models.Achievement),
		credits:     make(map[uint]map[uint]time.Time),
	}
}

func (m *mockAchievementRepository) GetByIDs(_ context.Context, ids []uint) (map[uint]models.Achievement, error) {
	found := make(map[uint]models.Achievement)
	for _, id := range ids {
		if def, ok := m.definitions[id]; ok {
			found[id] = def
		}
	}
	return found, nil
}

func (m *mockAchievementRepository) CreditAchievement(_ context.Context, userID, achievementID uint, at time.Time) (bool, error) {
	m.creditCalls++
	if m.creditErr != nil {
		return false, m.creditErr
	}
	if m.credits[userID] == nil {
		m.credits[userID] = make(map[uint]time.Time)
	}
	if _, ok := m.credits[userID][achievementID]; ok {
		return false, nil
	}
	m.credits[userID][achievementID] = at
	return true, nil
}

func (m *mockAchievementRepository) EnsureDefinition(_ context.Context, a *models.Achievement) (bool, error) {
	if _, ok := m.definitions[a.ID]; ok {
		return false, nil
	}
	m.definitions[a.ID] = *a
	return true, nil
}

func (m *mockAchievementRepository) GetAll(_ context.Context) ([]models.Achievement, error) {
	all := make([]models.Achievement, 0, len(m.definitions))
	for _, def := range m.definitions {
		all = append(all, def)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (m *mockAchievementRepository) CreditedIDs(_ context.Context, userID uint) (map[uint]bool, error) {
	ids := make(map[uint]bool)
	for id := range m.credits[userID] {
		ids[id] = true
	}
	return ids, nil
}

func (m *mockAchievementRepository) GetUserAchievements(_ context.Context, userID uint) ([]models.UserAchievement, error) {
	var result []models.UserAchievement
	for id, at := range m.credits[userID] {
		result = append(result, models.UserAchievement{
			UserID:        userID,
			AchievementID: id,
			Achievement:   m.definitions[id],
			UnlockedAt:    at,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AchievementID < result[j].AchievementID })
	return result, nil
}

func (m *mockAchievementRepository) HoldersCount(_ context.Context, achievementID uint) (int64, error) {
	count := int64(0)
	for _, credits := range m.credits {
		if _, ok := credits[achievementID]; ok {
			count++
		}
	}
	return count, nil
}

type mockUserRepository struct {
	users map[uint]bool
}

func (m *mockUserRepository) GetByID(_ context.Context, id uint) (*models.User, error) {
	if !m.users[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.User{ID: id}, nil
}

func (m *mockUserRepository) ListIDs(_ context.Context) ([]uint, error) {
	ids := make([]uint, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type mockStatsRepository struct {
	stats map[uint]models.UserStats
	err   map[uint]error
}

func (m *mockStatsRepository) UserStats(_ context.Context, userID uint) (models.UserStats, error) {
	if err := m.err[userID]; err != nil {
		return models.UserStats{}, err
	}
	return m.stats[userID], nil
}

var errDatabase = errors.New("database is locked")

func defaultCatalog() Catalog {
	catalog, err := CatalogFromConfig(config.DefaultAchievements())
	if err != nil {
		panic(err)
	}
	return catalog
}

// seededRepo returns a repository holding every definition of catalog.
func seededRepo(catalog Catalog) *mockAchievementRepository {
	repo := newMockAchievementRepository()
	for _, rule := range catalog {
		repo.definitions[rule.ID] = rule.Definition()
	}
	return repo
}

func testLogger() *logger.Logger {
	return logger.Nop()
}
