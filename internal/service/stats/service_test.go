package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/geoquest/internal/apperrors"
	"github.com/aimd54/geoquest/internal/repository"
	"github.com/aimd54/geoquest/pkg/logger"
	"github.com/aimd54/geoquest/test/fixtures"
)

func TestService_GetProgress(t *testing.T) {
	ctx := context.Background()
	world := fixtures.NewWorld(t)
	service := NewService(world.DB, logger.Nop())
	visits := repository.NewVisitRepository(world.DB)

	user := world.User(t, "ana")
	for _, name := range []string{fixtures.Auditorio, fixtures.Parque, fixtures.SiamPark, fixtures.Auditorio} {
		_, err := visits.RecordVisit(ctx, user.ID, world.Location(t, name).ID, time.Now(), true)
		require.NoError(t, err)
	}

	progress, err := service.GetProgress(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, progress.TotalVisits)
	assert.Equal(t, int64(4), progress.TotalCheckins)
	assert.Equal(t, 2, progress.UniqueMunicipalities)
	assert.Equal(t, int64(6), progress.TotalLocations)

	require.Len(t, progress.VisitedLocations, 3)
	assert.Equal(t, fixtures.Auditorio, progress.VisitedLocations[0].Name)
	assert.Equal(t, "Santa Cruz de Tenerife", progress.VisitedLocations[0].MunicipalityName)

	require.Len(t, progress.ProgressByMunicipality, 2)
	assert.Equal(t, "Adeje", progress.ProgressByMunicipality[0].MunicipalityName)
	assert.Equal(t, 1, progress.ProgressByMunicipality[0].VisitedCount)
	assert.Equal(t, 2, progress.ProgressByMunicipality[1].VisitedCount)

	require.NotNil(t, progress.Level.Current)
	assert.Equal(t, "Local Visitor", progress.Level.Current.Name)
	require.NotNil(t, progress.Level.Next)
	assert.Equal(t, 7, progress.Level.VisitsToNextLevel)
}

func TestService_GetProgress_NoVisits(t *testing.T) {
	world := fixtures.NewWorld(t)
	service := NewService(world.DB, logger.Nop())
	user := world.User(t, "ben")

	progress, err := service.GetProgress(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Zero(t, progress.TotalVisits)
	assert.NotNil(t, progress.VisitedLocations)
	assert.Empty(t, progress.VisitedLocations)
	assert.NotNil(t, progress.ProgressByMunicipality)
	assert.Equal(t, "Novice Explorer", progress.Level.Current.Name)
}

func TestService_GetProgress_UnknownUser(t *testing.T) {
	world := fixtures.NewWorld(t)
	service := NewService(world.DB, logger.Nop())

	_, err := service.GetProgress(context.Background(), 404)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
