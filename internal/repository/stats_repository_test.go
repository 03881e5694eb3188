package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/geoquest/internal/models"
)

func TestStatsRepository_UserStats(t *testing.T) {
	db := setupTestDB(t)
	visits := NewVisitRepository(db)
	stats := NewStatsRepository(db)
	ctx := context.Background()

	province := createTestProvince(t, db)
	adeje := createTestMunicipality(t, db, province, "Adeje")
	santaCruz := createTestMunicipality(t, db, province, "Santa Cruz de Tenerife")
	siam := createTestLocation(t, db, adeje, "Siam Park", 28.0718, -16.3379)
	auditorio := createTestLocation(t, db, santaCruz, "Auditorio de Tenerife", 28.4710, -16.2527)
	parque := createTestLocation(t, db, santaCruz, "Parque García Sanabria", 28.4725, -16.2540)
	user := createTestUser(t, db, "ana")

	empty, err := stats.UserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{}, empty)

	for _, id := range []uint{auditorio.ID, auditorio.ID, parque.ID, siam.ID, siam.ID} {
		_, err := visits.RecordVisit(ctx, user.ID, id, time.Now(), true)
		require.NoError(t, err)
	}

	got, err := stats.UserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{UniqueVisits: 3, UniqueMunicipalities: 2}, got)

	again, err := stats.UserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	progress, err := stats.ProgressByMunicipality(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, "Adeje", progress[0].MunicipalityName)
	assert.Equal(t, 1, progress[0].VisitedCount)
	assert.Equal(t, "Santa Cruz de Tenerife", progress[1].MunicipalityName)
	assert.Equal(t, santaCruz.ID, progress[1].MunicipalityID)
	assert.Equal(t, 2, progress[1].VisitedCount)
}

func TestStatsRepository_ObservesOpenTransaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	municipality := createTestMunicipality(t, db, createTestProvince(t, db), "Adeje")
	location := createTestLocation(t, db, municipality, "Siam Park", 28.0718, -16.3379)
	user := createTestUser(t, db, "ana")

	err := db.Transaction(ctx, func(tx *DB) error {
		if _, err := NewVisitRepository(tx).RecordVisit(ctx, user.ID, location.ID, time.Now(), true); err != nil {
			return err
		}
		got, err := NewStatsRepository(tx).UserStats(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.UniqueVisits)
		return nil
	})
	require.NoError(t, err)
}
