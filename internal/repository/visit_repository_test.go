package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitRepository_RecordVisit(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		recordRepeats bool
		wantRows      int64
	}{
		{"repeats recorded", true, 2},
		{"repeats skipped", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewVisitRepository(db)

			municipality := createTestMunicipality(t, db, createTestProvince(t, db), "Adeje")
			location := createTestLocation(t, db, municipality, "Siam Park", 28.0718, -16.3379)
			user := createTestUser(t, db, "ana")

			first, err := repo.RecordVisit(ctx, user.ID, location.ID, at, tt.recordRepeats)
			require.NoError(t, err)
			assert.True(t, first.Created)

			second, err := repo.RecordVisit(ctx, user.ID, location.ID, at.Add(time.Hour), tt.recordRepeats)
			require.NoError(t, err)
			assert.False(t, second.Created)

			rows, err := repo.CountRows(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func TestVisitRepository_RecordVisit_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitRepository(db)

	municipality := createTestMunicipality(t, db, createTestProvince(t, db), "Adeje")
	location := createTestLocation(t, db, municipality, "Siam Park", 28.0718, -16.3379)

	_, err := repo.RecordVisit(context.Background(), 42, location.ID, time.Now(), true)
	assert.Error(t, err, "foreign key should reject a visit by a missing user")
}

func TestVisitRepository_VisitedLocations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitRepository(db)
	ctx := context.Background()

	province := createTestProvince(t, db)
	adeje := createTestMunicipality(t, db, province, "Adeje")
	santaCruz := createTestMunicipality(t, db, province, "Santa Cruz de Tenerife")
	siam := createTestLocation(t, db, adeje, "Siam Park", 28.0718, -16.3379)
	auditorio := createTestLocation(t, db, santaCruz, "Auditorio de Tenerife", 28.4710, -16.2527)
	createTestLocation(t, db, santaCruz, "Parque García Sanabria", 28.4725, -16.2540)

	ana := createTestUser(t, db, "ana")
	ben := createTestUser(t, db, "ben")

	for _, id := range []uint{siam.ID, auditorio.ID, siam.ID} {
		_, err := repo.RecordVisit(ctx, ana.ID, id, time.Now(), true)
		require.NoError(t, err)
	}

	visited, err := repo.VisitedLocations(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, visited, 2)
	assert.Equal(t, "Auditorio de Tenerife", visited[0].Name)
	assert.Equal(t, "Santa Cruz de Tenerife", visited[0].MunicipalityName())
	assert.Equal(t, "Siam Park", visited[1].Name)

	has, err := repo.HasVisited(ctx, ben.ID, siam.ID)
	require.NoError(t, err)
	assert.False(t, has)

	none, err := repo.VisitedLocations(ctx, ben.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
