package repository

import (
	"context"
	"testing"

	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/pkg/logger"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewSQLiteDB(":memory:", logger.Nop())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return db
}

// createTestProvince creates the minimal hierarchy a municipality needs.
func createTestProvince(t *testing.T, db *DB) *models.Province {
	t.Helper()

	continent := &models.Continent{Name: "Europe"}
	mustCreate(t, db, continent)
	country := &models.Country{Name: "Spain", ContinentID: continent.ID}
	mustCreate(t, db, country)
	region := &models.Region{Name: "Canary Islands", CountryID: country.ID}
	mustCreate(t, db, region)
	province := &models.Province{Name: "Santa Cruz de Tenerife", RegionID: region.ID}
	mustCreate(t, db, province)
	return province
}

func createTestMunicipality(t *testing.T, db *DB, province *models.Province, name string) *models.Municipality {
	t.Helper()

	municipality := &models.Municipality{Name: name, ProvinceID: province.ID}
	mustCreate(t, db, municipality)
	return municipality
}

func createTestLocation(t *testing.T, db *DB, municipality *models.Municipality, name string, lat, lng float64) *models.Location {
	t.Helper()

	location := &models.Location{
		Name:               name,
		Latitude:           lat,
		Longitude:          lng,
		MunicipalityID:     municipality.ID,
		UnlockedContentURL: "https://content.example.com/" + name,
	}
	mustCreate(t, db, location)
	return location
}

func createTestUser(t *testing.T, db *DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, PasswordHash: "hash"}
	if err := NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func mustCreate(t *testing.T, db *DB, value any) {
	t.Helper()

	if err := db.Create(value).Error; err != nil {
		t.Fatalf("Failed to create %T: %v", value, err)
	}
}
