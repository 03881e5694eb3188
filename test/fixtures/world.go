// Package fixtures builds SQLite-backed test databases populated with Tenerife reference data.
package fixtures

import (
	"context"
	"testing"

	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/internal/repository"
	"github.com/aimd54/geoquest/pkg/logger"
)

// Location names available in every World.
const (
	Auditorio  = "Auditorio de Tenerife"
	Parque     = "Parque García Sanabria"
	SiamPark   = "Siam Park"
	Catedral   = "Catedral de La Laguna"
	Balcones   = "Casa de los Balcones"
	Cristianos = "Playa de Los Cristianos"
)

// World is an in-memory database with a geographic hierarchy, six locations
// across five municipalities and three levels.
type World struct {
	DB             *repository.DB
	Municipalities map[string]*models.Municipality
	Locations      map[string]*models.Location
}

type locationSeed struct {
	name         string
	municipality string
	lat, lng     float64
}

var seeds = []locationSeed{
	{Auditorio, "Santa Cruz de Tenerife", 28.4710, -16.2527},
	{Parque, "Santa Cruz de Tenerife", 28.4725, -16.2540},
	{SiamPark, "Adeje", 28.0718, -16.3379},
	{Catedral, "San Cristóbal de La Laguna", 28.4883, -16.3159},
	{Balcones, "La Orotava", 28.3905, -16.5239},
	{Cristianos, "Arona", 28.0506, -16.7169},
}

// NewDB opens an empty, migrated in-memory database.
func NewDB(t *testing.T) *repository.DB {
	t.Helper()

	db, err := repository.NewSQLiteDB(":memory:", logger.Nop())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewWorld opens an in-memory database populated with reference data.
func NewWorld(t *testing.T) *World {
	t.Helper()

	w := &World{
		DB:             NewDB(t),
		Municipalities: make(map[string]*models.Municipality),
		Locations:      make(map[string]*models.Location),
	}

	continent := &models.Continent{Name: "Europe"}
	w.create(t, continent)
	country := &models.Country{Name: "Spain", ContinentID: continent.ID}
	w.create(t, country)
	region := &models.Region{Name: "Canary Islands", CountryID: country.ID}
	w.create(t, region)
	province := &models.Province{Name: "Santa Cruz de Tenerife", RegionID: region.ID}
	w.create(t, province)
	island := &models.Island{Name: "Tenerife", ProvinceID: province.ID}
	w.create(t, island)

	for _, s := range seeds {
		m, ok := w.Municipalities[s.municipality]
		if !ok {
			m = &models.Municipality{Name: s.municipality, ProvinceID: province.ID, IslandID: &island.ID}
			w.create(t, m)
			w.Municipalities[s.municipality] = m
		}

		loc := &models.Location{
			Name:               s.name,
			Description:        s.name + " in " + s.municipality,
			Latitude:           s.lat,
			Longitude:          s.lng,
			MunicipalityID:     m.ID,
			UnlockedContentURL: "https://content.example.com/unlocked/" + s.municipality,
		}
		w.create(t, loc)
		w.Locations[s.name] = loc
	}

	for _, level := range []models.Level{
		{Name: "Novice Explorer", VisitsRequired: 0},
		{Name: "Local Visitor", VisitsRequired: 3},
		{Name: "Tenerife Conqueror", VisitsRequired: 10},
	} {
		w.create(t, &level)
	}

	return w
}

// Location returns the named location.
func (w *World) Location(t *testing.T, name string) *models.Location {
	t.Helper()

	loc, ok := w.Locations[name]
	if !ok {
		t.Fatalf("Unknown fixture location %q", name)
	}
	return loc
}

// User creates a user with a placeholder password hash.
func (w *World) User(t *testing.T, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, PasswordHash: "not-a-real-hash"}
	if err := repository.NewUserRepository(w.DB).Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// Achievements persists the given definitions.
func (w *World) Achievements(t *testing.T, defs []models.Achievement) {
	t.Helper()

	repo := repository.NewAchievementRepository(w.DB)
	for i := range defs {
		if _, err := repo.EnsureDefinition(context.Background(), &defs[i]); err != nil {
			t.Fatalf("Failed to create achievement %d: %v", defs[i].ID, err)
		}
	}
}

func (w *World) create(t *testing.T, value any) {
	t.Helper()

	if err := w.DB.Create(value).Error; err != nil {
		t.Fatalf("Failed to create %T: %v", value, err)
	}
}
