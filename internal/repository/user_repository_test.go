package repository

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/aimd54/geoquest/internal/models"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "ana")
	if user.ID == 0 {
		t.Fatal("Expected user ID to be set")
	}

	byName, err := repo.GetByUsername(ctx, "ana")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("Expected ID %d, got %d", user.ID, byName.ID)
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Username != "ana" {
		t.Errorf("Expected username ana, got %s", byID.Username)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	createTestUser(t, db, "ana")

	err := repo.Create(context.Background(), &models.User{Username: "ana", PasswordHash: "x"})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("Expected ErrDuplicatedKey, got %v", err)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 999)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestUserRepository_ListIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	a := createTestUser(t, db, "ana")
	b := createTestUser(t, db, "ben")

	ids, err := repo.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != a.ID || ids[1] != b.ID {
		t.Errorf("Expected [%d %d], got %v", a.ID, b.ID, ids)
	}
}
