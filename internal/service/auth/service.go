// Package auth registers users and verifies their credentials.
package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aimd54/geoquest/internal/apperrors"
	prommetrics "github.com/aimd54/geoquest/internal/metrics"
	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/internal/repository"
	"github.com/aimd54/geoquest/pkg/logger"
)

const (
	actionRegister = "register"
	actionLogin    = "login"
)

// MaxUsernameLength matches the users.username column size.
const MaxUsernameLength = 80

var errInvalidCredentials = apperrors.Unauthorized("invalid username or password")

// UserRepository interface for user operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service handles registration and login.
type Service struct {
	userRepo   UserRepository
	bcryptCost int
	log        *logger.Logger
}

// NewService creates a new auth service.
func NewService(db *repository.DB, bcryptCost int, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repository.NewUserRepository(db), bcryptCost, log)
}

// NewServiceWithInterfaces creates a new auth service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(userRepo UserRepository, bcryptCost int, log *logger.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Register creates a user. The username is trimmed; both fields must be non-empty.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		prommetrics.RecordAuthAttempt(actionRegister, "invalid")
		return nil, apperrors.BadRequest("username and password are required")
	}
	if len(username) > MaxUsernameLength {
		prommetrics.RecordAuthAttempt(actionRegister, "invalid")
		return nil, apperrors.BadRequest("username must be at most %d characters", MaxUsernameLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		prommetrics.RecordAuthAttempt(actionRegister, "invalid")
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.BadRequest("password must be at most 72 bytes")
		}
		return nil, apperrors.Internal(err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			prommetrics.RecordAuthAttempt(actionRegister, "conflict")
			return nil, apperrors.Conflict("username already exists")
		}
		prommetrics.RecordAuthAttempt(actionRegister, "error")
		s.log.Error().Err(err).Str("username", username).Msg("Failed to create user")
		return nil, apperrors.Internal(err)
	}

	prommetrics.RecordAuthAttempt(actionRegister, "success")
	s.log.Info().Uint("user_id", user.ID).Str("username", username).Msg("User registered")
	return user, nil
}

// Login verifies credentials and returns the user.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		prommetrics.RecordAuthAttempt(actionLogin, "invalid")
		return nil, apperrors.BadRequest("username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			prommetrics.RecordAuthAttempt(actionLogin, "failure")
			return nil, errInvalidCredentials
		}
		prommetrics.RecordAuthAttempt(actionLogin, "error")
		return nil, apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		prommetrics.RecordAuthAttempt(actionLogin, "failure")
		s.log.Debug().Str("username", username).Msg("Password mismatch")
		return nil, errInvalidCredentials
	}

	prommetrics.RecordAuthAttempt(actionLogin, "success")
	return user, nil
}
