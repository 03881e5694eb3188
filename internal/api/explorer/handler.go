// Package explorer provides the REST API handlers for explorers: location
// browsing, check-ins, registration, progress and achievements.
package explorer

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/geoquest/internal/apperrors"
	"github.com/aimd54/geoquest/internal/models"
	"github.com/aimd54/geoquest/internal/service/achievements"
	"github.com/aimd54/geoquest/internal/service/auth"
	"github.com/aimd54/geoquest/internal/service/checkin"
	"github.com/aimd54/geoquest/internal/service/locations"
	"github.com/aimd54/geoquest/internal/service/stats"
	"github.com/aimd54/geoquest/pkg/logger"
)

// LocationService interface for location browsing.
type LocationService interface {
	List(ctx context.Context, filter locations.Filter) ([]locations.Summary, error)
	Get(ctx context.Context, id uint, userID *uint) (*locations.Detail, error)
}

// CheckinService interface for check-ins.
type CheckinService interface {
	CheckIn(ctx context.Context, req checkin.Request) (*checkin.Result, error)
}

// AuthService interface for registration and login.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
}

// StatsService interface for user progress.
type StatsService interface {
	GetProgress(ctx context.Context, userID uint) (*stats.Progress, error)
}

// AchievementService interface for achievement queries.
type AchievementService interface {
	GetCatalog(ctx context.Context) ([]models.Achievement, error)
	GetUserAchievements(ctx context.Context, userID uint) ([]models.UserAchievement, error)
}

// HealthChecker is implemented by the database and the cache.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler handles explorer API requests.
type Handler struct {
	locationService    LocationService
	checkinService     CheckinService
	authService        AuthService
	statsService       StatsService
	achievementService AchievementService
	checks             map[string]HealthChecker
	log                *logger.Logger
}

// Services groups the concrete services served by the handler.
type Services struct {
	Locations    *locations.Service
	Checkin      *checkin.Service
	Auth         *auth.Service
	Stats        *stats.Service
	Achievements *achievements.Service
}

// NewHandler creates a new explorer handler.
func NewHandler(svc Services, checks map[string]HealthChecker, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(svc.Locations, svc.Checkin, svc.Auth, svc.Stats, svc.Achievements, checks, log)
}

// NewHandlerWithInterfaces creates a new explorer handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	locationService LocationService,
	checkinService CheckinService,
	authService AuthService,
	statsService StatsService,
	achievementService AchievementService,
	checks map[string]HealthChecker,
	log *logger.Logger,
) *Handler {
	return &Handler{
		locationService:    locationService,
		checkinService:     checkinService,
		authService:        authService,
		statsService:       statsService,
		achievementService: achievementService,
		checks:             checks,
		log:                log,
	}
}

// RegisterRoutes mounts the explorer endpoints on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/locations", h.ListLocations)
	r.GET("/locations/:id", h.GetLocation)
	r.POST("/checkin", h.CheckIn)
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/users/:id/visits", h.GetUserVisits)
	r.GET("/users/:id/achievements", h.GetUserAchievements)
	r.GET("/achievements", h.GetAchievementCatalog)
}

type checkinRequest struct {
	UserID     *uint       `json:"user_id" binding:"required"`
	LocationID *uint       `json:"location_id" binding:"required"`
	Latitude   *coordinate `json:"latitude" binding:"required"`
	Longitude  *coordinate `json:"longitude" binding:"required"`
}

// coordinate accepts a JSON number or a numeric string such as "28.47".
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %s", data)
	}
	*c = coordinate(v)
	return nil
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userAchievementResponse is one entry of a user's unlocked achievements.
type userAchievementResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	UnlockedImageURL string    `json:"unlocked_image_url,omitempty"`
	UnlockedAt       time.Time `json:"unlocked_at"`
}

// ListLocations returns all locations, optionally filtered by municipality or name.
func (h *Handler) ListLocations(c *gin.Context) {
	var filter locations.Filter

	if raw := c.Query("municipality_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid municipality_id: %s", raw))
			return
		}
		filter.MunicipalityID = &id
	}
	filter.Query = strings.TrimSpace(c.Query("q"))

	list, err := h.locationService.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetLocation returns one location. The unlocked content is only included
// when user_id names an explorer who has visited it.
func (h *Handler) GetLocation(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid location ID: %s", c.Param("id")))
		return
	}

	var userID *uint
	if raw := c.Query("user_id"); raw != "" {
		uid, err := parseID(raw)
		if err != nil {
			h.errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid user_id: %s", raw))
			return
		}
		userID = &uid
	}

	detail, err := h.locationService.Get(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CheckIn records a visit when the explorer stands close enough to the location.
func (h *Handler) CheckIn(c *gin.Context) {
	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "user_id, location_id, latitude and longitude are required")
		return
	}

	result, err := h.checkinService.CheckIn(c.Request.Context(), checkin.Request{
		UserID:     *req.UserID,
		LocationID: *req.LocationID,
		Latitude:   float64(*req.Latitude),
		Longitude:  float64(*req.Longitude),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Register creates a new explorer account.
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "user registered",
		"user_id": user.ID,
	})
}

// Login verifies an explorer's credentials.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"user_id": user.ID,
	})
}

// GetUserVisits returns the explorer's visited locations and progress.
func (h *Handler) GetUserVisits(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	progress, err := h.statsService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetUserAchievements returns the achievements the explorer has unlocked.
func (h *Handler) GetUserAchievements(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	unlocked, err := h.achievementService.GetUserAchievements(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]userAchievementResponse, 0, len(unlocked))
	for _, ua := range unlocked {
		resp = append(resp, userAchievementResponse{
			ID:               ua.AchievementID,
			Name:             ua.Achievement.Name,
			Description:      ua.Achievement.Description,
			UnlockedImageURL: ua.Achievement.UnlockedImageURL,
			UnlockedAt:       ua.UnlockedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GetAchievementCatalog returns every achievement definition.
func (h *Handler) GetAchievementCatalog(c *gin.Context) {
	catalog, err := h.achievementService.GetCatalog(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, catalog)
}

// Health reports whether the database and cache respond.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Health(ctx); err != nil {
			h.log.Warn().Err(err).Str("component", name).Msg("Health check failed")
			components[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}

	c.JSON(status, gin.H{
		"status":     state,
		"components": components,
		"timestamp":  time.Now().UTC(),
	})
}

// Helper functions

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// parseUserID extracts and validates the user ID from the URL parameter.
func (h *Handler) parseUserID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := parseID(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %s", idStr)
	}
	return id, nil
}

// respondError maps a service error to its status code. Internal causes are
// logged and never sent to the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	h.errorResponse(c, status, apperrors.PublicMessage(err))
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}
