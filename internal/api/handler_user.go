package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/CoolCoder0110/Movie-API/internal/store"
	"github.com/CoolCoder0110/Movie-API/pkg/metrics"
	"github.com/CoolCoder0110/Movie-API/pkg/middleware"
	"github.com/CoolCoder0110/Movie-API/pkg/models"
)

// UserStore defines the persistence operations the handlers need.
// Implemented by *store.Store.
type UserStore interface {
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListUsersWithMovies(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, userID string, req models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// Enricher resolves association lists into enriched movie lists.
// Implemented by *enrich.Enricher.
type Enricher interface {
	EnrichAll(ctx context.Context, movies []models.Movie) []models.EnrichedMovie
}

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	Publish(routingKey string, body []byte, correlationID string) error
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	Store    UserStore
	Enricher Enricher
	// Publisher may be nil; lifecycle events are then not emitted.
	Publisher EventPublisher
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(st UserStore, en Enricher, pub EventPublisher) *UserHandler {
	return &UserHandler{Store: st, Enricher: en, Publisher: pub}
}

// userSummary is the list shape: user fields without associations.
type userSummary struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// userWithMovies is the enriched read shape.
type userWithMovies struct {
	UserID string                 `json:"user_id"`
	Name   string                 `json:"name"`
	Email  string                 `json:"email"`
	Movies []models.EnrichedMovie `json:"movies"`
}

// CreateUser godoc
// @Summary      Create a new user
// @Description  Creates a user with an optional initial movie list
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      models.CreateUserRequest  true  "Create user request"
// @Success      201      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /api/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	log.Printf("[API] CreateUser correlation_id=%s", correlationID)

	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID, name, and email are required"})
		return
	}

	user, err := h.Store.CreateUser(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"message": "User ID, name, and email are required"})
		case errors.Is(err, store.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		default:
			log.Printf("[API] Error creating user: %v correlation_id=%s", err, correlationID)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		}
		return
	}

	h.publishEvent(models.EventUserCreated, user.UserID, models.UpdateUserRequest{}, correlationID)

	metrics.RequestCount.Inc()
	log.Printf("[API] User created: user_id=%s correlation_id=%s", user.UserID, correlationID)
	c.JSON(http.StatusCreated, gin.H{"message": "User added successfully"})
}

// GetUser godoc
// @Summary      Get a user with enriched movies
// @Description  Returns the user and its movie list resolved against OMDb
// @Tags         users
// @Produce      json
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]string
// @Router       /api/users/{user_id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("user_id")

	user, err := h.Store.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user"})
		return
	}

	metrics.RequestCount.Inc()
	c.JSON(http.StatusOK, userWithMovies{
		UserID: user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Movies: h.Enricher.EnrichAll(c.Request.Context(), user.Movies),
	})
}

// ListUsers godoc
// @Summary      List all users
// @Description  Returns all user summaries; 404 when no users exist
// @Tags         users
// @Produce      json
// @Success      200  {array}   map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch users"})
		return
	}

	// Zero users is shaped as not-found, matching the service's
	// long-standing behavior (see DESIGN.md).
	if len(users) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No users found"})
		return
	}

	summaries := make([]userSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, userSummary{UserID: u.UserID, Name: u.Name, Email: u.Email})
	}

	metrics.RequestCount.Inc()
	c.JSON(http.StatusOK, summaries)
}

// ListUsersWithMovies godoc
// @Summary      List all users with enriched movies
// @Description  Returns every user with its movie list resolved against OMDb
// @Tags         users
// @Produce      json
// @Success      200  {array}   map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/users/movies [get]
func (h *UserHandler) ListUsersWithMovies(c *gin.Context) {
	users, err := h.Store.ListUsersWithMovies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch users"})
		return
	}

	if len(users) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No users found"})
		return
	}

	out := make([]userWithMovies, 0, len(users))
	for _, u := range users {
		out = append(out, userWithMovies{
			UserID: u.UserID,
			Name:   u.Name,
			Email:  u.Email,
			Movies: h.Enricher.EnrichAll(c.Request.Context(), u.Movies),
		})
	}

	metrics.RequestCount.Inc()
	c.JSON(http.StatusOK, out)
}

// UpdateUser godoc
// @Summary      Update a user
// @Description  Replaces provided name/email and applies add/remove movie actions
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user_id  path      string                    true  "User ID"
// @Param        request  body      models.UpdateUserRequest  true  "Update user request"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /api/users/{user_id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	userID := c.Param("user_id")
	log.Printf("[API] UpdateUser user_id=%s correlation_id=%s", userID, correlationID)

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.Store.UpdateUser(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		case errors.Is(err, store.ErrMovieNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Movie not found for this user"})
		default:
			log.Printf("[API] Error updating user: %v correlation_id=%s", err, correlationID)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
		}
		return
	}

	h.publishEvent(models.EventUserUpdated, user.UserID, req, correlationID)

	metrics.RequestCount.Inc()
	log.Printf("[API] User updated: user_id=%s correlation_id=%s", user.UserID, correlationID)
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  Deletes the user and all of its movie associations
// @Tags         users
// @Produce      json
// @Param        user_id  path  string  true  "User ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{user_id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	userID := c.Param("user_id")
	log.Printf("[API] DeleteUser user_id=%s correlation_id=%s", userID, correlationID)

	if err := h.Store.DeleteUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		log.Printf("[API] Error deleting user: %v correlation_id=%s", err, correlationID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user"})
		return
	}

	h.publishEvent(models.EventUserDeleted, userID, models.UpdateUserRequest{}, correlationID)

	metrics.RequestCount.Inc()
	log.Printf("[API] User deleted: user_id=%s correlation_id=%s", userID, correlationID)
	c.Status(http.StatusNoContent)
}

// publishEvent emits a lifecycle event, best effort: a publish
// failure is logged and never fails the request.
func (h *UserHandler) publishEvent(eventType models.EventType, userID string, req models.UpdateUserRequest, correlationID string) {
	if h.Publisher == nil {
		return
	}

	event := models.WatchlistEvent{
		EventID:       uuid.New().String(),
		CorrelationID: correlationID,
		EventType:     eventType,
		Timestamp:     time.Now(),
		UserID:        userID,
		Name:          req.Name,
		Email:         req.Email,
		Action:        req.Action,
		IMDBID:        req.IMDBID,
	}

	eventBytes, _ := json.Marshal(event)
	if err := h.Publisher.Publish(string(eventType), eventBytes, correlationID); err != nil {
		log.Printf("[API] Error publishing event: %v correlation_id=%s", err, correlationID)
	}
}
