package models

import "time"

// EventType represents the type of watchlist domain event.
type EventType string

const (
	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"
)

// WatchlistEvent is published after a successful user mutation.
// IMDBID is set only when an update added or removed a movie.
type WatchlistEvent struct {
	EventID       string    `json:"event_id"`
	CorrelationID string    `json:"correlation_id"`
	EventType     EventType `json:"event_type"`
	Timestamp     time.Time `json:"timestamp"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email,omitempty"`
	Action        string    `json:"action,omitempty"`
	IMDBID        string    `json:"imdb_id,omitempty"`
}
