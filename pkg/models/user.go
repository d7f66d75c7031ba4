package models

import "time"

// User represents a registered user and the movies they track.
type User struct {
	ID        int64     `json:"-" db:"id"`
	UserID    string    `json:"user_id" db:"user_id" binding:"required"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Email     string    `json:"email" db:"email" binding:"required"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Movies    []Movie   `json:"movies,omitempty"`
}

// Movie is the association between a user and one IMDb identifier.
// A user may hold the same imdb_id more than once.
type Movie struct {
	ID     int64  `json:"-" db:"id"`
	IMDBID string `json:"imdb_id" db:"imdb_id"`
}

// EnrichedMovie carries the OMDb attributes resolved for one
// association. It is computed on every read and never stored.
type EnrichedMovie struct {
	IMDBID string `json:"imdb_id"`
	Title  string `json:"title"`
	Year   string `json:"year"`
}

// NotFoundMovie is the well-formed result returned when the provider
// reports no record for an imdb id. It is a valid response, not an
// error.
func NotFoundMovie(imdbID string) EnrichedMovie {
	return EnrichedMovie{IMDBID: imdbID, Title: "Movie Not Found", Year: "N/A"}
}

// Movie list update actions accepted by PUT /api/users/:user_id.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	UserID string   `json:"user_id" binding:"required" example:"u1"`
	Name   string   `json:"name" binding:"required" example:"Ann"`
	Email  string   `json:"email" binding:"required" example:"ann@example.com"`
	Movies []string `json:"movies"`
}

// UpdateUserRequest is the request body for updating a user. All
// fields are optional; empty name/email leave the stored values
// unchanged. An unrecognized action is a no-op.
type UpdateUserRequest struct {
	Name   string `json:"name,omitempty" example:"Ann Smith"`
	Email  string `json:"email,omitempty" example:"ann@example.com"`
	Action string `json:"action,omitempty" example:"add"`
	IMDBID string `json:"imdb_id,omitempty" example:"tt0111161"`
}

// UserWithMovies is the enriched read shape for a single user.
type UserWithMovies struct {
	UserID string          `json:"user_id"`
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Movies []EnrichedMovie `json:"movies"`
}
