package store

import "errors"

// Sentinel errors returned by store operations. Handlers translate
// these into HTTP outcomes; anything else is an internal failure.
var (
	// ErrMissingFields reports a create with an empty user_id, name,
	// or email.
	ErrMissingFields = errors.New("user ID, name, and email are required")

	// ErrUserExists reports a create with a user_id already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound reports an operation on an absent user.
	ErrUserNotFound = errors.New("user not found")

	// ErrMovieNotFound reports a remove of an imdb id the user does
	// not hold.
	ErrMovieNotFound = errors.New("movie not found for this user")
)
