package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/CoolCoder0110/Movie-API/pkg/models"
)

// Store persists users and their movie associations in PostgreSQL.
// Every exported method is one atomic unit: multi-statement mutations
// run inside a single transaction, so a failure leaves no partial
// state. Movie rows are owned by exactly one user; deletion of the
// owner cascades explicitly inside DeleteUser rather than through
// database triggers.
type Store struct {
	db *sql.DB
}

// New creates a Store over an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a user and one movie row per initial imdb id.
// Returns ErrMissingFields when a required field is empty and
// ErrUserExists when the user_id is already taken.
func (s *Store) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if req.UserID == "" || req.Name == "" || req.Email == "" {
		return nil, ErrMissingFields
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	user := models.User{
		UserID:    req.UserID,
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = tx.QueryRowContext(ctx,
		"INSERT INTO users (user_id, name, email, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		user.UserID, user.Name, user.Email, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	for _, imdbID := range req.Movies {
		var movieID int64
		err = tx.QueryRowContext(ctx,
			"INSERT INTO movies (imdb_id, user_id) VALUES ($1, $2) RETURNING id",
			imdbID, user.ID,
		).Scan(&movieID)
		if err != nil {
			return nil, fmt.Errorf("insert movie %s: %w", imdbID, err)
		}
		user.Movies = append(user.Movies, models.Movie{ID: movieID, IMDBID: imdbID})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return &user, nil
}

// GetUser returns the user and its full association list, or
// ErrUserNotFound.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, email, created_at, updated_at FROM users WHERE user_id = $1",
		userID,
	).Scan(&user.ID, &user.UserID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	if user.Movies, err = s.loadMovies(ctx, user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users without associations. No users is an
// empty result, not an error; response shaping is a handler concern.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, email, created_at, updated_at FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.UserID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// ListUsersWithMovies returns all users, each with its association
// list loaded.
func (s *Store) ListUsersWithMovies(ctx context.Context) ([]models.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Movies, err = s.loadMovies(ctx, users[i].ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// UpdateUser applies non-empty name/email as full-field replacements
// and handles the add/remove movie actions. Unrecognized or absent
// actions are no-ops. The whole update is one transaction; a failed
// remove leaves existing associations unchanged.
func (s *Store) UpdateUser(ctx context.Context, userID string, req models.UpdateUserRequest) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var user models.User
	err = tx.QueryRowContext(ctx,
		"SELECT id, user_id, name, email, created_at, updated_at FROM users WHERE user_id = $1",
		userID,
	).Scan(&user.ID, &user.UserID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	user.UpdatedAt = time.Now()

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET name = $1, email = $2, updated_at = $3 WHERE id = $4",
		user.Name, user.Email, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	switch {
	case req.Action == models.ActionAdd && req.IMDBID != "":
		// No uniqueness check: duplicate associations are allowed.
		_, err = tx.ExecContext(ctx,
			"INSERT INTO movies (imdb_id, user_id) VALUES ($1, $2)",
			req.IMDBID, user.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("add movie: %w", err)
		}
	case req.Action == models.ActionRemove && req.IMDBID != "":
		// Deletes exactly one matching row, lowest id first.
		res, err := tx.ExecContext(ctx,
			"DELETE FROM movies WHERE id = (SELECT id FROM movies WHERE user_id = $1 AND imdb_id = $2 ORDER BY id LIMIT 1)",
			user.ID, req.IMDBID,
		)
		if err != nil {
			return nil, fmt.Errorf("remove movie: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("remove movie result: %w", err)
		}
		if affected == 0 {
			return nil, ErrMovieNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return &user, nil
}

// DeleteUser removes the user and all of its movie associations in
// one transaction, or returns ErrUserNotFound.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM users WHERE user_id = $1", userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("select user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM movies WHERE user_id = $1", id); err != nil {
		return fmt.Errorf("delete movies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func (s *Store) loadMovies(ctx context.Context, ownerID int64) ([]models.Movie, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, imdb_id FROM movies WHERE user_id = $1 ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("select movies: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.IMDBID); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
