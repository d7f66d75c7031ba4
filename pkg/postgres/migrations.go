package postgres

import (
	"database/sql"
	"log"
)

// RunMigrations executes database migrations for the given service.
func RunMigrations(db *sql.DB, service string) error {
	migrations := getServiceMigrations(service)
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Printf("Migrations completed for service: %s", service)
	return nil
}

func getServiceMigrations(service string) []string {
	api := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(100) NOT NULL UNIQUE,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		// No uniqueness on (user_id, imdb_id): duplicate associations
		// per user are allowed. Orphan rows are prevented by the FK;
		// cascade deletion is done explicitly by the store.
		`CREATE TABLE IF NOT EXISTS movies (
			id SERIAL PRIMARY KEY,
			imdb_id VARCHAR(20) NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id)
		)`,
	}

	audit := []string{
		`CREATE TABLE IF NOT EXISTS audit_log (
			id SERIAL PRIMARY KEY,
			event_id VARCHAR(36) NOT NULL,
			correlation_id VARCHAR(36),
			event_type VARCHAR(50) NOT NULL,
			user_id VARCHAR(100) NOT NULL,
			action VARCHAR(20),
			imdb_id VARCHAR(20),
			recorded_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS idempotency_keys (
			event_id VARCHAR(36) PRIMARY KEY,
			processed_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
	}

	switch service {
	case "audit":
		return audit
	default:
		return api
	}
}
