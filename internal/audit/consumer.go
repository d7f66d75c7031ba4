package audit

import (
	"database/sql"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/CoolCoder0110/Movie-API/pkg/models"
)

// Consumer records watchlist events into the audit log.
type Consumer struct {
	DB *sql.DB
}

// NewConsumer creates a new audit consumer.
func NewConsumer(db *sql.DB) *Consumer {
	return &Consumer{DB: db}
}

// HandleMessage processes one watchlist event. Events are recorded at
// most once: redelivered event ids are acked and skipped.
func (c *Consumer) HandleMessage(delivery amqp.Delivery) error {
	var event models.WatchlistEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		log.Printf("[Audit] Failed to unmarshal event: %v correlation_id=%s", err, delivery.CorrelationId)
		return err
	}

	log.Printf("[Audit] Processing event: type=%s event_id=%s correlation_id=%s user_id=%s",
		event.EventType, event.EventID, event.CorrelationID, event.UserID)

	// Idempotency check
	var exists bool
	err := c.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM idempotency_keys WHERE event_id = $1)", event.EventID).Scan(&exists)
	if err != nil {
		log.Printf("[Audit] Error checking idempotency: %v correlation_id=%s", err, event.CorrelationID)
		return err
	}
	if exists {
		log.Printf("[Audit] Duplicate event ignored: event_id=%s correlation_id=%s", event.EventID, event.CorrelationID)
		return nil // Already recorded — ack it
	}

	_, err = c.DB.Exec(
		`INSERT INTO audit_log (event_id, correlation_id, event_type, user_id, action, imdb_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.EventID, event.CorrelationID, string(event.EventType),
		event.UserID, event.Action, event.IMDBID,
	)
	if err != nil {
		log.Printf("[Audit] Error writing audit log: %v correlation_id=%s", err, event.CorrelationID)
		return err
	}

	// Record idempotency key
	_, _ = c.DB.Exec("INSERT INTO idempotency_keys (event_id) VALUES ($1) ON CONFLICT DO NOTHING", event.EventID)

	log.Printf("[Audit] Recorded: event_id=%s type=%s user_id=%s correlation_id=%s",
		event.EventID, event.EventType, event.UserID, event.CorrelationID)

	return nil
}
