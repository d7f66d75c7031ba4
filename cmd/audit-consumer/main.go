package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/CoolCoder0110/Movie-API/internal/audit"
	"github.com/CoolCoder0110/Movie-API/pkg/config"
	"github.com/CoolCoder0110/Movie-API/pkg/postgres"
	"github.com/CoolCoder0110/Movie-API/pkg/rabbitmq"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[Audit] Starting audit-consumer...")

	cfg := config.Load()
	if cfg.RabbitMQURL == "" {
		log.Fatal("[Audit] RABBITMQ_URL is required")
	}

	// Connect to PostgreSQL
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Audit] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := postgres.RunMigrations(db, "audit"); err != nil {
		log.Fatalf("[Audit] Failed to run migrations: %v", err)
	}

	// Connect to RabbitMQ
	rmqConn, err := rabbitmq.Connect(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("[Audit] Failed to connect to RabbitMQ: %v", err)
	}
	defer rmqConn.Close()

	consumer := audit.NewConsumer(db)

	consumerCfg := rabbitmq.ConsumerConfig{
		QueueName:    "audit.watchlist.events",
		DLQName:      "dlq.audit.watchlist.events",
		RoutingKeys:  []string{"user.created", "user.updated", "user.deleted"},
		ConsumerName: "audit-consumer",
	}

	if err := rabbitmq.SetupConsumer(rmqConn, consumerCfg, consumer.HandleMessage); err != nil {
		log.Fatalf("[Audit] Failed to setup consumer: %v", err)
	}

	log.Println("[Audit] Consumer is running. Waiting for messages...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Audit] Shutting down...")
}
