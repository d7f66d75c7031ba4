package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CoolCoder0110/Movie-API/internal/api"
	"github.com/CoolCoder0110/Movie-API/internal/enrich"
	"github.com/CoolCoder0110/Movie-API/internal/omdb"
	"github.com/CoolCoder0110/Movie-API/internal/store"
	"github.com/CoolCoder0110/Movie-API/pkg/config"
	"github.com/CoolCoder0110/Movie-API/pkg/metrics"
	"github.com/CoolCoder0110/Movie-API/pkg/postgres"
	"github.com/CoolCoder0110/Movie-API/pkg/rabbitmq"

	_ "github.com/CoolCoder0110/Movie-API/docs"
)

// @title           Movie API
// @version         1.0
// @description     Stores users with IMDb-identified movie lists and enriches them on read via OMDb.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[API] Starting api-service...")

	cfg := config.Load()

	// Connect to PostgreSQL
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := postgres.RunMigrations(db, "api"); err != nil {
		log.Fatalf("[API] Failed to run migrations: %v", err)
	}

	// Event publishing is optional: the API runs without a broker.
	var publisher api.EventPublisher
	if cfg.RabbitMQURL != "" {
		rmqConn, err := rabbitmq.Connect(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to RabbitMQ: %v", err)
		}
		defer rmqConn.Close()

		pub, err := rabbitmq.NewPublisher(rmqConn)
		if err != nil {
			log.Fatalf("[API] Failed to create publisher: %v", err)
		}
		defer pub.Close()
		publisher = pub
	} else {
		log.Println("[API] RABBITMQ_URL not set, event publishing disabled")
	}

	// Standalone metrics exposition on its own port
	go metrics.Serve(cfg.MetricsPort)

	// OMDb client, enrichment, persistence, handlers
	client := omdb.NewClient(cfg.OMDBAPIURL, cfg.OMDBAPIKey, &http.Client{Timeout: cfg.OMDBTimeout})
	handler := api.NewUserHandler(store.New(db), enrich.New(client), publisher)
	router := api.NewRouter(handler)

	// HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Listening on port %s", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[API] Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[API] Server forced to shutdown: %v", err)
	}
	log.Println("[API] Server exited gracefully")
}
