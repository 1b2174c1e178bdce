package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/edvin/valo-customs/internal/henrik"
	"github.com/edvin/valo-customs/internal/matchdetect"
	"github.com/edvin/valo-customs/internal/store"
	"github.com/edvin/valo-customs/internal/web"
)

func main() {
	log := logrus.New()

	// Optional .env file for local development
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded configuration from .env")
	}

	// Configuration from environment
	port := getEnv("PORT", "8080")
	dbPath := getEnv("DATABASE_PATH", "./data/customs.db")
	apiKey := getEnv("HENRIK_API_KEY", "")
	baseURL := getEnv("HENRIK_BASE_URL", "")
	region := getEnv("VAL_REGION", "eu")
	queueName := getEnv("CUSTOM_QUEUE_NAME", matchdetect.DefaultCustomQueueName)
	actorID := getEnv("ACTOR_ID", "valo-customs")

	staleness := getDuration(log, "STALENESS_WINDOW", matchdetect.DefaultStalenessWindow)
	httpTimeout := getDuration(log, "HTTP_TIMEOUT", 10*time.Second)

	if apiKey == "" {
		log.Warn("HENRIK_API_KEY not set. Match validation will not work.")
	}

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize store
	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize the match API client
	opts := []henrik.Option{henrik.WithTimeout(httpTimeout)}
	if baseURL != "" {
		opts = append(opts, henrik.WithBaseURL(baseURL))
	}
	client := henrik.NewClient(apiKey, opts...)

	// Initialize detection pipeline
	validator := matchdetect.NewValidator(client, matchdetect.ValidatorConfig{
		Region:          region,
		QueueName:       queueName,
		StalenessWindow: staleness,
	}, log)
	detector := matchdetect.NewDetector(db, validator, actorID, log)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the detector
	go detector.Run(ctx)

	// Initialize web server
	server := web.NewServer(db, detector, log)

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: server,
	}

	// Handle shutdown signals
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Info("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("HTTP server shutdown error: %v", err)
		}
	}()

	log.Infof("Server running on http://localhost:%s", port)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}

	log.Info("Server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(log *logrus.Logger, key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warnf("Invalid %s %q, using %v", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
