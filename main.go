// main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gewnthar/flightdelay/config"
	"github.com/gewnthar/flightdelay/database"
	"github.com/gewnthar/flightdelay/datasource"
	"github.com/gewnthar/flightdelay/encoder"
	"github.com/gewnthar/flightdelay/handlers"
	"github.com/gewnthar/flightdelay/services"
	"golang.org/x/time/rate"
)

func main() {
	log.Println("Starting Flight Delay Prediction API...")

	configPath := config.FindConfigPath()
	if configPath == "" {
		log.Println("No config.yaml found, using defaults and environment variables.")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, dataset: %s (%s), tolerance: %ds",
		cfg.Server.Port, cfg.Dataset.Path, cfg.Dataset.Format, cfg.Tolerance())

	var db *sql.DB
	if cfg.Database.Enabled() {
		db, err = database.Open(cfg.Database)
		if err != nil {
			log.Fatalf("Error initializing database: %v", err)
		}
		defer database.Close(db)
	}

	deps := handlers.Deps{}

	var source services.RecordSource
	switch cfg.Dataset.Format {
	case config.FormatCSV:
		source = datasource.NewCSVSource(cfg.Dataset.Path)
	case config.FormatMySQL:
		source = database.NewFlightStore(db)
	default:
		source = datasource.NewNDJSONSource(cfg.Dataset.Path)
	}
	delays, err := services.NewDelayService(source, cfg.Tolerance())
	if err != nil {
		log.Fatalf("Error creating delay service: %v", err)
	}
	deps.Delays = delays
	log.Printf("Delay predictions served from %s", delays.SourceName())

	if cfg.Encodings.Path != "" {
		enc, err := encoder.LoadFile(cfg.Encodings.Path)
		if err != nil {
			// The prediction endpoint does not need the table, so keep serving.
			log.Printf("WARN: airport encodings unavailable: %v", err)
		} else {
			deps.Encoder = enc
		}
	}

	var importer services.FlightImporter
	var versions services.VersionLogger
	if db != nil {
		deps.DB = db
		versionStore := database.NewVersionStore(db)
		deps.Versions = versionStore
		versions = versionStore
		if cfg.Dataset.Format == config.FormatMySQL {
			importer = database.NewFlightStore(db)
		}
	}
	deps.Refresher = services.NewDatasetRefresher(cfg.Refresh, cfg.Dataset, importer, versions)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handlers.New(deps).Routes(limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("ERROR: graceful shutdown failed: %v", err)
	}
}
