package main

import (
	"context"
	"embed"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"pyrostat/adapters/postgres"
	"pyrostat/adapters/sampler"
	"pyrostat/adapters/tabular"
	"pyrostat/app"
	"pyrostat/internal/config"
	"pyrostat/internal/errors"
	"pyrostat/internal/migration"
	"pyrostat/ports"
	"pyrostat/ui"
)

//go:embed ui/templates ui/static
var embeddedFiles embed.FS

// initDatabase connects to the optional run ledger and applies migrations
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The run ledger is optional; without it fits stay in-memory.
	var runRepo ports.RunRepository
	if appConfig.Database.URL != "" {
		db, err := initDatabase(appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		runRepo = postgres.NewRunRepository(db)
		log.Println("Run ledger initialized")
	} else {
		log.Println("No DATABASE_URL configured, fit runs will not be persisted")
	}

	// The external sampler is optional; without it the model pages are
	// read-only.
	var engine ports.Sampler
	if appConfig.Sampler.Binary != "" {
		engine, err = sampler.NewExternalEngine(appConfig.Sampler.Binary)
		if err != nil {
			log.Fatalf("Failed to initialize sampler: %v", err)
		}
		log.Printf("Using inference engine: %s", engine.Engine())
	}

	var fitService *app.FitService
	if appConfig.Data.File != "" {
		fitService = app.NewFitService(tabular.NewDataReader(), engine, runRepo, appConfig.Explorer.Threshold)
		log.Printf("Using observation table: %s", appConfig.Data.File)
	} else {
		log.Println("No DATA_FILE configured, dataset and fit endpoints disabled")
	}
	fitsEnabled := fitService != nil && engine != nil

	explorer, err := ui.NewExplorerController(appConfig.Explorer.Threshold)
	if err != nil {
		log.Fatalf("Failed to initialize explorer: %v", err)
	}

	server := ui.NewServer(embeddedFiles)
	sampleOpts := ports.SampleOptions{
		Chains:     appConfig.Sampler.Chains,
		Iterations: appConfig.Sampler.Iterations,
		Seed:       appConfig.Sampler.Seed,
	}
	if err := server.Initialize(explorer, fitService, runRepo, appConfig.Data.File, sampleOpts, fitsEnabled); err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	log.Printf("Starting pyrostat server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
