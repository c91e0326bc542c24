package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"pyrostat/adapters/postgres"
	"pyrostat/adapters/sampler"
	"pyrostat/adapters/tabular"
	"pyrostat/app"
	"pyrostat/domain/ros"
	"pyrostat/internal/config"
	"pyrostat/internal/migration"
	"pyrostat/ports"
)

// cmd/fit runs one model fit from the command line and prints the
// posterior summary table. With --json the full run record is emitted
// instead, suitable for piping into other tools.
func main() {
	model := flag.String("model", "", "model name to fit (see --list)")
	dataFile := flag.String("data", "", "observation table (.csv or .xlsx); defaults to DATA_FILE")
	chains := flag.Int("chains", 0, "number of chains; defaults to SAMPLER_CHAINS")
	iterations := flag.Int("iterations", 0, "post-warmup iterations per chain; defaults to SAMPLER_ITERATIONS")
	seed := flag.Int64("seed", 0, "random seed; defaults to SAMPLER_SEED")
	asJSON := flag.Bool("json", false, "emit the run record as JSON")
	list := flag.Bool("list", false, "list available models and exit")
	flag.Parse()

	if *list {
		for _, spec := range ros.Catalog() {
			fmt.Printf("%-16s %s\n", spec.Name, spec.Title)
		}
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *dataFile == "" {
		*dataFile = appConfig.Data.File
	}
	if *model == "" || *dataFile == "" {
		flag.Usage()
		os.Exit(2)
	}
	if appConfig.Sampler.Binary == "" {
		log.Fatal("SAMPLER_BIN is not configured")
	}

	opts := ports.SampleOptions{
		Chains:     appConfig.Sampler.Chains,
		Iterations: appConfig.Sampler.Iterations,
		Seed:       appConfig.Sampler.Seed,
	}
	if *chains > 0 {
		opts.Chains = *chains
	}
	if *iterations > 0 {
		opts.Iterations = *iterations
	}
	if *seed != 0 {
		opts.Seed = *seed
	}

	engine, err := sampler.NewExternalEngine(appConfig.Sampler.Binary)
	if err != nil {
		log.Fatalf("Failed to initialize sampler: %v", err)
	}

	var runRepo ports.RunRepository
	if appConfig.Database.URL != "" {
		db, err := sqlx.Connect("postgres", appConfig.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := migration.NewRunner().Run(context.Background(), db); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		runRepo = postgres.NewRunRepository(db)
	}

	service := app.NewFitService(tabular.NewDataReader(), engine, runRepo, appConfig.Explorer.Threshold)

	run, err := service.Fit(context.Background(), app.FitRequest{
		Model:    *model,
		DataFile: *dataFile,
		Options:  opts,
	})
	if err != nil {
		log.Fatalf("Fit failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			log.Fatalf("Failed to encode run: %v", err)
		}
		return
	}

	fmt.Printf("Model:        %s\n", run.Model)
	fmt.Printf("Engine:       %s\n", run.Engine)
	fmt.Printf("Data:         %s (%d observations)\n", run.DataSource, run.Observations)
	fmt.Printf("Draws:        %d (%d chains x %d iterations)\n\n", run.DrawCount, run.Chains, run.Iterations)

	fmt.Printf("%-20s %10s %10s %10s %10s %10s\n", "parameter", "mean", "median", "sd", "q5", "q95")
	for _, s := range run.Summaries {
		fmt.Printf("%-20s %10.3f %10.3f %10.3f %10.3f %10.3f\n",
			s.Parameter, s.Mean, s.Median, s.StdDev, s.Q5, s.Q95)
	}

	if run.ExceedanceProb != nil {
		fmt.Printf("\nP(ROS > %.1f) from observed sample: %.1f%%\n",
			appConfig.Explorer.Threshold, *run.ExceedanceProb*100)
	}
	if runRepo != nil {
		fmt.Printf("\nRecorded as run %s\n", run.ID)
	}
}
