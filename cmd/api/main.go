package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
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
	"pyrostat/models"
	"pyrostat/ports"
	"pyrostat/ui"
)

// apiServer is the headless JSON surface: the same explorer and fit
// operations the web UI exposes, without templates or static assets.
type apiServer struct {
	router   *chi.Mux
	explorer *ui.ExplorerController
	fits     *app.FitService
	runs     ports.RunRepository

	dataFile   string
	sampleOpts ports.SampleOptions
}

func newAPIServer(explorer *ui.ExplorerController, fits *app.FitService, runs ports.RunRepository, dataFile string, opts ports.SampleOptions) *apiServer {
	s := &apiServer{
		router:     chi.NewRouter(),
		explorer:   explorer,
		fits:       fits,
		runs:       runs,
		dataFile:   dataFile,
		sampleOpts: opts,
	}

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/explorer/state", s.handleExplorerState)
	s.router.Get("/api/models", s.handleModels)
	s.router.Get("/api/dataset/info", s.handleDatasetInfo)
	s.router.Get("/api/runs", s.handleRuns)
	s.router.Get("/api/runs/{id}", s.handleGetRun)
	s.router.Post("/api/fit", s.handleFit)

	return s
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":          "ok",
		"explorer_status": s.explorer.Status(),
	})
}

func (s *apiServer) handleExplorerState(w http.ResponseWriter, r *http.Request) {
	params := s.explorer.State().Params
	if v, err := strconv.ParseFloat(r.URL.Query().Get("mean"), 64); err == nil {
		params.Mean = v
	}
	if v, err := strconv.ParseFloat(r.URL.Query().Get("shape"), 64); err == nil {
		params.Shape = v
	}

	state, err := s.explorer.SetParams(params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *apiServer) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ros.Catalog())
}

func (s *apiServer) handleDatasetInfo(w http.ResponseWriter, r *http.Request) {
	if s.fits == nil || s.dataFile == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no data file configured"})
		return
	}
	overview, err := s.fits.Overview(r.Context(), s.dataFile)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no run ledger configured"})
		return
	}
	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*models.FitRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no run ledger configured"})
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return
	}
	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

type fitRequest struct {
	Model string `json:"model"`
}

func (s *apiServer) handleFit(w http.ResponseWriter, r *http.Request) {
	if s.fits == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no sampler configured"})
		return
	}

	var req fitRequest
	if err := decodeJSON(r, &req); err != nil || req.Model == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "model name is required"})
		return
	}

	run, err := s.fits.Fit(r.Context(), app.FitRequest{
		Model:    req.Model,
		DataFile: s.dataFile,
		Options:  s.sampleOpts,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
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

	var engine ports.Sampler
	if appConfig.Sampler.Binary != "" {
		engine, err = sampler.NewExternalEngine(appConfig.Sampler.Binary)
		if err != nil {
			log.Fatalf("Failed to initialize sampler: %v", err)
		}
	}

	var fitService *app.FitService
	if appConfig.Data.File != "" && engine != nil {
		fitService = app.NewFitService(tabular.NewDataReader(), engine, runRepo, appConfig.Explorer.Threshold)
	}

	explorer, err := ui.NewExplorerController(appConfig.Explorer.Threshold)
	if err != nil {
		log.Fatalf("Failed to initialize explorer: %v", err)
	}

	server := newAPIServer(explorer, fitService, runRepo, appConfig.Data.File, ports.SampleOptions{
		Chains:     appConfig.Sampler.Chains,
		Iterations: appConfig.Sampler.Iterations,
		Seed:       appConfig.Sampler.Seed,
	})

	log.Printf("Starting pyrostat API server on port %s", appConfig.Server.Port)
	log.Fatal(http.ListenAndServe(":"+appConfig.Server.Port, server.router))
}
