package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"

	"pyrostat/app"
	"pyrostat/domain/gamma"
	"pyrostat/domain/ros"
	"pyrostat/models"
	"pyrostat/ports"
)

// Server represents the web server for the pyrostat UI
type Server struct {
	router        *gin.Engine
	templates     *template.Template
	embeddedFiles embed.FS

	explorer *ExplorerController
	fits     *app.FitService     // nil when no data file is configured
	runs     ports.RunRepository // nil without a run ledger

	dataFile    string
	sampleOpts  ports.SampleOptions
	fitsEnabled bool
}

// NewServer creates a new web server instance
func NewServer(embeddedFiles embed.FS) *Server {
	return &Server{
		router:        gin.Default(),
		embeddedFiles: embeddedFiles,
	}
}

// Initialize sets up the server with dependencies. fits and runs may be
// nil; the corresponding pages degrade to an explanatory empty state.
func (s *Server) Initialize(explorer *ExplorerController, fits *app.FitService, runs ports.RunRepository, dataFile string, opts ports.SampleOptions, fitsEnabled bool) error {
	s.explorer = explorer
	s.fits = fits
	s.runs = runs
	s.dataFile = dataFile
	s.sampleOpts = opts
	s.fitsEnabled = fitsEnabled

	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
		"f2":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"f3":  func(v float64) string { return fmt.Sprintf("%.3f", v) },
		"deref": func(p *float64) float64 {
			if p == nil {
				return 0
			}
			return *p
		},
	}

	templatesFS, err := fs.Sub(s.embeddedFiles, "ui/templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}
	s.templates, err = template.New("").Funcs(funcMap).ParseFS(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return nil
}

// setupMiddleware serves static assets from the embedded filesystem
func (s *Server) setupMiddleware() {
	staticFS, err := fs.Sub(s.embeddedFiles, "ui/static")
	if err != nil {
		log.Printf("[Static] Error creating static filesystem: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/explorer", s.handleExplorer)
	s.router.GET("/models", s.handleModels)
	s.router.GET("/runs", s.handleRuns)

	s.router.GET("/api/explorer/state", s.handleExplorerState)
	s.router.GET("/api/dataset/info", s.handleDatasetInfo)
	s.router.POST("/api/fit", s.handleFit)
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting pyrostat UI on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	c.Header("Content-Type", "text/html")
	if err := s.templates.ExecuteTemplate(c.Writer, templateName, data); err != nil {
		log.Printf("Template error: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, "index.html", gin.H{
		"Models":      ros.Catalog(),
		"FitsEnabled": s.fitsEnabled,
		"DataFile":    s.dataFile,
		"HasLedger":   s.runs != nil,
	})
}

// handleExplorer serves the Gamma exceedance explorer page with the
// current published state baked in
func (s *Server) handleExplorer(c *gin.Context) {
	state := s.explorer.State()
	s.renderTemplate(c, "explorer.html", gin.H{
		"State":     state,
		"Threshold": s.explorer.Threshold(),
		"MeanMin":   gamma.MeanMin,
		"MeanMax":   gamma.MeanMax,
		"ShapeMin":  gamma.ShapeMin,
		"ShapeMax":  gamma.ShapeMax,
		"Step":      gamma.Step,
	})
}

// handleExplorerState is the reactive endpoint behind the sliders: every
// slider change lands here and triggers one recompute-and-render pass
func (s *Server) handleExplorerState(c *gin.Context) {
	params := s.explorer.State().Params
	if v, err := strconv.ParseFloat(c.Query("mean"), 64); err == nil {
		params.Mean = v
	}
	if v, err := strconv.ParseFloat(c.Query("shape"), 64); err == nil {
		params.Shape = v
	}

	state, err := s.explorer.SetParams(params)
	if err != nil {
		// The previous render stays visible client-side.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "state": state})
		return
	}
	c.JSON(http.StatusOK, state)
}

// modelCard pairs a model spec with its rendered narrative
type modelCard struct {
	Spec      ros.ModelSpec
	Narrative template.HTML
}

func (s *Server) handleModels(c *gin.Context) {
	cards := make([]modelCard, 0, len(ros.Catalog()))
	for _, spec := range ros.Catalog() {
		rendered := markdown.ToHTML([]byte(spec.Narrative), nil, nil)
		cards = append(cards, modelCard{Spec: spec, Narrative: template.HTML(rendered)})
	}
	s.renderTemplate(c, "models.html", gin.H{
		"Cards":       cards,
		"FitsEnabled": s.fitsEnabled,
	})
}

func (s *Server) handleRuns(c *gin.Context) {
	var runs []*models.FitRun
	if s.runs != nil {
		var err error
		runs, err = s.runs.ListRuns(c.Request.Context(), 50)
		if err != nil {
			log.Printf("[Runs] Failed to list runs: %v", err)
		}
	}
	s.renderTemplate(c, "runs.html", gin.H{
		"Runs":      runs,
		"HasLedger": s.runs != nil,
	})
}

func (s *Server) handleDatasetInfo(c *gin.Context) {
	if s.fits == nil || s.dataFile == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data file configured"})
		return
	}
	overview, err := s.fits.Overview(c.Request.Context(), s.dataFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, overview)
}

type fitRequest struct {
	Model string `json:"model" form:"model"`
}

func (s *Server) handleFit(c *gin.Context) {
	if !s.fitsEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no sampler configured"})
		return
	}

	var req fitRequest
	if err := c.ShouldBind(&req); err != nil || req.Model == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "model name is required"})
		return
	}

	run, err := s.fits.Fit(c.Request.Context(), app.FitRequest{
		Model:    req.Model,
		DataFile: s.dataFile,
		Options:  s.sampleOpts,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
