// Package app wires the service together and manages its lifecycle:
// configuration, logging, telemetry, the upstream clients, the
// processing pipeline and the HTTP server. Infrastructure components
// start first; the pipeline and routes are wired once telemetry is
// live so metric instruments exist before the first request.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/skillsenselab/jobhunt/internal/api"
	"github.com/skillsenselab/jobhunt/internal/component"
	"github.com/skillsenselab/jobhunt/internal/config"
	"github.com/skillsenselab/jobhunt/internal/extract"
	"github.com/skillsenselab/jobhunt/internal/llm"
	"github.com/skillsenselab/jobhunt/internal/llm/gemini"
	"github.com/skillsenselab/jobhunt/internal/logger"
	"github.com/skillsenselab/jobhunt/internal/observability"
	"github.com/skillsenselab/jobhunt/internal/pipeline"
	"github.com/skillsenselab/jobhunt/internal/server"
	"github.com/skillsenselab/jobhunt/internal/sheets"
	"github.com/skillsenselab/jobhunt/internal/transcription"
	"github.com/skillsenselab/jobhunt/internal/transcription/assemblyai"
	"github.com/skillsenselab/jobhunt/internal/version"
)

// App holds the assembled service.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	version string

	registry  *component.Registry
	telemetry *observability.Telemetry
	srv       *server.Server
	sheets    *sheets.Client

	summary         *Summary
	gracefulTimeout time.Duration
}

// New validates the configuration, initializes logging and constructs
// every component. Nothing is started yet; Run drives the lifecycle.
// A missing upstream API key fails here, before the server ever binds.
func New(cfg *config.Config) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	logger.Init(cfg.Logging)

	ver := cfg.Version
	if ver == "" {
		ver = version.GetVersionInfo().Version
	}

	a := &App{
		cfg:             cfg,
		log:             logger.GetGlobalLogger(),
		version:         ver,
		registry:        component.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
	}

	a.telemetry = observability.NewTelemetry(cfg.Observability, observability.Identity{
		Name:        cfg.Name,
		Version:     ver,
		Environment: cfg.Environment,
	})

	sheetsClient, err := sheets.New(cfg.Sheets)
	if err != nil {
		return nil, err
	}
	a.sheets = sheetsClient

	a.srv = server.New(cfg.Server)

	// Registration order is start order. The server goes last so the
	// listener only opens once everything it depends on is up.
	if err := a.registry.Register(a.telemetry); err != nil {
		return nil, err
	}
	if err := a.registry.Register(newSheetsComponent(sheetsClient, cfg.Sheets)); err != nil {
		return nil, err
	}
	if err := a.registry.Register(server.NewComponent(a.srv)); err != nil {
		return nil, err
	}

	a.summary = NewSummary(cfg.Name, ver)
	return a, nil
}

// Run executes the full lifecycle: start components, wire the pipeline
// and routes, display the startup summary, block until a shutdown
// signal, then stop everything gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.log.Info("Application ready, waiting for shutdown signal")
	a.waitForSignal(ctx)

	return a.stop()
}

// startup performs the two bootstrap phases and prints the summary.
func (a *App) startup(ctx context.Context) error {
	start := time.Now()

	a.log.Info("Starting application", map[string]interface{}{
		"name":        a.cfg.Name,
		"version":     a.version,
		"environment": a.cfg.Environment,
	})

	// Phase 1: infrastructure.
	if err := a.registry.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	// Phase 2: business wiring.
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.readyCheck(ctx); err != nil {
		a.log.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.summary.SetStartupDuration(time.Since(start))
	a.summary.Display(a.registry)
	return nil
}

// configure wires the transcription, extraction and append stages into
// the pipeline and registers all HTTP routes. It runs after StartAll so
// the telemetry instruments it hands out are live.
func (a *App) configure(_ context.Context) error {
	transcribers := transcription.NewRegistry()
	transcribers.RegisterFactory(assemblyai.ProviderName, assemblyai.Factory())
	transcriber, err := transcribers.Create(a.cfg.Transcription.Provider, a.cfg.Transcription.Options())
	if err != nil {
		return fmt.Errorf("create transcription provider: %w", err)
	}

	llms := llm.NewRegistry()
	llms.RegisterFactory(gemini.ProviderName, gemini.Factory())
	llmProvider, err := llms.Create(a.cfg.LLM.Provider, a.cfg.LLM.Options())
	if err != nil {
		return fmt.Errorf("create llm provider: %w", err)
	}

	extractor := extract.New(llmProvider)
	proc := pipeline.New(transcriber, extractor, a.sheets, a.telemetry.Metrics())

	a.srv.ApplyMiddleware()
	handler := api.New(config.ServiceName, proc, a.telemetry.Metrics(), a.cfg.Server.MaxBodySize, a.cfg.Server.WebDir)
	handler.RegisterRoutes(a.srv.GinEngine())
	a.srv.RegisterDefaultEndpoints(config.ServiceName, a.cfg.Environment, a.registry.HealthAll)

	a.summary.TrackBusiness("pipeline", "service", []string{
		a.cfg.Transcription.Provider, a.cfg.LLM.Provider, "sheets",
	})
	a.summary.TrackBusiness("extractor", "service", []string{a.cfg.LLM.Provider})
	a.summary.TrackClient(a.cfg.Transcription.Provider, transcriptionTarget(a.cfg), "transcription")
	a.summary.TrackClient(a.cfg.LLM.Provider, llmTarget(a.cfg), "llm")
	a.summary.TrackClient("sheets", sheetsTarget(a.cfg), "spreadsheet")

	return nil
}

// readyCheck reports components that failed to come up. Components that
// initialize lazily report degraded until first use, which is expected
// and not flagged here.
func (a *App) readyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.registry.HealthAll(ctx) {
		if h.Status != component.StatusUnhealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// waitForSignal blocks until an interrupt or term signal, or until the
// context is canceled.
func (a *App) waitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.log.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
	case <-ctx.Done():
		a.log.Info("Context canceled, shutting down")
	}
}

// stop shuts down all components in reverse order within the graceful
// timeout.
func (a *App) stop() error {
	a.log.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	if err := a.registry.StopAll(ctx); err != nil {
		a.log.Error("Shutdown completed with errors", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	a.log.Info("Application shutdown complete")
	return nil
}

func transcriptionTarget(cfg *config.Config) string {
	if cfg.Transcription.BaseURL != "" {
		return cfg.Transcription.BaseURL
	}
	return "api.assemblyai.com"
}

func llmTarget(cfg *config.Config) string {
	if cfg.LLM.BaseURL != "" {
		return cfg.LLM.BaseURL
	}
	return "generativelanguage.googleapis.com"
}

func sheetsTarget(cfg *config.Config) string {
	if cfg.Sheets.SpreadsheetID != "" {
		return "spreadsheet " + cfg.Sheets.SpreadsheetID
	}
	return "spreadsheet " + strings.TrimSpace(cfg.Sheets.SpreadsheetName)
}
