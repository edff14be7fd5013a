package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carechart/carechart/internal/config"
	"github.com/carechart/carechart/internal/domain/access"
	"github.com/carechart/carechart/internal/domain/consultation"
	"github.com/carechart/carechart/internal/domain/identity"
	"github.com/carechart/carechart/internal/domain/record"
	"github.com/carechart/carechart/internal/domain/summary"
	"github.com/carechart/carechart/internal/platform/auth"
	"github.com/carechart/carechart/internal/platform/db"
	"github.com/carechart/carechart/internal/platform/middleware"
	"github.com/carechart/carechart/internal/platform/summarizer"
)

func main() {
	root := &cobra.Command{
		Use:   "carechart-server",
		Short: "Consultation-gated patient record aggregation and summarization service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}
			fmt.Println("schema applied")
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Summarizer client. A missing credential is tolerated outside
	// production so the rest of the API stays usable; the summary endpoint
	// then reports the configuration problem.
	var summarizerClient summary.Summarizer
	client, err := summarizer.NewClient(summarizer.Config{
		BaseURL: cfg.SummarizerBaseURL,
		Model:   cfg.SummarizerModel,
		APIKey:  cfg.SummarizerAPIKey,
		Timeout: cfg.SummarizerTimeout,
	})
	switch {
	case err == nil:
		summarizerClient = client
	case errors.Is(err, summarizer.ErrMissingAPIKey) && !cfg.IsProduction():
		logger.Warn().Msg("SUMMARIZER_API_KEY not set; summary requests will fail")
		summarizerClient = unconfiguredSummarizer{}
	default:
		logger.Fatal().Err(err).Msg("failed to configure summarizer")
	}

	// Repositories
	identityRepo := identity.NewRepoPG(pool)
	consultationRepo := consultation.NewRepoPG(pool)
	vitalStore := record.NewVitalRepoPG(pool)
	noteStore := record.NewNoteRepoPG(pool)
	fileStore := record.NewFileRepoPG(pool)
	prescriptionStore := record.NewPrescriptionRepoPG(pool)

	// Core services
	registry := consultation.NewRegistry(consultationRepo)
	guard := access.NewGuard(registry)
	aggregator := record.NewAggregator(vitalStore, noteStore, fileStore, prescriptionStore)
	summaryService := summary.NewService(summarizerClient, aggregator, identityRepo)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/healthz", db.HealthHandler(pool))

	// Auth middleware
	api := e.Group("/api/v1")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}
	api.Use(middleware.Audit(logger))

	// Routes
	consultation.NewHandler(registry, identityRepo).RegisterRoutes(api)
	record.NewHandler(guard, aggregator, vitalStore, noteStore, fileStore, prescriptionStore).RegisterRoutes(api)
	summary.NewHandler(guard, summaryService).RegisterRoutes(api)

	// Serve with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped cleanly")
	return nil
}

// unconfiguredSummarizer stands in when no API key is configured outside
// production. It reports the configuration problem distinctly from a
// summarizer-side failure.
type unconfiguredSummarizer struct{}

func (unconfiguredSummarizer) Summarize(ctx context.Context, req summary.Request) (string, error) {
	return "", summary.ErrNotConfigured
}
