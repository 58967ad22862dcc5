package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
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

	"github.com/phenobase/phenobase/internal/config"
	"github.com/phenobase/phenobase/internal/domain/genefeature"
	"github.com/phenobase/phenobase/internal/domain/phenopacket"
	"github.com/phenobase/phenobase/internal/domain/publication"
	searchdomain "github.com/phenobase/phenobase/internal/domain/search"
	"github.com/phenobase/phenobase/internal/domain/variant"
	"github.com/phenobase/phenobase/internal/platform/cache"
	"github.com/phenobase/phenobase/internal/platform/db"
	"github.com/phenobase/phenobase/internal/platform/index"
	"github.com/phenobase/phenobase/internal/platform/middleware"
	"github.com/phenobase/phenobase/internal/platform/search"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "phenobase-server",
		Short: "Clinical genetics data browser API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reindexCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
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

			count, err := db.NewMigrator(pool).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
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

			statuses, err := db.NewMigrator(pool).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Build the global search index once and report its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

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

			refresher := index.NewRefresher(logger, cfg.IndexRefreshInterval, cfg.IndexDebounce,
				phenopacket.NewPhenopacketRepoPG(pool),
				variant.NewVariantRepoPG(pool),
				publication.NewPublicationRepoPG(pool),
				genefeature.NewGeneFeatureRepoPG(pool),
			)
			snap, err := refresher.Refresh(ctx)
			if err != nil {
				return fmt.Errorf("index build failed: %w", err)
			}

			fmt.Printf("Indexed %d records:\n", snap.Len())
			for kind, n := range snap.TotalsByKind() {
				fmt.Printf("  %-14s %d\n", kind, n)
			}
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

	// Cursor signing. Development falls back to an ephemeral key, which
	// invalidates outstanding cursors on restart; production requires an
	// explicit secret.
	secret := []byte(cfg.CursorSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := crypto_rand.Read(buf); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate cursor secret")
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Warn().Msg("CURSOR_SECRET not set; using an ephemeral signing key")
	}
	codec := search.NewCursorCodec(secret)

	// Repositories
	packetRepo := phenopacket.NewPhenopacketRepoPG(pool)
	variantRepo := variant.NewVariantRepoPG(pool)
	pubRepo := publication.NewPublicationRepoPG(pool)
	featureRepo := genefeature.NewGeneFeatureRepoPG(pool)

	// Global index
	refresher := index.NewRefresher(logger, cfg.IndexRefreshInterval, cfg.IndexDebounce,
		packetRepo, variantRepo, pubRepo, featureRepo)
	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	if _, err := refresher.Refresh(initCtx); err != nil {
		// Searches degrade until the first successful build.
		logger.Warn().Err(err).Msg("initial index build failed")
	}
	initCancel()

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()
	go refresher.Run(runCtx)

	// Services
	packetSvc := phenopacket.NewService(packetRepo, refresher)
	variantSvc := variant.NewService(variantRepo, refresher)
	pubSvc := publication.NewService(pubRepo, refresher)
	featureSvc := genefeature.NewService(featureRepo, refresher)

	orchestrator := searchdomain.NewOrchestrator(logger, codec, refresher, cfg.QueryTimeout,
		packetSvc, variantSvc, pubSvc, featureSvc)
	responseCache := cache.New(cfg.CacheSize, cfg.CacheTTL)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Identity())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	// Search routes register first so literal /search segments take
	// precedence over the :id routes below.
	searchdomain.NewHandler(orchestrator, responseCache).RegisterRoutes(apiV1)
	phenopacket.NewHandler(packetSvc).RegisterRoutes(apiV1)
	variant.NewHandler(variantSvc).RegisterRoutes(apiV1)
	publication.NewHandler(pubSvc).RegisterRoutes(apiV1)
	genefeature.NewHandler(featureSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
