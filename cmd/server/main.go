// @title           EditDesk API
// @version         1.0.0
// @description     Backend API for the video editing marketplace: clients submit projects, editors claim
// @description     and deliver them, admins assign and oversee.

// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/config"
	"editdesk-backend/internal/database"
	"editdesk-backend/internal/handlers"
	"editdesk-backend/internal/memstore"
	"editdesk-backend/internal/middleware"
	"editdesk-backend/internal/observ"
	"editdesk-backend/internal/policy"
	"editdesk-backend/internal/supabase"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "editdesk",
		Short: "EditDesk backend API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file; environment variables take precedence")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema, triggers and row-level security policies to DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), envFile)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("editdesk version %s (build: %s)\n", Version, BuildTime)
		},
	})

	return cmd
}

func setup(envFile string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := observ.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func migrate(ctx context.Context, envFile string) error {
	cfg, logger, err := setup(envFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required to run migrations")
	}

	migrator, err := database.NewMigrator(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	applied, err := migrator.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("migrations complete", zap.Strings("applied", applied))
	return nil
}

// openStore builds the configured DataStore. The returned opener is non-nil
// only for the in-memory store, which serves its own signed links.
func openStore(cfg *config.Config, logger *zap.Logger) (access.DataStore, handlers.ObjectOpener, error) {
	switch cfg.DataStore {
	case config.StoreMemory:
		mem := memstore.New(cfg.SupabaseJWTSecret,
			memstore.WithPublicURL(cfg.PublicAPIURL()),
			memstore.WithProfileTrigger(),
			memstore.WithLogger(logger.Named("memstore")),
		)
		if cfg.SeedFile != "" {
			seed, err := memstore.LoadSeed(cfg.SeedFile)
			if err != nil {
				return nil, nil, err
			}
			if err := mem.Apply(seed); err != nil {
				return nil, nil, fmt.Errorf("failed to apply seed %s: %w", cfg.SeedFile, err)
			}
			logger.Info("seed applied", zap.String("file", cfg.SeedFile),
				zap.Int("users", len(seed.Users)), zap.Int("projects", len(seed.Projects)))
		}
		return mem, mem, nil
	default:
		store, err := supabase.NewStore(cfg, logger.Named("supabase"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
		}
		return store, nil, nil
	}
}

func serve(ctx context.Context, envFile string) error {
	cfg, logger, err := setup(envFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, opener, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	enforcer, err := policy.NewEnforcer(logger.Named("policy"))
	if err != nil {
		return fmt.Errorf("failed to load transition policy: %w", err)
	}

	layer := access.NewLayer(store, enforcer, logger.Named("access"), access.Options{
		RedirectURL:  cfg.AuthRedirectURL,
		SignedURLTTL: cfg.SignedURLTTL,
	})

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware())
	handlers.RegisterRoutes(router, cfg, layer, opener)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("store", store.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
