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

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/config"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/routes"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "healthcare",
	Short: "Multi-agent healthcare assistant API",
	Long: `Serves the healthcare assistant API (greeting, mood, glucose, food,
meal planning and the general assistant) and talks to a running server
from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		logger, err = utils.NewLogger(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg.Database, logger)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
		logger.Info("schema up to date", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	addClientCommands(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg.Database, logger)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	if cfg.Session.Secret == "" {
		secret, err := utils.GenerateRandomToken(48)
		if err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		cfg.Session.Secret = secret
		logger.Warn("JWT_SECRET not set; using an ephemeral secret, sessions end on restart")
	}

	deps := routes.Deps{
		Config: cfg,
		DB:     db,
		Hub:    services.NewRealtimeHub(logger),
		Log:    logger,
	}

	if cfg.LLMEnabled() {
		gemini, err := services.NewGeminiService(ctx, services.GeminiConfig{
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
			Retry: utils.RetryConfig{
				MaxRetries:     cfg.LLM.MaxRetries,
				InitialBackoff: cfg.LLM.InitialBackoff,
				MaxBackoff:     cfg.LLM.MaxBackoff,
			},
		}, logger)
		if err != nil {
			return err
		}
		deps.LLM = gemini
		logger.Info("llm enabled", zap.String("model", cfg.LLM.Model))
	} else {
		logger.Warn("no Gemini API key configured; using rule-based fallbacks")
	}

	if cfg.Cache.RedisAddr != "" {
		rdb := services.NewRedisClient(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		deps.Cache = services.NewRedisAnswerCache(rdb, cfg.Cache.TTL, logger)
	} else {
		deps.Cache = services.NewLRUAnswerCache(cfg.Cache.Size)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
