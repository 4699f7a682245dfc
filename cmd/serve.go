package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hiremind/backend/agent"
	"github.com/hiremind/backend/auth"
	_ "github.com/hiremind/backend/docs"
	"github.com/hiremind/backend/gemini"
	"github.com/hiremind/backend/handlers"
	"github.com/hiremind/backend/linkedin"
	"github.com/hiremind/backend/mcp"
	"github.com/hiremind/backend/metrics"
	"github.com/hiremind/backend/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(_ *cobra.Command, _ []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	m := metrics.NewManager(metrics.WithNamespace(app))

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		log.Error("initializing storage", zap.Error(err))
		return err
	}
	defer b.Close()

	generators, err := gemini.NewProvider(ctx, cfg, log)
	if err != nil {
		log.Error("initializing gemini", zap.Error(err))
		return err
	}
	defer generators.Close()

	cipher, err := auth.NewKeyCipher(cfg)
	if err != nil {
		return err
	}

	source := linkedin.NewClient(cfg, log, m)
	jobAgent := agent.NewJobAgent(cfg, source, log, m)

	registry := tools.NewToolRegistry(
		tools.NewSearchListingsTool(source),
		tools.NewJobDetailsTool(source),
		tools.NewClusterSkillsTool(generators, log, m),
	)

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:     cfg,
		Logger:     log,
		Metrics:    m,
		Store:      b.store,
		Files:      b.files,
		Source:     source,
		Agent:      jobAgent,
		Generators: generators,
		Google:     auth.NewGoogleAuthService(cfg),
		JWT:        auth.NewJWTService(cfg),
		Cipher:     cipher,
		MCP:        mcp.NewServer(registry, handlers.Version, log),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("version", handlers.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		return err
	case <-quit:
	}

	log.Info("shutting down server")

	// outstanding requests get 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("server exited gracefully")
	return nil
}
