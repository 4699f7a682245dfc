package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hiremind/backend/config"
	"github.com/hiremind/backend/logger"
	"github.com/hiremind/backend/storage"
)

const app = "hiremind"

var (
	// Used for flags.
	cfgFile   string
	debugFlag bool
	jsonFlag  bool

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hiremind serves resume parsing and skill-clustered job recommendations",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a YAML config file (default is $"+config.ConfigFileEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonFlag, "json", "j", false, "json format for logging")
}

// loadConfig layers .env, the config file and env vars, then the CLI flags on top
func loadConfig() (*config.Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	path := cfgFile
	if path == "" {
		path = os.Getenv(config.ConfigFileEnv)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Debug = cfg.Debug || debugFlag
	cfg.LogJSON = cfg.LogJSON || jsonFlag

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// backends holds the persistence layer selected by configuration
type backends struct {
	store storage.Store
	files storage.FileStore
}

func (b *backends) Close() {
	if b.files != nil {
		_ = b.files.Close()
	}
	if b.store != nil {
		_ = b.store.Close()
	}
}

func openBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{}

	switch cfg.StoreBackend {
	case config.StoreSQLite:
		store, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.store = store
	default:
		store, err := storage.NewFirestoreStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.store = store
	}
	log.Info("record store ready", zap.String("backend", cfg.StoreBackend))

	switch cfg.FileBackend {
	case config.FilesLocal:
		files, err := storage.NewLocalFileStore(cfg.UploadDir)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.files = files
	default:
		files, err := storage.NewCloudFileStore(ctx, cfg)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.files = files
	}
	log.Info("file store ready", zap.String("backend", cfg.FileBackend))

	return b, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return log, nil
}
