package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hiremind/backend/storage"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Inspect and clean up stored resume files",
}

var filesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report stored resume files and orphans",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withJanitor(cmd.Context(), func(ctx context.Context, j *storage.FileJanitor) error {
			stats, err := j.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("files: %d, orphaned: %d (%d bytes)\n", stats.TotalFiles, stats.OrphanedFiles, stats.OrphanedBytes)
			for _, key := range stats.Orphans {
				fmt.Println("  " + key)
			}
			return nil
		})
	},
}

var filesCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete resume files no resume record references",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withJanitor(cmd.Context(), func(ctx context.Context, j *storage.FileJanitor) error {
			res, err := j.Cleanup(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("deleted: %d, freed: %d bytes\n", res.Deleted, res.FreedBytes)
			if len(res.Failed) > 0 {
				return fmt.Errorf("failed to delete %d files: %v", len(res.Failed), res.Failed)
			}
			return nil
		})
	},
}

func init() {
	filesCmd.AddCommand(filesStatsCmd, filesCleanupCmd)
	rootCmd.AddCommand(filesCmd)
}

func withJanitor(ctx context.Context, fn func(context.Context, *storage.FileJanitor) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		log.Error("opening backends", zap.Error(err))
		return err
	}
	defer b.Close()

	return fn(ctx, storage.NewFileJanitor(b.files, b.store, log))
}
