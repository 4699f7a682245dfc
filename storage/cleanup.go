package storage

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// FileStats summarizes stored resume files
type FileStats struct {
	TotalFiles    int
	OrphanedFiles int
	OrphanedBytes int64
	Orphans       []string
}

// CleanupResult reports a cleanup run
type CleanupResult struct {
	Deleted    int
	FreedBytes int64
	Failed     []string
}

// FileJanitor finds and removes resume files that no resume record references
type FileJanitor struct {
	files   FileStore
	records ResumePathLister
	logger  *zap.Logger
}

// NewFileJanitor creates a janitor over files and the records referencing them
func NewFileJanitor(files FileStore, records ResumePathLister, logger *zap.Logger) *FileJanitor {
	return &FileJanitor{files: files, records: records, logger: logger.Named("files")}
}

// Stats counts resume files and the orphans among them
func (j *FileJanitor) Stats(ctx context.Context) (*FileStats, error) {
	total, orphans, err := j.scan(ctx)
	if err != nil {
		return nil, err
	}

	stats := &FileStats{TotalFiles: total, OrphanedFiles: len(orphans), Orphans: make([]string, 0, len(orphans))}
	for _, f := range orphans {
		stats.OrphanedBytes += f.Size
		stats.Orphans = append(stats.Orphans, f.Key)
	}
	return stats, nil
}

// Cleanup deletes every orphaned resume file. Individual delete failures are
// collected and do not stop the run.
func (j *FileJanitor) Cleanup(ctx context.Context) (*CleanupResult, error) {
	_, orphans, err := j.scan(ctx)
	if err != nil {
		return nil, err
	}

	result := &CleanupResult{}
	for _, f := range orphans {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := j.files.Delete(ctx, f.Key); err != nil {
			j.logger.Warn("failed to delete orphaned file", zap.String("key", f.Key), zap.Error(err))
			result.Failed = append(result.Failed, f.Key)
			continue
		}
		j.logger.Info("deleted orphaned file", zap.String("key", f.Key), zap.Int64("bytes", f.Size))
		result.Deleted++
		result.FreedBytes += f.Size
	}

	j.logger.Info("cleanup completed",
		zap.Int("deleted", result.Deleted), zap.Int("errors", len(result.Failed)))
	return result, nil
}

func (j *FileJanitor) scan(ctx context.Context) (int, []FileInfo, error) {
	files, err := j.files.List(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("list files: %w", err)
	}
	paths, err := j.records.ListResumePaths(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("list resume records: %w", err)
	}

	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[p] = struct{}{}
	}

	total := 0
	var orphans []FileInfo
	for _, f := range files {
		if !IsResumeFile(f.Key) {
			continue
		}
		total++
		if _, ok := referenced[f.Key]; !ok {
			orphans = append(orphans, f)
		}
	}

	sort.Slice(orphans, func(a, b int) bool { return orphans[a].Key < orphans[b].Key })
	return total, orphans, nil
}
