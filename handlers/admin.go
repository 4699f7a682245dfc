package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hiremind/backend/models"
	"github.com/hiremind/backend/storage"
)

// AdminHandler exposes stored-file maintenance
type AdminHandler struct {
	responder
	janitor *storage.FileJanitor
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(janitor *storage.FileJanitor, logger *zap.Logger, verbose bool) *AdminHandler {
	return &AdminHandler{
		responder: responder{logger: logger.Named("admin"), verbose: verbose},
		janitor:   janitor,
	}
}

// FileStats reports stored resume files and orphans
// @Summary Stored file statistics
// @Description Count stored resume files and those not referenced by any resume record
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.FileStatsResponse "File statistics"
// @Failure 403 {object} models.ErrorResponse "Admin access required"
// @Router /admin/files/stats [get]
func (h *AdminHandler) FileStats(c *gin.Context) {
	stats, err := h.janitor.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to compute file statistics", err)
		return
	}

	c.JSON(http.StatusOK, models.FileStatsResponse{
		TotalFiles:    stats.TotalFiles,
		OrphanedFiles: stats.OrphanedFiles,
		OrphanedBytes: stats.OrphanedBytes,
		Orphans:       stats.Orphans,
	})
}

// CleanupFiles deletes orphaned resume files
// @Summary Clean up orphaned files
// @Description Delete stored resume files not referenced by any resume record
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.FileCleanupResponse "Cleanup result"
// @Failure 403 {object} models.ErrorResponse "Admin access required"
// @Router /admin/files/cleanup [post]
func (h *AdminHandler) CleanupFiles(c *gin.Context) {
	result, err := h.janitor.Cleanup(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "File cleanup failed", err)
		return
	}

	c.JSON(http.StatusOK, models.FileCleanupResponse{
		Deleted:    result.Deleted,
		FreedBytes: result.FreedBytes,
		Failed:     result.Failed,
	})
}
