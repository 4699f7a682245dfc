package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hiremind/backend/gemini"
	"github.com/hiremind/backend/models"
	"github.com/hiremind/backend/storage"
	"github.com/hiremind/backend/utils"
)

// resumeFormField is the multipart field carrying the upload
const resumeFormField = "resume"

// ResumeHandler handles resume upload and management
type ResumeHandler struct {
	responder
	resumes    storage.ResumeStore
	files      storage.FileStore
	generators *GeneratorResolver
	extractor  *utils.DocumentExtractor
	maxBytes   int64
}

// NewResumeHandler creates a new resume handler
func NewResumeHandler(
	resumes storage.ResumeStore,
	files storage.FileStore,
	generators *GeneratorResolver,
	maxBytes int64,
	logger *zap.Logger,
	verbose bool,
) *ResumeHandler {
	return &ResumeHandler{
		responder:  responder{logger: logger.Named("resume"), verbose: verbose},
		resumes:    resumes,
		files:      files,
		generators: generators,
		extractor:  utils.NewDocumentExtractor(),
		maxBytes:   maxBytes,
	}
}

// Upload stores and parses a resume file
// @Summary Upload resume
// @Description Upload a resume (PDF, DOCX or TXT). The file is stored and parsed into structured data.
// @Tags Resume
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param resume formData file true "Resume file (PDF, DOCX, TXT)"
// @Success 201 {object} models.ResumeUploadResponse "Resume uploaded"
// @Failure 400 {object} models.ErrorResponse "Invalid file"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 413 {object} models.ErrorResponse "File too large"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Failure 503 {object} models.ErrorResponse "Resume parsing unavailable"
// @Router /resume/upload [post]
func (h *ResumeHandler) Upload(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	// multipart framing needs headroom above the file cap
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+(1<<20))

	fileHeader, err := c.FormFile(resumeFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, http.StatusRequestEntityTooLarge, "File too large", err)
			return
		}
		h.fail(c, http.StatusBadRequest, "Resume file is required", err)
		return
	}
	if fileHeader.Size > h.maxBytes {
		h.fail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large (max %d MB)", h.maxBytes>>20), nil)
		return
	}
	if !h.extractor.IsSupportedFormat(fileHeader.Filename) {
		h.fail(c, http.StatusBadRequest, "Unsupported file type. Please upload a PDF, DOCX or TXT file.", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Failed to read uploaded file", err)
		return
	}
	content, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Failed to read uploaded file", err)
		return
	}

	doc, err := h.extractor.Extract(fileHeader.Filename, content)
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Could not read resume content", err)
		return
	}

	ctx := c.Request.Context()

	key, err := h.files.Save(ctx, fileHeader.Filename, h.extractor.ContentType(fileHeader.Filename), content)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to store resume file", err)
		return
	}

	data, err := h.parse(ctx, userID, doc)
	if err != nil {
		h.discard(key)
		h.failParse(c, err)
		return
	}

	resume := &models.Resume{
		UserID:        userID,
		FileName:      fileHeader.Filename,
		FilePath:      key,
		ExtractedData: data,
	}
	if err := h.resumes.CreateResume(ctx, resume); err != nil {
		h.discard(key)
		h.fail(c, http.StatusInternalServerError, "Failed to save resume", err)
		return
	}

	h.logger.Info("resume uploaded",
		zap.String("userId", userID), zap.String("resumeId", resume.ID), zap.Int("skills", len(data.Skills)))

	c.JSON(http.StatusCreated, models.ResumeUploadResponse{
		Resume:  resume,
		Message: "Resume uploaded and parsed successfully",
	})
}

// List returns the caller's resumes
// @Summary List resumes
// @Description List the authenticated user's resumes, newest first
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ResumeListResponse "Resumes"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /resume [get]
func (h *ResumeHandler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	resumes, err := h.resumes.ListResumes(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to list resumes", err)
		return
	}

	summaries := summarize(resumes)
	c.JSON(http.StatusOK, models.ResumeListResponse{Resumes: summaries, Total: len(summaries)})
}

// Get returns one resume with its extracted data
// @Summary Get resume
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {object} models.Resume "Resume"
// @Failure 404 {object} models.ErrorResponse "Resume not found"
// @Router /resume/{id} [get]
func (h *ResumeHandler) Get(c *gin.Context) {
	resume, ok := h.owned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resume)
}

// Delete removes a resume record and its stored file
// @Summary Delete resume
// @Description Delete a resume. The record deletion is authoritative; the stored file is removed best-effort.
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {object} models.MessageResponse "Resume deleted"
// @Failure 404 {object} models.ErrorResponse "Resume not found"
// @Router /resume/{id} [delete]
func (h *ResumeHandler) Delete(c *gin.Context) {
	resume, ok := h.owned(c)
	if !ok {
		return
	}

	if err := h.resumes.DeleteResume(c.Request.Context(), resume.UserID, resume.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(c, http.StatusNotFound, "Resume not found", nil)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Failed to delete resume", err)
		return
	}

	if resume.FilePath != "" {
		h.discard(resume.FilePath)
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Resume deleted successfully"})
}

// Reparse re-runs extraction on the stored file
// @Summary Reparse resume
// @Description Re-run structured extraction on a stored resume file
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {object} models.ResumeUploadResponse "Resume reparsed"
// @Failure 404 {object} models.ErrorResponse "Resume not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Failure 503 {object} models.ErrorResponse "Resume parsing unavailable"
// @Router /resume/{id}/reparse [post]
func (h *ResumeHandler) Reparse(c *gin.Context) {
	resume, ok := h.owned(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	content, err := h.files.Read(ctx, resume.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(c, http.StatusNotFound, "Resume file no longer exists", nil)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Failed to read resume file", err)
		return
	}

	doc, err := h.extractor.Extract(resume.FileName, content)
	if err != nil {
		h.fail(c, http.StatusUnprocessableEntity, "Could not read resume content", err)
		return
	}

	data, err := h.parse(ctx, resume.UserID, doc)
	if err != nil {
		h.failParse(c, err)
		return
	}

	if err := h.resumes.UpdateResumeData(ctx, resume.UserID, resume.ID, data); err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to save resume", err)
		return
	}
	resume.ExtractedData = data

	c.JSON(http.StatusOK, models.ResumeUploadResponse{
		Resume:  resume,
		Message: "Resume reparsed successfully",
	})
}

func (h *ResumeHandler) parse(ctx context.Context, userID string, doc *utils.Document) (*models.ExtractedData, error) {
	gen, err := h.generators.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return gemini.NewResumeParser(gen, h.logger).Parse(ctx, doc)
}

func (h *ResumeHandler) failParse(c *gin.Context, err error) {
	if errors.Is(err, gemini.ErrNoGenerator) {
		h.fail(c, http.StatusServiceUnavailable, "Resume parsing unavailable. Add a Gemini API key to your profile.", err)
		return
	}
	h.fail(c, http.StatusInternalServerError, "Failed to parse resume", err)
}

// owned loads the :id resume of the caller, writing the error response on failure
func (h *ResumeHandler) owned(c *gin.Context) (*models.Resume, bool) {
	userID, ok := h.userID(c)
	if !ok {
		return nil, false
	}

	resume, err := h.resumes.GetResume(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.fail(c, http.StatusNotFound, "Resume not found", nil)
			return nil, false
		}
		h.fail(c, http.StatusInternalServerError, "Failed to load resume", err)
		return nil, false
	}
	return resume, true
}

// discard removes a stored file, logging instead of failing
func (h *ResumeHandler) discard(key string) {
	if err := h.files.Delete(context.Background(), key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.logger.Warn("failed to delete stored resume file", zap.String("key", key), zap.Error(err))
	}
}
