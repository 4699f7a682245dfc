package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hiremind/backend/agent"
	"github.com/hiremind/backend/gemini"
	"github.com/hiremind/backend/metrics"
	"github.com/hiremind/backend/models"
	"github.com/hiremind/backend/storage"
)

// seedSkillCount is how many resume skills seed a direct search
const seedSkillCount = 5

// ListingSource searches listings and fetches job details
type ListingSource interface {
	Search(ctx context.Context, q models.ListingQuery) ([]models.Listing, error)
	FetchDetails(ctx context.Context, id string) (*models.JobDetail, error)
}

// JobsHandler handles job search, details and recommendations
type JobsHandler struct {
	responder
	source     ListingSource
	agent      *agent.JobAgent
	resumes    storage.ResumeStore
	generators *GeneratorResolver
	metrics    *metrics.Manager
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(
	source ListingSource,
	jobAgent *agent.JobAgent,
	resumes storage.ResumeStore,
	generators *GeneratorResolver,
	m *metrics.Manager,
	logger *zap.Logger,
	verbose bool,
) *JobsHandler {
	return &JobsHandler{
		responder:  responder{logger: logger.Named("jobs"), verbose: verbose},
		source:     source,
		agent:      jobAgent,
		resumes:    resumes,
		generators: generators,
		metrics:    m,
	}
}

// Search runs a single listing query
// @Summary Search job listings
// @Description Search listings by keywords and location. With resumeId, missing keywords are seeded from the resume's top skills and missing location from the resume.
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param keywords query string false "Search keywords"
// @Param location query string false "Location"
// @Param experienceLevel query string false "Experience level filter (f_E)"
// @Param jobType query string false "Job type filter (f_JT)"
// @Param workSchedule query string false "Work schedule filter (f_WT, 2 = remote)"
// @Param postedWithin query string false "Posted within filter (f_TPR)"
// @Param start query int false "Result offset"
// @Param simplifiedApplication query bool false "Easy apply only"
// @Param lessThan10Applicants query bool false "Fewer than 10 applicants"
// @Param resumeId query string false "Resume used to seed keywords and location"
// @Success 200 {object} models.JobSearchResponse "Search results"
// @Failure 400 {object} models.ErrorResponse "Invalid query"
// @Failure 404 {object} models.ErrorResponse "Resume not found"
// @Failure 502 {object} models.ErrorResponse "Listing source unavailable"
// @Router /jobs/search [get]
func (h *JobsHandler) Search(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req models.JobSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	ctx := c.Request.Context()
	q := req.ListingQuery
	q.Keywords = strings.TrimSpace(q.Keywords)
	q.Location = strings.TrimSpace(q.Location)

	if req.ResumeID != "" {
		resume, err := h.resumes.GetResume(ctx, userID, req.ResumeID)
		if err != nil {
			h.failResume(c, err)
			return
		}
		if data := resume.ExtractedData; data != nil {
			if q.Keywords == "" {
				q.Keywords = strings.Join(data.TopSkills(seedSkillCount), ", ")
			}
			if q.Location == "" {
				q.Location = data.Location
			}
		}
	}

	if q.Keywords == "" && q.Location == "" {
		h.fail(c, http.StatusBadRequest, "Either keywords or location is required", nil)
		return
	}

	listings, err := h.source.Search(ctx, q)
	if err != nil {
		h.fail(c, http.StatusBadGateway, "Failed to fetch job listings", err)
		return
	}

	resp := models.JobSearchResponse{Jobs: listings, Total: len(listings), Query: q}
	if len(listings) == 0 {
		resp.Jobs = []models.Listing{}
		resp.Message = "No jobs found for this search"
	}
	c.JSON(http.StatusOK, resp)
}

// Details fetches the full posting for a listing
// @Summary Get job details
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Listing ID"
// @Success 200 {object} models.JobDetailResponse "Job details"
// @Failure 400 {object} models.ErrorResponse "Invalid job ID"
// @Failure 502 {object} models.ErrorResponse "Listing source unavailable"
// @Router /jobs/{jobId}/details [get]
func (h *JobsHandler) Details(c *gin.Context) {
	jobID := strings.TrimSpace(c.Param("jobId"))
	if !isListingID(jobID) {
		h.fail(c, http.StatusBadRequest, "Invalid job ID", nil)
		return
	}

	job, err := h.source.FetchDetails(c.Request.Context(), jobID)
	if err != nil {
		h.fail(c, http.StatusBadGateway, "Failed to fetch job details", err)
		return
	}

	c.JSON(http.StatusOK, models.JobDetailResponse{Job: job})
}

// Recommendations ranks listings for a resume across skill clusters and locations
// @Summary Get job recommendations
// @Description Cluster the resume's skills, search every cluster in local, national and remote contexts, and rank listings by how many clusters surfaced them. Without resumeId the latest resume is used.
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param resumeId path string false "Resume ID"
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page offset"
// @Success 200 {object} models.RecommendationsResponse "Ranked recommendations"
// @Failure 404 {object} models.ErrorResponse "Resume not found"
// @Failure 503 {object} models.ErrorResponse "Skill clustering unavailable"
// @Router /jobs/recommendations/{resumeId} [get]
func (h *JobsHandler) Recommendations(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	// malformed paging parameters fall back to the defaults
	limit, offset := h.agent.PageBounds(queryInt(c, "limit"), queryInt(c, "offset"))

	ctx := c.Request.Context()

	var (
		resume *models.Resume
		err    error
	)
	if id := c.Param("resumeId"); id != "" {
		resume, err = h.resumes.GetResume(ctx, userID, id)
	} else {
		resume, err = h.resumes.GetLatestResume(ctx, userID)
	}
	if err != nil {
		h.failResume(c, err)
		return
	}

	var skills []string
	data := resume.ExtractedData
	if data != nil {
		skills = agent.NonBlank(data.Skills)
	}
	if len(skills) == 0 {
		c.JSON(http.StatusOK, models.RecommendationsResponse{
			Jobs:          []models.AggregatedListing{},
			Clusters:      []models.SkillCluster{},
			BasedOnResume: resume.FileName,
			Limit:         limit,
			Offset:        offset,
			Message:       "No skills found in resume",
		})
		return
	}

	gen, err := h.generators.ForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gemini.ErrNoGenerator) {
			h.fail(c, http.StatusServiceUnavailable, "Skill clustering unavailable. Add a Gemini API key to your profile.", err)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Failed to prepare recommendations", err)
		return
	}

	out, err := h.agent.Recommend(ctx, gemini.NewSkillClusterer(gen, h.logger, h.metrics), agent.RecommendInput{
		Skills:          skills,
		Location:        data.Location,
		LocationCity:    data.LocationCity,
		LocationCountry: data.LocationCountry,
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrClusteringUnavailable):
			h.fail(c, http.StatusServiceUnavailable, "Skill clustering unavailable", err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.fail(c, http.StatusGatewayTimeout, "Recommendation request cancelled", err)
		default:
			h.fail(c, http.StatusInternalServerError, "Failed to build recommendations", err)
		}
		return
	}

	resp := models.RecommendationsResponse{
		Jobs:                 out.Jobs,
		TotalRecommendations: out.Total,
		ClustersUsed:         len(out.Clusters),
		Clusters:             out.Clusters,
		AvgJobsPerCluster:    out.AvgJobsPerCluster,
		BasedOnResume:        resume.FileName,
		Limit:                out.Limit,
		Offset:               out.Offset,
	}
	if out.Total == 0 {
		resp.Message = "No matching jobs found"
	}
	c.JSON(http.StatusOK, resp)
}

func (h *JobsHandler) failResume(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		h.fail(c, http.StatusNotFound, "Resume not found. Please upload a resume first.", nil)
		return
	}
	h.fail(c, http.StatusInternalServerError, "Failed to load resume", err)
}

// queryInt parses an optional integer query parameter; absent or malformed means 0
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return n
}

func isListingID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
