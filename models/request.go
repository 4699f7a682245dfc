package models

// ErrorResponse represents an API error response
// @Description Standard error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid request body"`
	Code    int    `json:"code" example:"400"`
	Details string `json:"details,omitempty" example:"email is required"`
}

// HealthResponse represents health check response
// @Description Server health status
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Version   string `json:"version" example:"1.0.0"`
	Timestamp string `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// ResumeUploadResponse is returned after a successful upload or reparse
// @Description Resume upload result
type ResumeUploadResponse struct {
	Resume  *Resume `json:"resume"`
	Message string  `json:"message" example:"Resume uploaded and parsed successfully"`
}

// ResumeListResponse lists the caller's resumes, newest first
// @Description Resume list
type ResumeListResponse struct {
	Resumes []ResumeSummary `json:"resumes"`
	Total   int             `json:"total" example:"2"`
}

// MessageResponse is a generic acknowledgement
// @Description Generic message
type MessageResponse struct {
	Message string `json:"message" example:"Resume deleted successfully"`
}

// JobSearchRequest holds query parameters for a direct listing search
// @Description Job search query parameters
type JobSearchRequest struct {
	ListingQuery
	ResumeID string `form:"resumeId"`
}

// JobSearchResponse wraps one page of raw listing results
// @Description Job search results
type JobSearchResponse struct {
	Jobs    []Listing    `json:"jobs"`
	Total   int          `json:"total" example:"10"`
	Query   ListingQuery `json:"query"`
	Message string       `json:"message,omitempty"`
}

// JobDetailResponse wraps a single job detail
// @Description Job details
type JobDetailResponse struct {
	Job *JobDetail `json:"job"`
}

// RecommendationsResponse is the ranked, paginated recommendation result
// @Description Ranked job recommendations
type RecommendationsResponse struct {
	Jobs                 []AggregatedListing `json:"jobs"`
	TotalRecommendations int                 `json:"totalRecommendations" example:"42"`
	ClustersUsed         int                 `json:"clustersUsed" example:"3"`
	Clusters             []SkillCluster      `json:"clusters"`
	AvgJobsPerCluster    int                 `json:"avgJobsPerCluster" example:"14"`
	BasedOnResume        string              `json:"basedOnResume,omitempty" example:"jane-doe-cv.pdf"`
	Limit                int                 `json:"limit" example:"50"`
	Offset               int                 `json:"offset" example:"0"`
	Message              string              `json:"message,omitempty"`
}

// FileStatsResponse reports stored resume files and how many are orphaned
// @Description Stored file statistics
type FileStatsResponse struct {
	TotalFiles    int      `json:"totalFiles" example:"12"`
	OrphanedFiles int      `json:"orphanedFiles" example:"3"`
	OrphanedBytes int64    `json:"orphanedBytes" example:"524288"`
	Orphans       []string `json:"orphans"`
}

// FileCleanupResponse reports the result of an orphan cleanup run
// @Description Orphaned file cleanup result
type FileCleanupResponse struct {
	Deleted    int      `json:"deleted" example:"3"`
	FreedBytes int64    `json:"freedBytes" example:"524288"`
	Failed     []string `json:"failed,omitempty"`
}
