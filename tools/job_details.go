package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hiremind/backend/models"
)

// DetailsFetcher fetches the full posting for a listing ID
type DetailsFetcher interface {
	FetchDetails(ctx context.Context, id string) (*models.JobDetail, error)
}

// JobDetailsTool fetches job details
type JobDetailsTool struct {
	source DetailsFetcher
}

// NewJobDetailsTool creates a new job details tool
func NewJobDetailsTool(source DetailsFetcher) *JobDetailsTool {
	return &JobDetailsTool{source: source}
}

func (t *JobDetailsTool) Name() string {
	return "get_job_details"
}

func (t *JobDetailsTool) Description() string {
	return `Fetch the full description, requirements and benefits of a job listing.
Input is the listing id returned by search_job_listings.`
}

func (t *JobDetailsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"jobId": stringProp("Listing id"),
		},
		"required": []string{"jobId"},
	}
}

func (t *JobDetailsTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		JobID string `json:"jobId"`
	}
	if err := decodeInput(input, &in); err != nil {
		return NewErrorResult(err.Error())
	}
	if strings.TrimSpace(in.JobID) == "" {
		return NewErrorResult("jobId is required")
	}

	job, err := t.source.FetchDetails(ctx, strings.TrimSpace(in.JobID))
	if err != nil {
		return NewErrorResult(err.Error())
	}
	return NewSuccessResult(job)
}
