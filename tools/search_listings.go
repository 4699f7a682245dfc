package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hiremind/backend/models"
)

// ListingSearcher runs a single listing query
type ListingSearcher interface {
	Search(ctx context.Context, q models.ListingQuery) ([]models.Listing, error)
}

// SearchListingsTool searches the job listing source
type SearchListingsTool struct {
	source ListingSearcher
}

// NewSearchListingsTool creates a new listing search tool
func NewSearchListingsTool(source ListingSearcher) *SearchListingsTool {
	return &SearchListingsTool{source: source}
}

func (t *SearchListingsTool) Name() string {
	return "search_job_listings"
}

func (t *SearchListingsTool) Description() string {
	return `Search public job listings by keywords and location.
Returns one page of up to 10 listings with id, title, company, location and URLs.
Use workSchedule "2" for remote roles and start for paging (multiples of 10).`
}

func (t *SearchListingsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"keywords":        stringProp("Search keywords (e.g. 'Go Kubernetes')"),
			"location":        stringProp("City or country"),
			"experienceLevel": stringProp("Experience level filter"),
			"jobType":         stringProp("Job type filter"),
			"workSchedule":    stringProp("Work schedule filter, 2 = remote"),
			"postedWithin":    stringProp("Posted-within filter"),
			"start": map[string]interface{}{
				"type":        "integer",
				"description": "Result offset",
			},
		},
	}
}

func (t *SearchListingsTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var q models.ListingQuery
	if err := decodeInput(input, &q); err != nil {
		return NewErrorResult(err.Error())
	}
	if strings.TrimSpace(q.Keywords) == "" && strings.TrimSpace(q.Location) == "" {
		return NewErrorResult("keywords or location is required")
	}

	listings, err := t.source.Search(ctx, q)
	if err != nil {
		return NewErrorResult(err.Error())
	}

	return NewSuccessResult(map[string]interface{}{
		"jobs":  listings,
		"total": len(listings),
	})
}
