package models

import "strings"

// ContextType identifies the geographic scope of a search context
type ContextType string

const (
	ContextLocal    ContextType = "local"
	ContextNational ContextType = "national"
	ContextRemote   ContextType = "remote"
)

// SearchContext is a geographic scope applied to a listing query.
// Remote contexts carry an empty location.
type SearchContext struct {
	Type     ContextType `json:"type"`
	Location string      `json:"location"`
}

// SkillCluster is an ordered group of related skill tags (at most MaxClusterTags)
type SkillCluster []string

// MaxClusterTags caps the number of tags used from a single cluster
const MaxClusterTags = 5

// Truncate returns the cluster limited to MaxClusterTags tags
func (c SkillCluster) Truncate() SkillCluster {
	if len(c) <= MaxClusterTags {
		return c
	}
	return c[:MaxClusterTags]
}

// Keyword joins the truncated cluster into a single search keyword string.
// The same string is used as the cluster's match token.
func (c SkillCluster) Keyword() string {
	return strings.Join(c.Truncate(), " ")
}

// ListingQuery holds the filters sent to the listing source
type ListingQuery struct {
	Keywords              string `json:"keywords,omitempty" form:"keywords"`
	Location              string `json:"location,omitempty" form:"location"`
	ExperienceLevel       string `json:"experienceLevel,omitempty" form:"experienceLevel"` // f_E
	JobType               string `json:"jobType,omitempty" form:"jobType"`                 // f_JT
	WorkSchedule          string `json:"workSchedule,omitempty" form:"workSchedule"`       // f_WT
	PostedWithin          string `json:"postedWithin,omitempty" form:"postedWithin"`       // f_TPR
	Start                 int    `json:"start,omitempty" form:"start"`
	SimplifiedApplication bool   `json:"simplifiedApplication,omitempty" form:"simplifiedApplication"`
	LessThan10Applicants  bool   `json:"lessThan10Applicants,omitempty" form:"lessThan10Applicants"`
}

// Listing is a normalized job listing returned by the listing source.
// ID is the identity key: two listings are the same entity iff their IDs match.
// @Description Job listing
type Listing struct {
	ID             string `json:"id" example:"3912345678"`
	Title          string `json:"title" example:"Senior Backend Engineer"`
	Company        string `json:"company" example:"Acme Corp"`
	Location       string `json:"location" example:"Berlin, Germany"`
	PostTime       string `json:"postTime" example:"2 days ago"`
	JobURL         string `json:"jobUrl" example:"https://www.linkedin.com/jobs/view/senior-backend-engineer-3912345678"`
	ApplicationURL string `json:"applicationUrl" example:"https://www.linkedin.com/jobs/view/senior-backend-engineer-3912345678"`
}

// AggregatedListing is a listing plus the set of clusters that surfaced it.
// MatchCount always equals len(MatchedClusters); use AddMatch to mutate.
// @Description Recommended job listing with cluster match information
type AggregatedListing struct {
	Listing
	MatchedClusters []string    `json:"matchedClusters"`
	MatchCount      int         `json:"matchCount" example:"2"`
	ClusterSource   string      `json:"clusterSource" example:"go docker"`
	Context         ContextType `json:"context" example:"local"`
}

// NewAggregatedListing records the first sighting of a listing
func NewAggregatedListing(listing Listing, token string, ctxType ContextType) *AggregatedListing {
	return &AggregatedListing{
		Listing:         listing,
		MatchedClusters: []string{token},
		MatchCount:      1,
		ClusterSource:   token,
		Context:         ctxType,
	}
}

// AddMatch adds token to the match set. Returns false if it was already present.
func (a *AggregatedListing) AddMatch(token string) bool {
	for _, existing := range a.MatchedClusters {
		if existing == token {
			return false
		}
	}
	a.MatchedClusters = append(a.MatchedClusters, token)
	a.MatchCount = len(a.MatchedClusters)
	return true
}

// JobDetail holds the full posting fetched from the job details endpoint
// @Description Detailed job posting
type JobDetail struct {
	ID             string   `json:"id" example:"3912345678"`
	Title          string   `json:"title" example:"Senior Backend Engineer"`
	Company        string   `json:"company" example:"Acme Corp"`
	Location       string   `json:"location" example:"Berlin, Germany"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements"`
	Benefits       string   `json:"benefits,omitempty"`
	ApplicationURL string   `json:"applicationUrl,omitempty"`
}
