package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hiremind/backend/config"
	"github.com/hiremind/backend/metrics"
	"github.com/hiremind/backend/models"
)

// pageSize is the number of listings in a full source page; a shorter page ends paging.
const pageSize = 10

// ErrClusteringUnavailable is returned when skill clusters cannot be produced
var ErrClusteringUnavailable = errors.New("skill clustering unavailable")

// ListingSearcher runs a single listing query
type ListingSearcher interface {
	Search(ctx context.Context, q models.ListingQuery) ([]models.Listing, error)
}

// SkillClusterer groups skills into ordered keyword clusters
type SkillClusterer interface {
	Cluster(ctx context.Context, skills []string) ([]models.SkillCluster, error)
}

// JobAgent aggregates listings across skill clusters and search contexts
type JobAgent struct {
	source             ListingSearcher
	pagesPerContext    int
	maxConcurrent      int
	remoteWorkSchedule string
	defaultLimit       int
	logger             *zap.Logger
	metrics            *metrics.Manager
}

// NewJobAgent creates a new recommendation agent
func NewJobAgent(cfg *config.Config, source ListingSearcher, logger *zap.Logger, m *metrics.Manager) *JobAgent {
	return &JobAgent{
		source:             source,
		pagesPerContext:    max(cfg.PagesPerContext, 1),
		maxConcurrent:      max(cfg.MaxConcurrentSearches, 1),
		remoteWorkSchedule: cfg.RemoteWorkSchedule,
		defaultLimit:       max(cfg.DefaultRecommendationLimit, 1),
		logger:             logger.Named("aggregator"),
		metrics:            m,
	}
}

// RecommendInput represents the input for a recommendation run
type RecommendInput struct {
	Skills          []string
	Location        string
	LocationCity    string
	LocationCountry string
	Limit           int
	Offset          int
}

// RecommendOutput is one page of the ranked aggregation plus run statistics
type RecommendOutput struct {
	Jobs              []models.AggregatedListing
	Total             int
	Clusters          []models.SkillCluster
	AvgJobsPerCluster int
	Limit             int
	Offset            int
}

// pairResult holds the pages fetched for one (cluster, context) pair, in page order
type pairResult struct {
	token   string
	context models.ContextType
	pages   [][]models.Listing
}

// Recommend runs the full recommendation flow: cluster skills, fan out searches
// over clusters x contexts x pages, merge by listing identity, rank by number of
// matching clusters and return the requested page.
func (a *JobAgent) Recommend(ctx context.Context, clusterer SkillClusterer, in RecommendInput) (*RecommendOutput, error) {
	limit, offset := a.PageBounds(in.Limit, in.Offset)
	empty := &RecommendOutput{
		Jobs:     []models.AggregatedListing{},
		Clusters: []models.SkillCluster{},
		Limit:    limit,
		Offset:   offset,
	}

	skills := NonBlank(in.Skills)
	if len(skills) == 0 {
		a.logger.Info("no skills available, skipping recommendation")
		a.metrics.ObserveRecommendation(metrics.OutcomeEmpty, 0)
		return empty, nil
	}

	// Step 1: Cluster skills
	clusters, err := clusterer.Cluster(ctx, skills)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.metrics.ObserveRecommendation(metrics.OutcomeError, 0)
		return nil, fmt.Errorf("%w: %v", ErrClusteringUnavailable, err)
	}
	if len(clusters) == 0 {
		a.metrics.ObserveRecommendation(metrics.OutcomeEmpty, 0)
		return empty, nil
	}

	truncated := make([]models.SkillCluster, len(clusters))
	for i, c := range clusters {
		truncated[i] = c.Truncate()
	}

	// Step 2: Expand contexts
	national := in.LocationCountry
	if national == "" {
		national = in.Location
	}
	contexts := ExpandContexts(in.LocationCity != "", in.LocationCity, national)

	a.logger.Info("starting recommendation run",
		zap.Int("skills", len(skills)),
		zap.Int("clusters", len(truncated)),
		zap.Int("contexts", len(contexts)),
		zap.Int("pagesPerContext", a.pagesPerContext),
	)

	// Step 3: Search every (cluster, context) pair
	results, err := a.searchAll(ctx, truncated, contexts)
	if err != nil {
		return nil, err
	}

	// Step 4: Merge in (cluster, context, page) order and rank
	ranked := mergeResults(results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchCount > ranked[j].MatchCount
	})

	total := len(ranked)
	page := Paginate(ranked, limit, offset)

	jobs := make([]models.AggregatedListing, 0, len(page))
	for _, item := range page {
		jobs = append(jobs, *item)
	}

	a.logger.Info("recommendation run finished",
		zap.Int("total", total), zap.Int("returned", len(jobs)))
	a.metrics.ObserveRecommendation(metrics.OutcomeSuccess, total)

	return &RecommendOutput{
		Jobs:              jobs,
		Total:             total,
		Clusters:          truncated,
		AvgJobsPerCluster: avgPerCluster(total, len(truncated)),
		Limit:             limit,
		Offset:            offset,
	}, nil
}

// searchAll fans out one worker per (cluster, context) pair, bounded by
// maxConcurrent. Each pair pages sequentially. Results are stored by pair
// index so merge order does not depend on completion order.
func (a *JobAgent) searchAll(ctx context.Context, clusters []models.SkillCluster, contexts []models.SearchContext) ([]pairResult, error) {
	results := make([]pairResult, len(clusters)*len(contexts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrent)

	for ci, cluster := range clusters {
		token := cluster.Keyword()
		for xi, sc := range contexts {
			idx := ci*len(contexts) + xi
			results[idx] = pairResult{token: token, context: sc.Type}

			if err := gctx.Err(); err != nil {
				break
			}
			g.Go(func() error {
				pages, err := a.searchPair(gctx, token, sc)
				results[idx].pages = pages
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// searchPair pages through one (cluster, context) pair. A failed page is logged
// and paging moves on to the next one; a short page ends the pair. Only
// cancellation is returned as an error.
func (a *JobAgent) searchPair(ctx context.Context, token string, sc models.SearchContext) ([][]models.Listing, error) {
	var pages [][]models.Listing

	for page := 0; page < a.pagesPerContext; page++ {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		q := a.buildQuery(token, sc, page)
		listings, err := a.source.Search(ctx, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return pages, ctxErr
			}
			a.logger.Warn("listing query failed",
				zap.String("keywords", token),
				zap.String("context", string(sc.Type)),
				zap.Int("start", q.Start),
				zap.Error(err),
			)
			continue
		}

		pages = append(pages, listings)
		if len(listings) < pageSize {
			break
		}
	}

	return pages, nil
}

func (a *JobAgent) buildQuery(token string, sc models.SearchContext, page int) models.ListingQuery {
	q := models.ListingQuery{
		Keywords: token,
		Location: sc.Location,
		Start:    page * pageSize,
	}
	if sc.Type == models.ContextRemote {
		q.WorkSchedule = a.remoteWorkSchedule
	}
	return q
}

// PageBounds applies the default limit and clamps a negative offset
func (a *JobAgent) PageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = a.defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// mergeResults deduplicates listings by identity key. The first sighting fixes
// position, source cluster and context; later sightings only extend the match set.
func mergeResults(results []pairResult) []*models.AggregatedListing {
	seen := make(map[string]*models.AggregatedListing)
	ordered := make([]*models.AggregatedListing, 0)

	for _, r := range results {
		for _, page := range r.pages {
			for _, listing := range page {
				if existing, ok := seen[listing.ID]; ok {
					existing.AddMatch(r.token)
					continue
				}
				agg := models.NewAggregatedListing(listing, r.token, r.context)
				seen[listing.ID] = agg
				ordered = append(ordered, agg)
			}
		}
	}

	return ordered
}

// avgPerCluster is total/clusters rounded half up
func avgPerCluster(total, clusters int) int {
	if clusters <= 0 {
		return 0
	}
	return (2*total + clusters) / (2 * clusters)
}

// NonBlank returns the trimmed, non-empty skills in order
func NonBlank(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
