package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hiremind/backend/config"
	"github.com/hiremind/backend/models"
)

var errSourceDown = errors.New("source down")

// fakeSource serves canned pages keyed by (keywords, location, workSchedule, start).
type fakeSource struct {
	mu      sync.Mutex
	pages   map[string][]models.Listing
	fail    map[string]bool
	delay   map[string]time.Duration
	queries []models.ListingQuery
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages: make(map[string][]models.Listing),
		fail:  make(map[string]bool),
		delay: make(map[string]time.Duration),
	}
}

func queryKey(keywords, location, schedule string, start int) string {
	return fmt.Sprintf("%s|%s|%s|%d", keywords, location, schedule, start)
}

func (f *fakeSource) on(keywords, location, schedule string, start int, listings ...models.Listing) *fakeSource {
	f.pages[queryKey(keywords, location, schedule, start)] = listings
	return f
}

func (f *fakeSource) failing(keywords, location, schedule string, start int) *fakeSource {
	f.fail[queryKey(keywords, location, schedule, start)] = true
	return f
}

func (f *fakeSource) Search(ctx context.Context, q models.ListingQuery) ([]models.Listing, error) {
	key := queryKey(q.Keywords, q.Location, q.WorkSchedule, q.Start)

	f.mu.Lock()
	f.queries = append(f.queries, q)
	delay := f.delay[key]
	fail := f.fail[key]
	listings := f.pages[key]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errSourceDown
	}
	return listings, nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeSource) sawStart(keywords string, start int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.queries {
		if q.Keywords == keywords && q.Start == start {
			return true
		}
	}
	return false
}

// fakeClusterer returns fixed clusters.
type fakeClusterer struct {
	clusters []models.SkillCluster
	err      error
	calls    int
}

func (f *fakeClusterer) Cluster(_ context.Context, _ []string) ([]models.SkillCluster, error) {
	f.calls++
	return f.clusters, f.err
}

func listing(id string) models.Listing {
	return models.Listing{
		ID:     id,
		Title:  "Job " + id,
		JobURL: "https://www.linkedin.com/jobs/view/job-" + id,
	}
}

func listings(prefix string, n int) []models.Listing {
	out := make([]models.Listing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, listing(fmt.Sprintf("%s%d", prefix, i)))
	}
	return out
}

func newTestAgent(source ListingSearcher, mutate func(*config.Config)) *JobAgent {
	cfg := config.New()
	if mutate != nil {
		mutate(cfg)
	}
	return NewJobAgent(cfg, source, zap.NewNop(), nil)
}

func ids(items []models.AggregatedListing) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
