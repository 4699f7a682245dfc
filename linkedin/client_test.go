package linkedin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/hiremind/backend/config"
	"github.com/hiremind/backend/models"
)

const searchFixture = `
<li>
  <div class="base-card relative job-search-card">
    <a class="base-card__full-link" href="/jobs/view/senior-go-developer-at-acme-3912345678?refId=abc&amp;trackingId=xyz">
      <span class="sr-only">Senior Go Developer</span>
    </a>
    <div class="base-search-card__info">
      <h3 class="base-search-card__title">
        Senior Go   Developer
      </h3>
      <h4 class="base-search-card__subtitle"><a href="/company/acme">Acme Corp</a></h4>
      <div class="base-search-card__metadata">
        <span class="job-search-card__location">Berlin, Germany</span>
        <time class="job-search-card__listdate">2 days ago</time>
      </div>
    </div>
  </div>
</li>
<li>
  <div class="base-card relative job-search-card">
    <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/platform-engineer-3900000001#frag">x</a>
    <h3 class="base-search-card__title">Platform Engineer</h3>
  </div>
</li>
<li>
  <div class="base-card relative job-search-card">
    <a class="base-card__full-link" href="/jobs/view/no-title-3900000002">x</a>
    <h4 class="base-search-card__subtitle">Nameless Inc</h4>
  </div>
</li>
<li>
  <div class="base-card relative job-search-card">
    <h3 class="base-search-card__title">No Link Engineer</h3>
  </div>
</li>
`

const detailsFixture = `
<html><body>
  <h1 class="top-card-layout__title">Senior Go Developer</h1>
  <a class="topcard__org-name-link">Acme Corp</a>
  <span class="topcard__flavor--bullet">Berlin, Germany</span>
  <div class="show-more-less-html__markup"><p>Build   distributed systems.</p></div>
  <ul>
    <li class="description__job-criteria-item">Seniority level Mid-Senior level</li>
    <li class="description__job-criteria-item">Employment type Full-time</li>
  </ul>
  <a class="apply-button" href="/jobs/apply/3912345678">Apply</a>
</body></html>
`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.New()
	cfg.SourceBaseURL = srv.URL
	cfg.SourceRequestsPerSecond = 1000
	cfg.SourceBurst = 100

	return NewClient(cfg, zap.NewNop(), nil)
}

func TestSearchParsesListings(t *testing.T) {
	t.Parallel()

	var gotQuery, gotUA string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != searchPath {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, searchFixture)
	})

	listings, err := client.Search(context.Background(), models.ListingQuery{
		Keywords:     "go docker",
		Location:     "Berlin",
		WorkSchedule: "2",
		Start:        10,
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if gotUA != userAgent {
		t.Fatalf("unexpected user agent %q", gotUA)
	}
	for _, want := range []string{"keywords=go+docker", "location=Berlin", "f_WT=2", "start=10"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query %q missing %q", gotQuery, want)
		}
	}

	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d: %+v", len(listings), listings)
	}

	first := listings[0]
	if first.ID != "3912345678" {
		t.Fatalf("unexpected id %q", first.ID)
	}
	if first.Title != "Senior Go Developer" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if first.Company != "Acme Corp" || first.Location != "Berlin, Germany" || first.PostTime != "2 days ago" {
		t.Fatalf("unexpected fields: %+v", first)
	}
	if !strings.HasSuffix(first.JobURL, "/jobs/view/senior-go-developer-at-acme-3912345678?refId=abc&trackingId=xyz") {
		t.Fatalf("relative href not resolved: %q", first.JobURL)
	}
	if first.ApplicationURL != first.JobURL {
		t.Fatalf("application url should default to job url")
	}

	second := listings[1]
	if second.ID != "3900000001" {
		t.Fatalf("unexpected id %q", second.ID)
	}
	if second.Company != defaultCompany || second.Location != defaultLocation || second.PostTime != defaultPostTime {
		t.Fatalf("defaults not applied: %+v", second)
	}
}

func TestSearchEmptyPage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "")
	})

	listings, err := client.Search(context.Background(), models.ListingQuery{Keywords: "cobol"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listings == nil || len(listings) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", listings)
	}
}

func TestSearchNon200IsSourceUnavailable(t *testing.T) {
	t.Parallel()

	tests := []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusNoContent}
	for _, status := range tests {
		status := status
		t.Run(http.StatusText(status), func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			})
			_, err := client.Search(context.Background(), models.ListingQuery{Keywords: "go"})
			if !errors.Is(err, ErrSourceUnavailable) {
				t.Fatalf("expected ErrSourceUnavailable, got %v", err)
			}
		})
	}
}

func TestSearchHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Search(ctx, models.ListingQuery{Keywords: "go"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no request to be sent")
	}
}

func TestFetchDetails(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != detailsPath+"3912345678" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, detailsFixture)
	})

	detail, err := client.FetchDetails(context.Background(), "3912345678")
	if err != nil {
		t.Fatalf("FetchDetails returned error: %v", err)
	}
	if detail.ID != "3912345678" || detail.Title != "Senior Go Developer" || detail.Company != "Acme Corp" {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.Description != "Build distributed systems." {
		t.Fatalf("unexpected description %q", detail.Description)
	}
	if len(detail.Requirements) != 2 {
		t.Fatalf("expected 2 criteria, got %v", detail.Requirements)
	}
	if !strings.HasSuffix(detail.ApplicationURL, "/jobs/apply/3912345678") {
		t.Fatalf("unexpected application url %q", detail.ApplicationURL)
	}

	if _, err := client.FetchDetails(context.Background(), "404"); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable for missing posting, got %v", err)
	}
}

func TestBuildSearchURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query models.ListingQuery
		want  string
	}{
		{
			name:  "first page omits start",
			query: models.ListingQuery{Keywords: "go", Start: 0},
			want:  "https://li.test" + searchPath + "?keywords=go",
		},
		{
			name: "all filters",
			query: models.ListingQuery{
				Keywords: "go", Location: "Berlin", ExperienceLevel: "4", JobType: "F",
				WorkSchedule: "2", PostedWithin: "r86400", Start: 20,
				SimplifiedApplication: true, LessThan10Applicants: true,
			},
			want: "https://li.test" + searchPath +
				"?f_AL=true&f_E=4&f_JIYN=true&f_JT=F&f_TPR=r86400&f_WT=2&keywords=go&location=Berlin&start=20",
		},
		{
			name:  "empty query",
			query: models.ListingQuery{},
			want:  "https://li.test" + searchPath,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BuildSearchURL("https://li.test/", tt.query); got != tt.want {
				t.Fatalf("BuildSearchURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListingID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://www.linkedin.com/jobs/view/go-dev-at-acme-3912345678?refId=1", "3912345678"},
		{"https://www.linkedin.com/jobs/view/go-dev-at-acme-3912345678#top", "3912345678"},
		{"https://www.linkedin.com/jobs/view/3912345678/", "3912345678"},
		{"https://www.linkedin.com/jobs/view/trailing-?x=1", "https://www.linkedin.com/jobs/view/trailing-"},
	}

	for _, tt := range tests {
		if got := ListingID(tt.in); got != tt.want {
			t.Errorf("ListingID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHostLimiterSeparatesHosts(t *testing.T) {
	t.Parallel()

	hl := NewHostLimiter(1, 1)
	ctx := context.Background()

	if err := hl.WaitURL(ctx, "https://a.test/x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := hl.WaitURL(ctx, "https://b.test/x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hl.m) != 2 {
		t.Fatalf("expected one limiter per host, got %d", len(hl.m))
	}
}
