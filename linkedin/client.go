package linkedin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hiremind/backend/config"
	"github.com/hiremind/backend/metrics"
	"github.com/hiremind/backend/models"
	"github.com/hiremind/backend/utils"
)

const (
	searchPath  = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	detailsPath = "/jobs-guest/jobs/api/jobPosting/"
	viewPath    = "/jobs/view/"

	// PageSize is the number of listings the source returns per full page.
	PageSize = 10

	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.9"

	maxBodyBytes = 4 << 20
)

// ErrSourceUnavailable is returned when the listing source cannot be reached
// or answers with a non-200 status.
var ErrSourceUnavailable = errors.New("listing source unavailable")

// Client queries the LinkedIn guest job endpoints. It holds no per-query state
// and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *HostLimiter
	metrics    *metrics.Manager
	logger     *zap.Logger
}

// NewClient creates a listing source client from configuration
func NewClient(cfg *config.Config, logger *zap.Logger, m *metrics.Manager) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.SourceBaseURL, "/"),
		httpClient: utils.NewHTTPClient(cfg.SourceTimeout()),
		limiter:    NewHostLimiter(cfg.SourceRequestsPerSecond, cfg.SourceBurst),
		metrics:    m,
		logger:     logger.Named("linkedin"),
	}
}

// BuildSearchURL encodes q against the search endpoint. Only non-empty fields are sent;
// start is omitted for the first page.
func BuildSearchURL(baseURL string, q models.ListingQuery) string {
	params := url.Values{}
	if q.Keywords != "" {
		params.Set("keywords", q.Keywords)
	}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.ExperienceLevel != "" {
		params.Set("f_E", q.ExperienceLevel)
	}
	if q.JobType != "" {
		params.Set("f_JT", q.JobType)
	}
	if q.WorkSchedule != "" {
		params.Set("f_WT", q.WorkSchedule)
	}
	if q.PostedWithin != "" {
		params.Set("f_TPR", q.PostedWithin)
	}
	if q.Start > 0 {
		params.Set("start", strconv.Itoa(q.Start))
	}
	if q.SimplifiedApplication {
		params.Set("f_AL", "true")
	}
	if q.LessThan10Applicants {
		params.Set("f_JIYN", "true")
	}

	u := strings.TrimRight(baseURL, "/") + searchPath
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// Search runs one listing query and returns the parsed page. A page without
// listing blocks yields an empty slice and no error.
func (c *Client) Search(ctx context.Context, q models.ListingQuery) ([]models.Listing, error) {
	target := BuildSearchURL(c.baseURL, q)

	started := time.Now()
	body, err := c.fetch(ctx, target)
	c.metrics.ObserveSourceRequest("search", err, time.Since(started))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	listings, skipped, err := parseListings(body, c.baseURL, c.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: parse search page: %v", ErrSourceUnavailable, err)
	}
	c.metrics.AddListingsParsed(len(listings), skipped)

	c.logger.Debug("search page parsed",
		zap.String("keywords", q.Keywords),
		zap.String("location", q.Location),
		zap.Int("start", q.Start),
		zap.Int("listings", len(listings)),
		zap.Int("skipped", skipped),
	)

	return listings, nil
}

// FetchDetails loads the full posting for a listing id
func (c *Client) FetchDetails(ctx context.Context, id string) (*models.JobDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("job id is required")
	}

	started := time.Now()
	body, err := c.fetch(ctx, c.baseURL+detailsPath+url.PathEscape(id))
	c.metrics.ObserveSourceRequest("details", err, time.Since(started))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	detail, err := parseDetails(body, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse job details: %v", ErrSourceUnavailable, err)
	}

	detail.ID = id
	if detail.ApplicationURL == "" {
		detail.ApplicationURL = c.baseURL + viewPath + url.PathEscape(id)
	}

	return detail, nil
}

func (c *Client) fetch(ctx context.Context, target string) (io.ReadCloser, error) {
	if err := c.limiter.WaitURL(ctx, target); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, maxBodyBytes), resp.Body}, nil
}
