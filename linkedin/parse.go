package linkedin

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/hiremind/backend/models"
)

const (
	defaultCompany  = "Unknown Company"
	defaultLocation = "Location not specified"
	defaultPostTime = "Time not specified"
)

const (
	blockSelector    = "li > div.base-card"
	titleSelector    = `[class*="_title"]`
	linkSelector     = `[class*="_full-link"]`
	companySelector  = `[class*="_subtitle"]`
	locationSelector = `[class*="_location"]`
	postTimeSelector = `[class*="listdate"]`

	detailTitleSelector       = ".job-details-jobs-unified-top-card__job-title, .top-card-layout__title"
	detailCompanySelector     = ".job-details-jobs-unified-top-card__company-name, .topcard__org-name-link"
	detailLocationSelector    = ".job-details-jobs-unified-top-card__bullet, .topcard__flavor--bullet"
	detailDescriptionSelector = ".job-details-jobs-unified-top-card__job-description, .show-more-less-html__markup"
	detailCriteriaSelector    = ".job-details-jobs-unified-top-card__job-criteria-item, .description__job-criteria-item"
	detailBenefitsSelector    = ".job-details-jobs-unified-top-card__benefits"
	detailApplySelector       = ".job-details-jobs-unified-top-card__apply-button, .apply-button"
)

// parseListings extracts listings from a search result fragment. Blocks with
// no title or no resolvable URL are dropped and counted in skipped.
func parseListings(r io.Reader, baseURL string, logger *zap.Logger) (listings []models.Listing, skipped int, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, 0, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid base url: %w", err)
	}

	listings = []models.Listing{}
	doc.Find(blockSelector).Each(func(i int, block *goquery.Selection) {
		listing, ok := parseBlock(block, base, logger, i)
		if !ok {
			skipped++
			return
		}
		listings = append(listings, listing)
	})

	return listings, skipped, nil
}

func parseBlock(block *goquery.Selection, base *url.URL, logger *zap.Logger, index int) (listing models.Listing, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("malformed listing block", zap.Int("index", index), zap.Any("panic", r))
			ok = false
		}
	}()

	title := text(block.Find(titleSelector))
	href, _ := block.Find(linkSelector).First().Attr("href")
	jobURL := resolve(base, strings.TrimSpace(href))

	if title == "" || jobURL == "" {
		logger.Debug("listing block missing title or url", zap.Int("index", index))
		return models.Listing{}, false
	}

	listing = models.Listing{
		ID:             ListingID(jobURL),
		Title:          title,
		Company:        orDefault(text(block.Find(companySelector)), defaultCompany),
		Location:       orDefault(text(block.Find(locationSelector)), defaultLocation),
		PostTime:       orDefault(text(block.Find(postTimeSelector)), defaultPostTime),
		JobURL:         jobURL,
		ApplicationURL: jobURL,
	}
	return listing, true
}

// parseDetails extracts the full posting from a job details page
func parseDetails(r io.Reader, baseURL string) (*models.JobDetail, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	detail := &models.JobDetail{
		Title:        text(doc.Find(detailTitleSelector)),
		Company:      text(doc.Find(detailCompanySelector)),
		Location:     text(doc.Find(detailLocationSelector)),
		Description:  text(doc.Find(detailDescriptionSelector)),
		Benefits:     text(doc.Find(detailBenefitsSelector)),
		Requirements: []string{},
	}

	doc.Find(detailCriteriaSelector).Each(func(_ int, item *goquery.Selection) {
		if t := collapse(item.Text()); t != "" {
			detail.Requirements = append(detail.Requirements, t)
		}
	})

	if href, ok := doc.Find(detailApplySelector).First().Attr("href"); ok {
		detail.ApplicationURL = resolve(base, strings.TrimSpace(href))
	}

	if detail.Title == "" && detail.Description == "" {
		return nil, fmt.Errorf("no job posting content found")
	}

	return detail, nil
}

func text(sel *goquery.Selection) string {
	return collapse(sel.First().Text())
}

// collapse trims s and folds internal whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolve(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
