package checker

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/content-discovery/internal/models"
)

// CheckResult holds the metadata extracted from a fetched source page.
type CheckResult struct {
	Title       string
	Description string
	LinkCount   int
}

// check fetches the source URL and extracts page metadata.
func (c *Checker) check(ctx context.Context, source *models.Source) (*CheckResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent to avoid bot blocking
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return extractMetadata(doc), nil
}

// extractMetadata pulls the title, description, and link count from a page.
// Prefers OpenGraph values over plain HTML tags.
func extractMetadata(doc *goquery.Document) *CheckResult {
	result := &CheckResult{}

	if ogTitle, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		result.Title = strings.TrimSpace(ogTitle)
	}
	if result.Title == "" {
		result.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if ogDesc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		result.Description = strings.TrimSpace(ogDesc)
	}
	if result.Description == "" {
		if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			result.Description = strings.TrimSpace(desc)
		}
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href != "" && !strings.HasPrefix(href, "#") {
			result.LinkCount++
		}
	})

	return result
}
