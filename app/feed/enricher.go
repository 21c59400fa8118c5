package feed

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Enricher fills in missing images and blurbs by scraping Open Graph
// metadata from the publisher page. Strictly best-effort: any failure leaves
// the item untouched, and only the top of the (already sorted) item list is
// attempted to keep run time bounded.
type Enricher struct {
	httpClient *http.Client
	userAgent  string
	limit      int
}

func NewEnricher(httpClient *http.Client, userAgent string, limit int) *Enricher {
	return &Enricher{
		httpClient: httpClient,
		userAgent:  userAgent,
		limit:      limit,
	}
}

// Run scans the first limit items and enriches those missing an image or a
// blurb. The slice is mutated in place; the return value is the number of
// items that gained at least one field.
func (e *Enricher) Run(ctx context.Context, items []Item) int {
	if e.limit <= 0 {
		return 0
	}

	scan := items
	if len(scan) > e.limit {
		scan = scan[:e.limit]
	}

	enriched := 0
	for i := range scan {
		if ctx.Err() != nil {
			break
		}

		item := &scan[i]
		needImage := item.ImageURL == ""
		needBlurb := item.Blurb == ""
		if !needImage && !needBlurb {
			continue
		}

		target := item.CanonicalURL
		if target == "" {
			target = item.URL
		}
		if target == "" {
			continue
		}

		image, blurb := e.fetchOpenGraph(ctx, target)
		changed := false
		if needImage && image != "" {
			item.ImageURL = image
			changed = true
		}
		if needBlurb && blurb != "" {
			item.Blurb = blurb
			changed = true
		}
		if changed {
			enriched++
		}
	}

	return enriched
}

// fetchOpenGraph pulls og:image and og:description (falling back to the
// plain description meta tag) from an HTML page. Non-HTML responses and all
// errors yield empty results.
func (e *Enricher) fetchOpenGraph(ctx context.Context, pageURL string) (string, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", ""
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		slog.Debug("Open Graph fetch failed", "url", pageURL, "error", err)
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ""
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "text/html") {
		return "", ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", ""
	}

	image := metaContent(doc, "og:image")
	blurb := metaContent(doc, "og:description")
	if blurb == "" {
		blurb = metaContent(doc, "description")
	}

	return image, strings.Join(strings.Fields(blurb), " ")
}

func metaContent(doc *goquery.Document, name string) string {
	selectors := []string{
		`meta[property="` + name + `"]`,
		`meta[name="` + name + `"]`,
	}
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
