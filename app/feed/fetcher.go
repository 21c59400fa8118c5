package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/rss"
)

// Fetcher issues one news-search feed request per configured query. Each
// query is independent: a failure is reported in the Result and never aborts
// the run.
const defaultSearchBaseURL = "https://news.google.com/rss/search"

type Fetcher struct {
	httpClient *http.Client
	rssParser  *rss.Parser
	baseURL    string
	userAgent  string
	timeout    time.Duration
	maxItems   int

	hl   string
	gl   string
	ceid string
}

func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration, maxItems int, hl, gl, ceid string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		rssParser:  &rss.Parser{},
		baseURL:    defaultSearchBaseURL,
		userAgent:  userAgent,
		timeout:    timeout,
		maxItems:   maxItems,
		hl:         hl,
		gl:         gl,
		ceid:       ceid,
	}
}

// SearchURL builds the Google News RSS search URL for a keyword query.
func (f *Fetcher) SearchURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", f.hl)
	params.Set("gl", f.gl)
	params.Set("ceid", f.ceid)
	return f.baseURL + "?" + params.Encode()
}

// Run fetches and parses the feed for one (bundle, query) pair.
func (f *Fetcher) Run(ctx context.Context, bundle, query string) Result {
	result := Result{Bundle: bundle, Query: query}

	data, err := f.fetch(ctx, f.SearchURL(query))
	if err != nil {
		result.Err = fmt.Errorf("failed to fetch feed: %w", err)
		return result
	}

	parsed, err := f.rssParser.Parse(bytes.NewReader(data))
	if err != nil {
		result.Err = fmt.Errorf("failed to parse feed: %w", err)
		return result
	}

	items := parsed.Items
	if f.maxItems > 0 && len(items) > f.maxItems {
		items = items[:f.maxItems]
	}

	result.Entries = make([]RawEntry, 0, len(items))
	for _, item := range items {
		result.Entries = append(result.Entries, f.extractEntry(bundle, query, item))
	}

	return result
}

func (f *Fetcher) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (f *Fetcher) extractEntry(bundle, query string, item *rss.Item) RawEntry {
	entry := RawEntry{
		Bundle:          bundle,
		Query:           query,
		Title:           item.Title,
		Link:            item.Link,
		Published:       item.PubDate,
		PublishedParsed: item.PubDateParsed,
		Blurb:           stripHTML(item.Description),
	}

	if item.Source != nil {
		entry.Source = item.Source.Title
	}

	entry.ImageURL = extractMediaURL(item)

	return entry
}

// extractMediaURL pulls a thumbnail URL from the media RSS extension, trying
// media:thumbnail before media:content.
func extractMediaURL(item *rss.Item) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}

	for _, name := range []string{"thumbnail", "content"} {
		for _, ext := range media[name] {
			if u := ext.Attrs["url"]; u != "" {
				return u
			}
		}
	}

	return ""
}

// stripHTML reduces an HTML description fragment to its visible text.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}
