package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"golang.org/x/text/cases"
)

// trackingParams are query parameters stripped when deriving the canonical
// URL. They identify campaigns and sessions, not resources.
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"gclsrc":  true,
	"dclid":   true,
	"msclkid": true,
	"mc_cid":  true,
	"mc_eid":  true,
	"igshid":  true,
	"yclid":   true,
	"ncid":    true,
	"ocid":    true,
	"cmpid":   true,
	"smid":    true,
	"sref":    true,
	"spm":     true,
	"ref":     true,
	"ref_src": true,
	"source":  true,
	"_hsenc":  true,
	"_hsmi":   true,
}

// Normalizer turns raw feed entries into Items. It is pure: no I/O, and the
// same entry always produces the same Item (identity key included).
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Run normalizes a batch of raw entries, dropping malformed records. Returns
// the normalized items and the number of records dropped.
func (n *Normalizer) Run(entries []RawEntry) ([]Item, int) {
	items := make([]Item, 0, len(entries))
	dropped := 0

	for _, entry := range entries {
		item, err := n.Normalize(entry)
		if err != nil {
			dropped++
			slog.Debug("Dropping malformed record", "bundle", entry.Bundle, "query", entry.Query, "error", err)
			continue
		}
		items = append(items, item)
	}

	return items, dropped
}

// Normalize canonicalizes a single raw entry. Records missing a title or a
// link are rejected; everything else degrades to empty optional fields.
func (n *Normalizer) Normalize(entry RawEntry) (Item, error) {
	title := collapseWhitespace(entry.Title)
	link := strings.TrimSpace(entry.Link)

	if title == "" {
		return Item{}, fmt.Errorf("missing title")
	}
	if link == "" {
		return Item{}, fmt.Errorf("missing link")
	}

	source := collapseWhitespace(entry.Source)
	canonical := CanonicalURL(link)

	return Item{
		ID:           identityKey(title, source, canonical),
		Bundle:       entry.Bundle,
		Query:        entry.Query,
		Title:        title,
		Source:       source,
		URL:          link,
		CanonicalURL: canonical,
		ImageURL:     strings.TrimSpace(entry.ImageURL),
		Blurb:        collapseWhitespace(entry.Blurb),
		PublishedTS:  publishedTS(entry),
	}, nil
}

// publishedTS extracts the source-reported publish time in epoch seconds.
// Unknown or unparseable dates yield 0, never "now".
func publishedTS(entry RawEntry) int64 {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.Unix()
	}
	if raw := strings.TrimSpace(entry.Published); raw != "" {
		if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// CanonicalURL strips tracking parameters and the fragment from a link and
// sorts the surviving query parameters, so that re-published links differing
// only in campaign noise compare equal. Unparseable links are returned as-is.
func CanonicalURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return raw
	}

	parsed.Scheme = scheme
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	if parsed.RawQuery != "" {
		params := parsed.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			if trackingParams[k] || strings.HasPrefix(strings.ToLower(k), "utm_") {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf strings.Builder
		for i, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for j, v := range vals {
				if i > 0 || j > 0 {
					buf.WriteByte('&')
				}
				buf.WriteString(url.QueryEscape(k))
				buf.WriteByte('=')
				buf.WriteString(url.QueryEscape(v))
			}
		}
		parsed.RawQuery = buf.String()
	}

	return parsed.String()
}

// identityKey derives the cross-run deduplication key. It folds case, strips
// punctuation and collapses whitespace in the title and source so trivial
// re-publication differences map to the same story.
func identityKey(title, source, canonicalURL string) string {
	content := fmt.Sprintf("%s|%s|%s",
		foldForIdentity(title),
		foldForIdentity(source),
		canonicalURL)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

func foldForIdentity(s string) string {
	folded := cases.Fold().String(s)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return collapseWhitespace(b.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
