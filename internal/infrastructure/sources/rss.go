package sources

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
)

const userAgent = "SignalScanner/1.0 (science shortlist scanner)"

// FeedSource scans a fixed list of RSS/Atom endpoints. Some origins reject
// anonymous clients, so every request carries a descriptive User-Agent.
type FeedSource struct {
	client   *http.Client
	urls     []string
	cap      int
	boundary time.Time
	logger   *slog.Logger
}

var _ ports.Source = (*FeedSource)(nil)

// NewFeedSource wires an HTTP client; a nil client gets a 10s timeout default.
func NewFeedSource(client *http.Client, urls []string, perFeedCap int, boundary time.Time, logger *slog.Logger) *FeedSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FeedSource{client: client, urls: urls, cap: perFeedCap, boundary: boundary, logger: logger}
}

// Name identifies the adapter inside the registry.
func (s *FeedSource) Name() string {
	return "rss"
}

// Fetch walks every configured feed. A feed that fails to download or parse
// contributes zero candidates; the remaining feeds are still scanned.
func (s *FeedSource) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	parser := gofeed.NewParser()
	var results []domain.Candidate

	for _, feedURL := range s.urls {
		feed, err := s.fetchFeed(ctx, parser, feedURL)
		if err != nil {
			s.logger.Warn("feed skipped", "url", feedURL, "error", err)
			continue
		}

		label := feed.Title
		if label == "" {
			label = "RSS Source"
		}

		// The cap bounds how deep we read into a feed, so it applies before
		// the date filter; stale entries among the first N are not replaced
		// by older ones further down.
		entries := feed.Items
		if len(entries) > s.cap {
			entries = entries[:s.cap]
		}
		for _, entry := range entries {
			// Entries without a parseable date are included optimistically.
			if entry.PublishedParsed != nil && entry.PublishedParsed.Before(s.boundary) {
				continue
			}
			results = append(results, domain.NewCandidate(
				entry.Title,
				entry.Link,
				stripHTML(entry.Description),
				label,
			))
		}
	}

	return results, nil
}

func (s *FeedSource) fetchFeed(ctx context.Context, parser *gofeed.Parser, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{status: resp.Status}
	}

	return parser.Parse(resp.Body)
}

// stripHTML flattens feed summaries that arrive as HTML fragments.
func stripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(doc.Text())
}

type statusError struct {
	status string
}

func (e *statusError) Error() string {
	return "unexpected status " + e.status
}
