package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
)

// DOAJSource searches the open-access article directory. Records arrive as
// bibjson entries carrying title, fulltext links and an abstract.
type DOAJSource struct {
	client   *http.Client
	endpoint string
	query    string
	pageSize int
	boundary time.Time
	logger   *slog.Logger
}

var _ ports.Source = (*DOAJSource)(nil)

type doajResponse struct {
	Results []struct {
		CreatedDate string `json:"created_date"`
		BibJSON     struct {
			Title    string `json:"title"`
			Abstract string `json:"abstract"`
			Link     []struct {
				Type string `json:"type"`
				URL  string `json:"url"`
			} `json:"link"`
		} `json:"bibjson"`
	} `json:"results"`
}

// NewDOAJSource builds the adapter from static configuration.
func NewDOAJSource(client *http.Client, endpoint, query string, pageSize int, boundary time.Time, logger *slog.Logger) *DOAJSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &DOAJSource{
		client:   client,
		endpoint: endpoint,
		query:    query,
		pageSize: pageSize,
		boundary: boundary,
		logger:   logger,
	}
}

// Name identifies the adapter inside the registry.
func (s *DOAJSource) Name() string {
	return "doaj"
}

// Fetch runs a single directory search. Records older than the lookback
// boundary are skipped only when their created date actually parses; records
// without a usable date are included.
func (s *DOAJSource) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	searchURL := s.endpoint + "/" + url.PathEscape(s.query) +
		"?pageSize=" + strconv.Itoa(s.pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("doaj returned %s", resp.Status)
	}

	var payload doajResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}

	var results []domain.Candidate
	for _, item := range payload.Results {
		if created, err := time.Parse(time.RFC3339, item.CreatedDate); err == nil && created.Before(s.boundary) {
			continue
		}

		link := ""
		for _, l := range item.BibJSON.Link {
			if l.URL != "" {
				link = l.URL
				break
			}
		}

		results = append(results, domain.NewCandidate(
			item.BibJSON.Title,
			link,
			item.BibJSON.Abstract,
			"DOAJ Open Access",
		))
	}

	return results, nil
}
