package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
)

// OSFSource pulls recent preprints. The upstream date filter is strict but
// topically broad, so a coarse keyword gate runs on our side before a
// preprint is admitted as a candidate.
type OSFSource struct {
	client     *http.Client
	endpoint   string
	pageSize   int
	quickTerms []string
	boundary   time.Time
	logger     *slog.Logger
}

var _ ports.Source = (*OSFSource)(nil)

type osfResponse struct {
	Data []struct {
		Attributes struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"attributes"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"data"`
}

// NewOSFSource builds the adapter from static configuration.
func NewOSFSource(client *http.Client, endpoint string, pageSize int, quickTerms []string, boundary time.Time, logger *slog.Logger) *OSFSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OSFSource{
		client:     client,
		endpoint:   endpoint,
		pageSize:   pageSize,
		quickTerms: quickTerms,
		boundary:   boundary,
		logger:     logger,
	}
}

// Name identifies the adapter inside the registry.
func (s *OSFSource) Name() string {
	return "osf"
}

// Fetch requests one page of recent preprints and keeps those passing the
// quick keyword gate.
func (s *OSFSource) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("filter[date_published][gte]", s.boundary.Format("2006-01-02"))
	params.Set("page[size]", strconv.Itoa(s.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request preprints: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osf returned %s", resp.Status)
	}

	var payload osfResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode preprints: %w", err)
	}

	var results []domain.Candidate
	for _, item := range payload.Data {
		title := item.Attributes.Title
		desc := item.Attributes.Description
		if !s.quickMatch(title + desc) {
			continue
		}
		results = append(results, domain.NewCandidate(
			title,
			item.Links.HTML,
			desc,
			"OSF Preprint",
		))
	}

	return results, nil
}

func (s *OSFSource) quickMatch(text string) bool {
	if len(s.quickTerms) == 0 {
		return true
	}
	text = strings.ToLower(text)
	for _, term := range s.quickTerms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
