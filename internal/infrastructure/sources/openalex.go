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

// OpenAlexSource queries the works-search API once per topic bucket so the
// merged result keeps topic diversity instead of letting the most common
// bucket crowd out the rest. Successive queries are separated by a courtesy
// delay to stay under the endpoint's rate limits.
type OpenAlexSource struct {
	client   *http.Client
	endpoint string
	buckets  []string
	cap      int
	delay    time.Duration
	boundary time.Time
	logger   *slog.Logger
}

var _ ports.Source = (*OpenAlexSource)(nil)

type openAlexConcept struct {
	DisplayName string `json:"display_name"`
}

type openAlexWork struct {
	Title    string            `json:"title"`
	DOI      string            `json:"doi"`
	ID       string            `json:"id"`
	Concepts []openAlexConcept `json:"concepts"`
}

type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

// NewOpenAlexSource builds the adapter from static configuration.
func NewOpenAlexSource(client *http.Client, endpoint string, buckets []string, perQueryCap int, delay time.Duration, boundary time.Time, logger *slog.Logger) *OpenAlexSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenAlexSource{
		client:   client,
		endpoint: endpoint,
		buckets:  buckets,
		cap:      perQueryCap,
		delay:    delay,
		boundary: boundary,
		logger:   logger,
	}
}

// Name identifies the adapter inside the registry.
func (s *OpenAlexSource) Name() string {
	return "openalex"
}

// Fetch issues one query per topic bucket. A failing query contributes zero
// candidates; later buckets are still queried.
func (s *OpenAlexSource) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	var results []domain.Candidate

	for i, bucket := range s.buckets {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		candidates, err := s.query(ctx, bucket)
		if err != nil {
			s.logger.Warn("openalex bucket skipped", "bucket", bucket, "error", err)
			continue
		}
		results = append(results, candidates...)
	}

	return results, nil
}

func (s *OpenAlexSource) query(ctx context.Context, bucket string) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf("from_publication_date:%s,default.search:%q",
		s.boundary.Format("2006-01-02"), bucket))
	params.Set("per-page", strconv.Itoa(s.cap))
	params.Set("sort", "publication_date:desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request works: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openalex returned %s", resp.Status)
	}

	var payload openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode works: %w", err)
	}

	// The bucket stays in the label so rendered output shows which query
	// produced each hit.
	label := "OpenAlex: " + bucket
	candidates := make([]domain.Candidate, 0, len(payload.Results))
	for _, item := range payload.Results {
		link := item.DOI
		if link == "" {
			link = item.ID
		}
		candidates = append(candidates, domain.NewCandidate(
			item.Title,
			link,
			conceptSummary(item.Concepts),
			label,
		))
	}

	return candidates, nil
}

// conceptSummary synthesizes readable summary text from concept labels, since
// OpenAlex stores abstracts as an inverted index rather than plain text.
func conceptSummary(concepts []openAlexConcept) string {
	names := make([]string, 0, 5)
	for _, c := range concepts {
		if len(names) == 5 {
			break
		}
		if c.DisplayName != "" {
			names = append(names, c.DisplayName)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "Topics: " + strings.Join(names, ", ")
}
