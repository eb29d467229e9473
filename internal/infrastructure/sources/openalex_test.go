package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"SignalScanner/internal/domain"
)

func TestOpenAlexSourceQueriesPerBucket(t *testing.T) {
	t.Parallel()

	var filters []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filters = append(filters, r.URL.Query().Get("filter"))
		if r.URL.Query().Get("sort") != "publication_date:desc" {
			t.Errorf("unexpected sort param: %s", r.URL.Query().Get("sort"))
		}

		if strings.Contains(r.URL.Query().Get("filter"), "time travel") {
			_, _ = w.Write([]byte(`{"results":[{
				"title": "Closed timelike curves revisited",
				"doi": "https://doi.org/10.1000/ctc",
				"id": "https://openalex.org/W1",
				"concepts": [{"display_name":"Physics"},{"display_name":"General relativity"}]
			}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[{
			"title": "Loop quantum corrections",
			"doi": "",
			"id": "https://openalex.org/W2",
			"concepts": []
		}]}`))
	}))
	defer server.Close()

	boundary := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	src := NewOpenAlexSource(server.Client(), server.URL,
		[]string{"time travel", "quantum gravity"}, 10, 0, boundary, testLogger())

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(filters) != 2 {
		t.Fatalf("expected one query per bucket, got %d", len(filters))
	}
	for _, f := range filters {
		if !strings.Contains(f, "from_publication_date:2026-08-01") {
			t.Fatalf("filter missing date boundary: %s", f)
		}
	}

	want := []domain.Candidate{
		{
			Title:       "Closed timelike curves revisited",
			Link:        "https://doi.org/10.1000/ctc",
			Summary:     "Topics: Physics, General relativity",
			SourceLabel: "OpenAlex: time travel",
		},
		{
			Title:       "Loop quantum corrections",
			Link:        "https://openalex.org/W2", // id fallback when DOI is absent
			Summary:     "",
			SourceLabel: "OpenAlex: quantum gravity",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenAlexSourceBucketFaultIsolation(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"title":"Survivor","id":"https://openalex.org/W3","concepts":[]}]}`))
	}))
	defer server.Close()

	boundary := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	src := NewOpenAlexSource(server.Client(), server.URL,
		[]string{"first", "second"}, 10, 0, boundary, testLogger())

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("a failing bucket must not fail the fetch: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Survivor" {
		t.Fatalf("expected only the second bucket's result, got %+v", got)
	}
}
