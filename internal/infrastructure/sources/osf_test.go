package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOSFSourceQuickKeywordGate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filter[date_published][gte]") != "2026-08-01" {
			t.Errorf("unexpected date filter: %s", r.URL.Query().Get("filter[date_published][gte]"))
		}
		if r.URL.Query().Get("page[size]") != "15" {
			t.Errorf("unexpected page size: %s", r.URL.Query().Get("page[size]"))
		}
		_, _ = w.Write([]byte(`{"data":[
			{"attributes":{"title":"Quantum cognition models","description":"A study of decision making"},
			 "links":{"html":"https://osf.io/abc"}},
			{"attributes":{"title":"Survey methods in sociology","description":"Questionnaire design notes"},
			 "links":{"html":"https://osf.io/def"}}
		]}`))
	}))
	defer server.Close()

	boundary := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	src := NewOSFSource(server.Client(), server.URL, 15,
		[]string{"quantum", "mind"}, boundary, testLogger())

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected only the quantum preprint to pass the gate, got %d", len(got))
	}
	if got[0].Title != "Quantum cognition models" {
		t.Fatalf("unexpected title: %s", got[0].Title)
	}
	if got[0].Link != "https://osf.io/abc" {
		t.Fatalf("unexpected link: %s", got[0].Link)
	}
	if got[0].SourceLabel != "OSF Preprint" {
		t.Fatalf("unexpected label: %s", got[0].SourceLabel)
	}
}

func TestOSFSourceTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	boundary := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	src := NewOSFSource(server.Client(), server.URL, 15, nil, boundary, testLogger())

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error so the aggregator can log and continue")
	}
}
