package domain

import (
	"strings"
	"testing"
)

func TestNewCandidatePlaceholders(t *testing.T) {
	t.Parallel()

	c := NewCandidate("", "", "", "")
	if c.Title != "No Title" {
		t.Fatalf("expected title placeholder, got %q", c.Title)
	}
	if c.SourceLabel != "Unknown Source" {
		t.Fatalf("expected source placeholder, got %q", c.SourceLabel)
	}
	// Link stays best-effort; empty is allowed.
	if c.Link != "" {
		t.Fatalf("expected empty link preserved, got %q", c.Link)
	}
}

func TestNewCandidateTruncatesSummary(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", SummaryLimit+100)
	c := NewCandidate("t", "", long, "s")
	if got := len([]rune(c.Summary)); got != SummaryLimit {
		t.Fatalf("expected summary clipped to %d runes, got %d", SummaryLimit, got)
	}
}

func TestTruncateSummaryShortInputUnchanged(t *testing.T) {
	t.Parallel()

	if got := TruncateSummary("short text"); got != "short text" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
