package domain

// SummaryLimit bounds summary text carried through the pipeline; longer
// upstream abstracts are truncated at creation to keep judgment payloads small.
const SummaryLimit = 600

// Candidate is a discovered article normalized from any source.
// Title and SourceLabel are always populated; Link is best-effort and may be
// a DOI, a landing-page URL, or empty.
type Candidate struct {
	Title       string
	Link        string
	Summary     string
	SourceLabel string
}

// Verdict is the structured judgment for one candidate.
type Verdict struct {
	Score    int    `json:"score"`
	Headline string `json:"headline"`
	Reason   string `json:"reason"`
}

// ScoredResult pairs a candidate with its verdict; the unit rendered to the
// operator.
type ScoredResult struct {
	Candidate Candidate
	Verdict   Verdict
}

// Report carries the per-run counters surfaced to the operator.
type Report struct {
	Fetched  int
	Deduped  int
	Filtered int
	Judged   int
	Winners  int
}

// Stage names reported to the progress sink.
const (
	StageFetch  = "fetch"
	StageFilter = "filter"
	StageJudge  = "judge"
)

// TruncateSummary clips s to SummaryLimit runes.
func TruncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= SummaryLimit {
		return s
	}
	return string(runes[:SummaryLimit])
}

// NewCandidate builds a candidate, substituting placeholders so Title and
// SourceLabel are never empty and clipping the summary.
func NewCandidate(title, link, summary, sourceLabel string) Candidate {
	if title == "" {
		title = "No Title"
	}
	if sourceLabel == "" {
		sourceLabel = "Unknown Source"
	}
	return Candidate{
		Title:       title,
		Link:        link,
		Summary:     TruncateSummary(summary),
		SourceLabel: sourceLabel,
	}
}
