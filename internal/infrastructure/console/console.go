package console

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
)

// Sink renders progress and the final ranked shortlist on the operator
// console. Progress goes through the slog handler, so Report is safe for
// concurrent use as ports.ProgressSink requires.
type Sink struct {
	out    io.Writer
	logger *slog.Logger
}

var _ ports.ProgressSink = (*Sink)(nil)

// NewSink writes rendered output to out and progress lines to the logger.
func NewSink(out io.Writer, logger *slog.Logger) *Sink {
	return &Sink{out: out, logger: logger}
}

// Report logs one progress step with its numeric fraction.
func (s *Sink) Report(stage string, current, total int, label string) {
	fraction := 0.0
	if total > 0 {
		fraction = float64(current) / float64(total)
	}
	s.logger.Info("progress",
		"stage", stage,
		"step", fmt.Sprintf("%d/%d", current, total),
		"fraction", fmt.Sprintf("%.2f", fraction),
		"item", label)
}

// Clear marks the end of progress reporting.
func (s *Sink) Clear() {
	s.logger.Debug("progress done")
}

// RenderShortlist prints the ranked winners table, or a distinct notice when
// the run completed with no matches.
func (s *Sink) RenderShortlist(results []domain.ScoredResult, report domain.Report) {
	fmt.Fprintf(s.out, "Scanned %d candidates (%d after dedup, %d relevant, %d judged).\n",
		report.Fetched, report.Deduped, report.Filtered, report.Judged)

	if len(results) == 0 {
		fmt.Fprintln(s.out, "No candidates matched. Sources may be quiet, or the keywords are too specific.")
		return
	}

	fmt.Fprintf(s.out, "Today's top picks (%d):\n", len(results))

	w := table.NewWriter()
	w.SetOutputMirror(s.out)
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Score", "Headline", "Why", "Link", "Source", "Original Title"})
	for _, r := range results {
		w.AppendRow(table.Row{
			fmt.Sprintf("%d/10", r.Verdict.Score),
			r.Verdict.Headline,
			r.Verdict.Reason,
			r.Candidate.Link,
			r.Candidate.SourceLabel,
			r.Candidate.Title,
		})
	}
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 40},
		{Number: 3, WidthMax: 50},
		{Number: 6, WidthMax: 40},
	})
	w.Render()
}
