package usecase

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
	"SignalScanner/internal/relevance"
	"SignalScanner/internal/scanner"
)

const progressTitleLimit = 40

// PipelineDeps wires all collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Sources       *scanner.Registry
	Filter        relevance.Filter
	Judge         ports.Judge
	Sink          ports.ProgressSink
	Logger        *slog.Logger
	Threshold     int
	MaxCandidates int
}

// Pipeline implements the discovery workflow: fetch, dedup, filter, judge,
// rank. Candidates move strictly forward; a dropped candidate is never
// revisited.
type Pipeline struct {
	sources       *scanner.Registry
	filter        relevance.Filter
	judge         ports.Judge
	sink          ports.ProgressSink
	logger        *slog.Logger
	threshold     int
	maxCandidates int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		sources:       deps.Sources,
		filter:        deps.Filter,
		judge:         deps.Judge,
		sink:          deps.Sink,
		logger:        deps.Logger,
		threshold:     deps.Threshold,
		maxCandidates: deps.MaxCandidates,
	}
}

// Run executes one full pass and returns the ranked winners. Cancellation
// stops issuing new requests; whatever completed is still returned.
func (p *Pipeline) Run(ctx context.Context) ([]domain.ScoredResult, domain.Report, error) {
	var report domain.Report

	fetched := p.fetchAll(ctx)
	report.Fetched = len(fetched)

	deduped := dedupeByTitle(fetched)
	report.Deduped = len(deduped)
	p.sink.Report(domain.StageFetch, report.Fetched, report.Fetched, "candidates fetched")
	p.sink.Report(domain.StageFetch, report.Deduped, report.Fetched, "after title dedup")
	p.logger.Info("aggregated candidates", "fetched", report.Fetched, "after_dedup", report.Deduped)

	var relevant []domain.Candidate
	for _, c := range deduped {
		if p.filter.Keep(c.Title, c.Summary) {
			relevant = append(relevant, c)
		}
	}
	report.Filtered = len(relevant)
	p.sink.Report(domain.StageFilter, report.Filtered, report.Deduped, "relevance filter applied")

	winners := p.judgeAll(ctx, capAndShuffle(relevant, p.maxCandidates), &report)

	sort.SliceStable(winners, func(i, j int) bool {
		return winners[i].Verdict.Score > winners[j].Verdict.Score
	})
	report.Winners = len(winners)

	p.sink.Clear()
	return winners, report, nil
}

// fetchAll runs every registered source concurrently. A failing source logs
// and contributes nothing; completion order drives progress reporting so the
// fraction stays monotonic.
func (p *Pipeline) fetchAll(ctx context.Context) []domain.Candidate {
	sources := p.sources.All()
	batches := make([][]domain.Candidate, len(sources))

	var done atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			candidates, err := src.Fetch(gctx)
			if err != nil {
				p.logger.Warn("source failed", "source", src.Name(), "error", err)
			}
			batches[i] = candidates
			p.sink.Report(domain.StageFetch, int(done.Add(1)), len(sources), src.Name())
			return nil
		})
	}
	_ = g.Wait()

	var all []domain.Candidate
	for _, batch := range batches {
		all = append(all, batch...)
	}
	return all
}

func (p *Pipeline) judgeAll(ctx context.Context, candidates []domain.Candidate, report *domain.Report) []domain.ScoredResult {
	var winners []domain.ScoredResult

	total := len(candidates)
	for i, candidate := range candidates {
		if ctx.Err() != nil {
			p.logger.Warn("run canceled, rendering completed results", "judged", report.Judged)
			break
		}

		p.sink.Report(domain.StageJudge, i+1, total, truncateTitle(candidate.Title))

		verdict, err := p.judge.Evaluate(ctx, candidate)
		if err != nil {
			// Per-item failure: the candidate is lost, the batch continues.
			p.logger.Warn("judgment failed", "title", truncateTitle(candidate.Title), "error", err)
			continue
		}
		report.Judged++

		if verdict.Score < p.threshold {
			continue
		}
		winners = append(winners, domain.ScoredResult{Candidate: candidate, Verdict: verdict})
	}

	return winners
}

// dedupeByTitle keeps the first candidate seen for each exact title.
// Duplicate titles across sources are assumed to be the same underlying item.
func dedupeByTitle(candidates []domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.Title]; ok {
			continue
		}
		seen[c.Title] = struct{}{}
		out = append(out, c)
	}
	return out
}

// capAndShuffle bounds judgment spend: shuffle so the cap does not always
// favor the same sources, then keep at most max candidates.
func capAndShuffle(candidates []domain.Candidate, limit int) []domain.Candidate {
	shuffled := make([]domain.Candidate, len(candidates))
	copy(shuffled, candidates)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > limit {
		shuffled = shuffled[:limit]
	}
	return shuffled
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= progressTitleLimit {
		return title
	}
	return string(runes[:progressTitleLimit]) + "..."
}
