package ports

import (
	"context"

	"SignalScanner/internal/domain"
)

// Source pulls candidates from one upstream provider. A source that fails
// entirely returns an error; the aggregator logs it and keeps going.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Candidate, error)
}

// Judge scores a single candidate against the editorial rubric.
type Judge interface {
	Evaluate(ctx context.Context, c domain.Candidate) (domain.Verdict, error)
}

// SecretStore resolves named credentials from an external secret backend.
type SecretStore interface {
	Get(ctx context.Context, name string) (string, error)
}

// ProgressSink receives liveness signals from the pipeline; the presentation
// layer implements it. Fetch progress is reported from one goroutine per
// source, so implementations must be safe for concurrent use.
type ProgressSink interface {
	Report(stage string, current, total int, label string)
	Clear()
}
