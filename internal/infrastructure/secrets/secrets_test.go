package secrets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeStore struct {
	value string
	err   error
}

func (f *fakeStore) Get(ctx context.Context, name string) (string, error) {
	return f.value, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveJudgeKeyPrefersSecretStore(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	key, err := ResolveJudgeKey(context.Background(), &fakeStore{value: "store-key"}, "judge-key", discard())
	if err != nil {
		t.Fatalf("ResolveJudgeKey error: %v", err)
	}
	if key != "store-key" {
		t.Fatalf("expected secret store to win, got %q", key)
	}
}

func TestResolveJudgeKeyFallsBackToEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	key, err := ResolveJudgeKey(context.Background(), &fakeStore{err: errors.New("denied")}, "judge-key", discard())
	if err != nil {
		t.Fatalf("ResolveJudgeKey error: %v", err)
	}
	if key != "env-key" {
		t.Fatalf("expected environment fallback, got %q", key)
	}
}

func TestResolveJudgeKeyFatalWhenAbsent(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := ResolveJudgeKey(context.Background(), nil, "", discard()); err == nil {
		t.Fatal("expected an error when no credential is available")
	}
}
