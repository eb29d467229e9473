package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"SignalScanner/internal/ports"
)

const apiKeyEnv = "OPENAI_API_KEY"

// ManagerStore resolves secrets from AWS Secrets Manager.
type ManagerStore struct {
	client *secretsmanager.Client
}

var _ ports.SecretStore = (*ManagerStore)(nil)

// NewManagerStore loads the default AWS config for the given region.
func NewManagerStore(ctx context.Context, region string) (*ManagerStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &ManagerStore{client: secretsmanager.NewFromConfig(cfg)}, nil
}

// Get fetches one secret string by name.
func (s *ManagerStore) Get(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", name, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", fmt.Errorf("secret %s has no string value", name)
	}
	return *out.SecretString, nil
}

// ResolveJudgeKey returns the judgment-service credential: secret store first
// when a name is configured, environment fallback otherwise. A run without a
// credential must not start.
func ResolveJudgeKey(ctx context.Context, store ports.SecretStore, secretName string, logger *slog.Logger) (string, error) {
	if store != nil && secretName != "" {
		key, err := store.Get(ctx, secretName)
		if err == nil {
			return key, nil
		}
		logger.Warn("secret store lookup failed, falling back to environment",
			"secret", secretName, "error", err)
	}

	if key := os.Getenv(apiKeyEnv); key != "" {
		return key, nil
	}

	return "", fmt.Errorf("no judgment credential: set %s in the secret store or environment", apiKeyEnv)
}
