package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "SIGNALSCANNER_CONFIG"
	logLevelEnv      = "SIGNALSCANNER_LOG_LEVEL"
	judgeModelEnv    = "SIGNALSCANNER_JUDGE_MODEL"
	judgeEndpointEnv = "SIGNALSCANNER_JUDGE_ENDPOINT"
	secretNameEnv    = "SIGNALSCANNER_SECRET_NAME"
	awsRegionEnv     = "AWS_REGION"
)

// Config holds all settings for one pipeline run.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Feeds    FeedConfig     `yaml:"feeds"`
	OpenAlex OpenAlexConfig `yaml:"openalex"`
	OSF      OSFConfig      `yaml:"osf"`
	DOAJ     DOAJConfig     `yaml:"doaj"`
	Judge    JudgeConfig    `yaml:"judge"`
	Secrets  SecretsConfig  `yaml:"secrets"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PipelineConfig carries the cost and relevance knobs shared across stages.
// Caps, threshold and maxCandidates are the run's actual cost controls and
// must be explicit positive values.
type PipelineConfig struct {
	LookbackDays    int      `yaml:"lookbackDays"`
	IncludeKeywords []string `yaml:"includeKeywords"`
	ExcludeKeywords []string `yaml:"excludeKeywords"`
	ScoreThreshold  int      `yaml:"scoreThreshold"`
	MaxCandidates   int      `yaml:"maxCandidates"`
}

// Boundary returns the earliest publication date admitted this run.
func (p PipelineConfig) Boundary(now time.Time) time.Time {
	return now.UTC().AddDate(0, 0, -p.LookbackDays).Truncate(24 * time.Hour)
}

// FeedConfig lists the RSS/Atom endpoints to scan.
type FeedConfig struct {
	URLs       []string `yaml:"urls"`
	PerFeedCap int      `yaml:"perFeedCap"`
}

// OpenAlexConfig describes the works-search adapter. One query is issued per
// topic bucket so no single topic crowds out the others.
type OpenAlexConfig struct {
	Endpoint        string   `yaml:"endpoint"`
	TopicBuckets    []string `yaml:"topicBuckets"`
	PerQueryCap     int      `yaml:"perQueryCap"`
	CourtesyDelayMs int      `yaml:"courtesyDelayMs"`
}

// OSFConfig describes the preprints adapter.
type OSFConfig struct {
	Endpoint   string   `yaml:"endpoint"`
	PageSize   int      `yaml:"pageSize"`
	QuickTerms []string `yaml:"quickTerms"`
}

// DOAJConfig describes the open-access directory adapter.
type DOAJConfig struct {
	Endpoint string `yaml:"endpoint"`
	PageSize int    `yaml:"pageSize"`
}

// JudgeConfig defines how to contact the judgment service. The API key is
// resolved separately (secret store first, environment fallback).
type JudgeConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// SecretsConfig points at the Secrets Manager entry holding the judge key.
// An empty SecretName skips the secret store and uses the environment only.
type SecretsConfig struct {
	SecretName string `yaml:"secretName"`
	Region     string `yaml:"region"`
}

// Load reads .env, YAML configuration (if present) and environment overrides.
// A config path the operator explicitly supplied (flag or environment) that
// cannot be read or parsed fails the run: the file carries the cost knobs,
// and silently running on defaults would spend a budget nobody set.
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil {
		log.Printf("config: no .env file, using OS environment")
	}

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(judgeModelEnv); v != "" {
		c.Judge.Model = v
	}
	if v := os.Getenv(judgeEndpointEnv); v != "" {
		c.Judge.Endpoint = v
	}
	if v := os.Getenv(secretNameEnv); v != "" {
		c.Secrets.SecretName = v
	}
	if v := os.Getenv(awsRegionEnv); v != "" {
		c.Secrets.Region = v
	}
}

// Validate rejects configurations whose cost knobs are missing or absurd.
func (c Config) Validate() error {
	if c.Pipeline.LookbackDays <= 0 {
		return fmt.Errorf("pipeline.lookbackDays must be positive, got %d", c.Pipeline.LookbackDays)
	}
	if c.Pipeline.ScoreThreshold < 0 || c.Pipeline.ScoreThreshold > 10 {
		return fmt.Errorf("pipeline.scoreThreshold must be in [0,10], got %d", c.Pipeline.ScoreThreshold)
	}
	if c.Pipeline.MaxCandidates <= 0 {
		return fmt.Errorf("pipeline.maxCandidates must be positive, got %d", c.Pipeline.MaxCandidates)
	}
	if c.Feeds.PerFeedCap <= 0 {
		return fmt.Errorf("feeds.perFeedCap must be positive, got %d", c.Feeds.PerFeedCap)
	}
	if c.OpenAlex.PerQueryCap <= 0 {
		return fmt.Errorf("openalex.perQueryCap must be positive, got %d", c.OpenAlex.PerQueryCap)
	}
	if c.OSF.PageSize <= 0 {
		return fmt.Errorf("osf.pageSize must be positive, got %d", c.OSF.PageSize)
	}
	if c.DOAJ.PageSize <= 0 {
		return fmt.Errorf("doaj.pageSize must be positive, got %d", c.DOAJ.PageSize)
	}
	if c.Judge.Model == "" {
		return fmt.Errorf("judge.model must be set")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Pipeline: PipelineConfig{
			LookbackDays: 14,
			IncludeKeywords: []string{
				"time travel", "consciousness", "holographic universe",
				"quantum gravity", "bio resurrection", "life extension",
				"simulation theory", "synthetic biology", "warp drive",
			},
			ExcludeKeywords: []string{
				"classroom", "curriculum", "pedagogy", "policy brief",
			},
			ScoreThreshold: 6,
			MaxCandidates:  25,
		},
		Feeds: FeedConfig{
			URLs: []string{
				"http://www.nature.com/subjects/scientific-reports.rss",
				"http://journals.plos.org/plosone/feed/atom",
				"http://export.arxiv.org/rss/quant-ph",
				"http://export.arxiv.org/rss/q-bio",
				"http://export.arxiv.org/rss/physics.soc-ph",
				"http://export.arxiv.org/rss/cs.AI",
			},
			PerFeedCap: 5,
		},
		OpenAlex: OpenAlexConfig{
			Endpoint: "https://api.openalex.org/works",
			TopicBuckets: []string{
				"time travel", "consciousness", "quantum gravity",
				"life extension", "synthetic biology",
			},
			PerQueryCap:     10,
			CourtesyDelayMs: 500,
		},
		OSF: OSFConfig{
			Endpoint: "https://api.osf.io/v2/preprints/",
			PageSize: 15,
			QuickTerms: []string{
				"time", "quantum", "mind", "bio", "life", "ai", "simulation",
			},
		},
		DOAJ: DOAJConfig{
			Endpoint: "https://doaj.org/api/search/articles",
			PageSize: 10,
		},
		Judge: JudgeConfig{
			Endpoint:    "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.8,
		},
		Secrets: SecretsConfig{Region: "us-west-2"},
	}
}
