package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"SignalScanner/internal/config"
	"SignalScanner/internal/domain"
	"SignalScanner/internal/ports"
)

const (
	requestTimeout = 60 * time.Second
	// One extra attempt for transient transport errors. Parse failures are
	// never retried; a malformed verdict drops the candidate.
	maxAttempts = 2
)

// Rubric is the fixed evaluation policy sent with every candidate.
type Rubric struct {
	Topics   []string
	Exclude  []string
	Boundary time.Time
}

// Client scores candidates through an OpenAI-compatible chat API with a
// schema-constrained response.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	rubric      Rubric
}

var _ ports.Judge = (*Client)(nil)

// verdictPayload uses pointers so a response omitting a required key is
// detected instead of defaulting to zero values.
type verdictPayload struct {
	Score    *float64 `json:"score"`
	Headline *string  `json:"headline"`
	Reason   *string  `json:"reason"`
}

var verdictSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"score":    {Type: jsonschema.Number, Description: "Acceptance score from 0 to 10"},
		"headline": {Type: jsonschema.String, Description: "Restyled headline in the target publication voice"},
		"reason":   {Type: jsonschema.String, Description: "One to few sentences on why the story fits"},
	},
	Required:             []string{"score", "headline", "reason"},
	AdditionalProperties: false,
}

// NewClient builds a judgment client from configuration and a resolved key.
func NewClient(cfg config.JudgeConfig, apiKey string, rubric Rubric) *Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}
	clientCfg.HTTPClient = &http.Client{Timeout: requestTimeout}

	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		rubric:      rubric,
	}
}

// Evaluate sends one candidate with the rubric and parses the structured
// verdict. Any response that is not a complete, in-range verdict is an error;
// the caller drops the candidate and continues.
func (c *Client) Evaluate(ctx context.Context, candidate domain.Candidate) (domain.Verdict, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You respond only with a structured object matching the provided schema.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: c.prompt(candidate),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "verdict",
				Schema: &verdictSchema,
				Strict: true,
			},
		},
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err = c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return domain.Verdict{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("judgment call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return domain.Verdict{}, fmt.Errorf("judgment response has no choices")
	}

	return parseVerdict(resp.Choices[0].Message.Content)
}

func parseVerdict(content string) (domain.Verdict, error) {
	content = cleanResponse(content)

	var payload verdictPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	if payload.Score == nil || payload.Headline == nil || payload.Reason == nil {
		return domain.Verdict{}, fmt.Errorf("verdict missing required field")
	}

	score := int(*payload.Score)
	if score < 0 || score > 10 {
		return domain.Verdict{}, fmt.Errorf("verdict score %d out of range", score)
	}

	return domain.Verdict{
		Score:    score,
		Headline: *payload.Headline,
		Reason:   *payload.Reason,
	}, nil
}

// cleanResponse strips Markdown code fences some models wrap around JSON.
func cleanResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func (c *Client) prompt(candidate domain.Candidate) string {
	var b strings.Builder
	b.WriteString("Role: Deputy short-form science editor.\n")
	b.WriteString("Task: Evaluate this story for the shortlist.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", candidate.Title)
	fmt.Fprintf(&b, "Summary: %s\n", candidate.Summary)
	fmt.Fprintf(&b, "Source: %s\n\n", candidate.SourceLabel)
	b.WriteString("STRICT criteria:\n")
	fmt.Fprintf(&b, "- Published or posted after %s.\n", c.rubric.Boundary.Format("Jan 2, 2006"))
	fmt.Fprintf(&b, "- MUST fall into one of: %s.\n", strings.Join(c.rubric.Topics, "; "))
	if len(c.rubric.Exclude) > 0 {
		fmt.Fprintf(&b, "- MUST NOT be administrative, policy or educational material (e.g. %s).\n",
			strings.Join(c.rubric.Exclude, ", "))
	}
	b.WriteString("- MUST be a noteworthy result, not incremental research.\n\n")
	b.WriteString(`Return "score" (number 0-10), "headline" (punchy magazine style) and "reason" (why it fits).`)
	return b.String()
}
