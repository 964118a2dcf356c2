package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

const defaultOpenAITimeout = 20 * time.Second

var errEmptyCompletion = errors.New("no response from openai")

// OpenAIScorer asks a chat model for per-label zero-shot scores. It satisfies
// the classifier's semantic scorer contract: failures yield an empty map.
type OpenAIScorer struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  infralogger.Logger
}

// NewOpenAIScorer creates a scorer. Extra request options (base URL, retries)
// are passed to the client.
func NewOpenAIScorer(apiKey, model string, logger infralogger.Logger, opts ...option.RequestOption) *OpenAIScorer {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = infralogger.NewNop()
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIScorer{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: defaultOpenAITimeout,
		logger:  logger,
	}
}

// Model returns the configured chat model.
func (s *OpenAIScorer) Model() string { return s.model }

// Scores implements the semantic scorer contract.
func (s *OpenAIScorer) Scores(ctx context.Context, text string) map[domain.Label]float64 {
	scores, err := s.scores(ctx, text)
	if err != nil {
		s.logger.Warn("OpenAI zero-shot scoring failed", infralogger.Error(err))
		return map[domain.Label]float64{}
	}
	return scores
}

func (s *OpenAIScorer) scores(ctx context.Context, text string) (map[domain.Label]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt()),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errEmptyCompletion
	}
	return parseLabelScores(resp.Choices[0].Message.Content)
}

func systemPrompt() string {
	labels := make([]string, 0, len(domain.AllLabels()))
	for _, l := range domain.AllLabels() {
		labels = append(labels, string(l))
	}
	return "You classify civic complaints. For each label in [" + strings.Join(labels, ", ") +
		"] give an independent probability between 0 and 1 that the complaint concerns it. " +
		`Respond only with a JSON object mapping label to probability, e.g. {"crime": 0.9, "housing": 0.1}.`
}

// parseLabelScores reads a JSON object of label scores, tolerating a fenced
// code block. Unknown labels are dropped and scores clamped to [0, 1].
func parseLabelScores(content string) (map[domain.Label]float64, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw map[string]float64
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse openai response: %w", err)
	}

	out := make(map[domain.Label]float64, len(raw))
	for k, v := range raw {
		l, err := domain.ParseLabel(k)
		if err != nil || math.IsNaN(v) {
			continue
		}
		out[l] = math.Min(1, math.Max(0, v))
	}
	return out, nil
}
