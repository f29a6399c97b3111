package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jacob-mennell/fast-insurance-claims/config"
	"github.com/jacob-mennell/fast-insurance-claims/model"
	"github.com/sashabaranov/go-openai"
)

// Fraud labels returned by every scorer.
const (
	LabelSuspicious    = "suspicious"
	LabelNotSuspicious = "not suspicious"
)

// FraudResult mirrors a two-label classification over a claim.
type FraudResult struct {
	Labels         []string  `json:"labels"`
	Scores         []float64 `json:"scores"`
	PredictedLabel string    `json:"predicted_label"`
	Probability    float64   `json:"fraud_probability"`
}

// FraudScorer is the pluggable external scorer. Implementations must
// return a probability in [0, 1].
type FraudScorer interface {
	Score(ctx context.Context, claim *model.Claim) (*FraudResult, error)
}

// NewFraudScorer picks the implementation named in the config.
func NewFraudScorer(cfg *config.FraudConfig) (FraudScorer, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIScorer(cfg)
	case "", "heuristic":
		return &HeuristicScorer{}, nil
	default:
		return nil, fmt.Errorf("unknown fraud provider: %s", cfg.Provider)
	}
}

// ClaimText flattens the claim fields the scorer sees.
func ClaimText(claim *model.Claim) string {
	return fmt.Sprintf("Claimant: %s, Amount: %.2f, Status: %s, Description: %s",
		claim.ClaimantName, claim.Amount, claim.Status, claim.Description)
}

func resultFromProbability(p float64) *FraudResult {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	result := &FraudResult{Probability: p}
	if p >= 0.5 {
		result.PredictedLabel = LabelSuspicious
		result.Labels = []string{LabelSuspicious, LabelNotSuspicious}
		result.Scores = []float64{p, 1 - p}
	} else {
		result.PredictedLabel = LabelNotSuspicious
		result.Labels = []string{LabelNotSuspicious, LabelSuspicious}
		result.Scores = []float64{1 - p, p}
	}
	return result
}

// HeuristicScorer is the default scorer when no model provider is
// configured. It is a stand-in, not a trained model: a handful of fixed
// signals summed into a bounded probability.
type HeuristicScorer struct{}

func (s *HeuristicScorer) Score(_ context.Context, claim *model.Claim) (*FraudResult, error) {
	p := 0.05

	if claim.Amount >= 10000 {
		p += 0.35
	} else if claim.Amount >= 5000 {
		p += 0.20
	}

	// Suspiciously round amounts
	if claim.Amount > 0 && claim.Amount == float64(int64(claim.Amount)) && int64(claim.Amount)%1000 == 0 {
		p += 0.15
	}

	desc := strings.ToLower(claim.Description)
	for _, keyword := range []string{"total loss", "stolen", "fire", "no witnesses"} {
		if strings.Contains(desc, keyword) {
			p += 0.15
		}
	}

	return resultFromProbability(p), nil
}

// OpenAIScorer asks a chat model to rate the claim.
type OpenAIScorer struct {
	client *openai.Client
	model  string
}

// NewOpenAIScorer creates a scorer backed by the OpenAI API.
func NewOpenAIScorer(cfg *config.FraudConfig) (*OpenAIScorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for the openai fraud provider")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(clientConfig)

	m := cfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}

	return &OpenAIScorer{client: client, model: m}, nil
}

func (s *OpenAIScorer) Score(ctx context.Context, claim *model.Claim) (*FraudResult, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You rate insurance claims for fraud risk. Reply with a single number between 0 and 1, where 1 means certainly fraudulent. Reply with the number only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: ClaimText(claim),
			},
		},
		MaxTokens:   10,
		Temperature: 0,
	}

	resp, err := s.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	p, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected scorer reply %q: %w", text, err)
	}

	return resultFromProbability(p), nil
}
