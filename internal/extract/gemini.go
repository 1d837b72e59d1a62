package extract

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"hoadon/internal/logger"
)

// GeminiExtractor implements Extractor against Google's Gemini API.
type GeminiExtractor struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	maxRetries int
	log        zerolog.Logger
}

// NewGeminiExtractor creates the extractor. keys is a pool of API keys;
// one is chosen at random per client so a fleet of workers spreads load
// across quotas. modelName defaults to gemini-2.5-flash.
func NewGeminiExtractor(ctx context.Context, keys []string, modelName string, maxRetries int) (*GeminiExtractor, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one Gemini API key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}

	key := keys[rand.Intn(len(keys))]
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	var temperature float32 = 0
	model.Temperature = &temperature

	log := logger.WithComponent("extract-gemini")
	log.Debug().
		Str("model", modelName).
		Str("key_prefix", keyPrefix(key)).
		Msg("Gemini extractor ready")

	return &GeminiExtractor{
		client:     client,
		model:      model,
		maxRetries: maxRetries,
		log:        log,
	}, nil
}

// Extract submits the ruleset prompt and returns the model's raw text
// reply. Transient backend errors are retried with exponential backoff;
// a reply that arrives, however malformed, is returned as-is for the
// sanitizer to judge.
func (g *GeminiExtractor) Extract(ctx context.Context, correctedText string) (string, error) {
	prompt := BuildPrompt(correctedText)

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			g.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", g.maxRetries).
				Msg("Gemini request failed, retrying")
			if attempt < g.maxRetries {
				backoff(ctx, attempt)
			}
			continue
		}

		text, err := candidateText(resp)
		if err != nil {
			lastErr = err
			g.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("Gemini reply had no text, retrying")
			if attempt < g.maxRetries {
				backoff(ctx, attempt)
			}
			continue
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, lastErr)
}

// Close closes the underlying Gemini client.
func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// backoff sleeps 1s, 2s, 4s... between attempts, bailing early when the
// context ends.
func backoff(ctx context.Context, attempt int) {
	delay := time.Duration(1<<(attempt-1)) * time.Second
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func keyPrefix(key string) string {
	if len(key) <= 5 {
		return key
	}
	return key[:5]
}
