package extract

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"hoadon/internal/logger"
)

// systemInstruction frames the role before the ruleset prompt. Gemini
// takes the whole ruleset in one user turn; chat-completion APIs split
// role framing into the system message.
const systemInstruction = "Bạn là một hệ thống trích xuất dữ liệu hóa đơn. Chỉ trả về JSON thuần, không giải thích."

// OpenAIExtractor implements Extractor over the chat-completions API.
// With a custom base URL it also serves OpenAI-compatible local
// servers.
type OpenAIExtractor struct {
	client     *openai.Client
	model      string
	maxRetries int
	log        zerolog.Logger
}

// NewOpenAIExtractor creates the extractor. baseURL may be empty for
// the hosted API; model defaults to gpt-4o-mini.
func NewOpenAIExtractor(apiKey, baseURL, model string, maxRetries int) (*OpenAIExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIExtractor{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		maxRetries: maxRetries,
		log:        logger.WithComponent("extract-openai"),
	}, nil
}

// Extract submits the ruleset prompt and returns the raw reply text.
func (o *OpenAIExtractor) Extract(ctx context.Context, correctedText string) (string, error) {
	prompt := BuildPrompt(correctedText)

	var lastErr error
	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       o.model,
			Temperature: 0,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			o.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", o.maxRetries).
				Msg("Chat completion failed, retrying")
			if attempt < o.maxRetries {
				backoff(ctx, attempt)
			}
			continue
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			lastErr = ErrEmptyResponse
			if attempt < o.maxRetries {
				backoff(ctx, attempt)
			}
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, lastErr)
}

// Close is a no-op; the HTTP client needs no teardown.
func (o *OpenAIExtractor) Close() error {
	return nil
}
