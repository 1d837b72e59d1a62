// Package correct invokes an external sequence-to-sequence model that
// normalizes spelling and OCR-artifact errors in raw recognized text.
//
// The model runs behind an HTTP endpoint (the reference deployment
// serves bmd1905/vietnamese-correction-v2). The service itself splits
// input longer than the configured maximum into spans and recombines
// the output; this client only supplies the text and the bound.
package correct

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hoadon/internal/logger"
)

// DefaultMaxLength bounds each correction span; receipts longer than
// this are chunked by the service.
const DefaultMaxLength = 512

// ErrServiceUnavailable is returned when the correction endpoint cannot
// be reached or replies with a non-200 status.
var ErrServiceUnavailable = errors.New("text correction service unavailable")

// Corrector defines the contract with the correction model.
type Corrector interface {
	// Correct returns the corrected form of text. maxLength bounds the
	// input span size the model sees at once; values <= 0 use
	// DefaultMaxLength.
	Correct(ctx context.Context, text string, maxLength int) (string, error)
}

// HTTPCorrector talks to a correction service over HTTP.
type HTTPCorrector struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCorrector creates a client for the correction service at
// baseURL (e.g. "http://localhost:8502").
func NewHTTPCorrector(baseURL string) *HTTPCorrector {
	return &HTTPCorrector{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type correctRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
}

type correctResponse struct {
	CorrectedText string `json:"corrected_text"`
}

// Correct sends the text to the correction endpoint and returns the
// single corrected string.
func (c *HTTPCorrector) Correct(ctx context.Context, text string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	log := logger.WithComponent("corrector")

	body, err := json.Marshal(correctRequest{Text: text, MaxLength: maxLength})
	if err != nil {
		return "", fmt.Errorf("marshaling correction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/correct", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building correction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed correctResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding correction response: %w", err)
	}

	log.Debug().
		Int("input_length", len(text)).
		Int("output_length", len(parsed.CorrectedText)).
		Msg("Text correction completed")
	return parsed.CorrectedText, nil
}

// Passthrough is a Corrector that returns its input unchanged, used
// when no correction endpoint is configured.
type Passthrough struct{}

// Correct returns text as-is.
func (Passthrough) Correct(_ context.Context, text string, _ int) (string, error) {
	return text, nil
}
