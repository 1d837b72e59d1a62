package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable is returned when the model backend cannot
	// be reached or keeps erroring after all retries are spent.
	ErrServiceUnavailable = errors.New("LLM extraction service unavailable")

	// ErrEmptyResponse is returned when the model produced no
	// candidates or no text parts at all.
	ErrEmptyResponse = errors.New("LLM returned an empty response")
)

// FormatError reports that the model's reply did not contain parseable
// JSON after sanitization. It always carries the cleaned reply text so
// callers can inspect, log, or re-prompt; the model's output is never
// discarded. A FormatError is terminal for the invocation but must not
// be retried blindly: resending the same prompt reproduces the same
// malformed output.
type FormatError struct {
	// Raw is the sanitized reply text that failed to parse.
	Raw string

	// Err is the underlying JSON or schema error.
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("extract: model reply is not valid JSON: %v", e.Err)
}

// Unwrap returns the underlying parse error.
func (e *FormatError) Unwrap() error {
	return e.Err
}
