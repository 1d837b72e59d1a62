// Package extract turns corrected receipt text into a structured
// invoice record by prompting a large language model with a detailed
// extraction ruleset, then sanitizing and strictly parsing the reply.
//
// The model boundary is treated as an untrusted text channel: replies
// pass through a fence-stripping sanitizer, a strict JSON parse, and a
// JSON Schema check before a record is returned. Anything that fails
// that gauntlet surfaces as a *FormatError carrying the raw reply.
package extract

import "context"

// Extractor defines the contract with the model backend. Extract
// submits the corrected receipt text wrapped in the extraction ruleset
// and returns the model's raw reply, which is expected, but never
// assumed, to contain a single JSON document.
type Extractor interface {
	Extract(ctx context.Context, correctedText string) (string, error)

	// Close releases the backend client.
	Close() error
}
