package extract

import (
	"encoding/json"
	"strings"

	"hoadon/pkg/models"
)

// stripFences removes one leading markdown code fence, with an optional
// language tag, and one trailing fence. Models instructed to answer
// with bare JSON still wrap it in ```json blocks often enough that this
// is the first thing we do with every reply. Anything beyond that one
// wrapper is left alone.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		rest := s[len("```"):]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			tag := strings.TrimSpace(rest[:nl])
			// The first line after the backticks may only carry a
			// language tag; a brace means the JSON starts right there.
			if !strings.ContainsAny(tag, "{}") {
				rest = rest[nl+1:]
			}
		}
		s = strings.TrimSpace(rest)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(s[:len(s)-len("```")])
	}
	return s
}

// ParseReply turns a raw model reply into a validated InvoiceRecord.
// The reply is an untrusted text channel: it is stripped of fence
// wrappers, parsed strictly, and validated against the record schema.
// Any failure returns a *FormatError carrying the cleaned reply
// verbatim so the caller can log or surface what the model actually
// said. A FormatError is terminal for the attempt; retrying the same
// prompt blindly is the caller's decision, not ours.
func ParseReply(raw string) (*models.InvoiceRecord, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, &FormatError{Raw: cleaned, Err: ErrEmptyResponse}
	}

	// Validate the generic form first so schema violations are reported
	// in schema terms, not as Go decoding errors.
	var doc interface{}
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &FormatError{Raw: cleaned, Err: err}
	}
	if err := validateRecord(doc); err != nil {
		return nil, &FormatError{Raw: cleaned, Err: err}
	}

	var record models.InvoiceRecord
	if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
		return nil, &FormatError{Raw: cleaned, Err: err}
	}
	return &record, nil
}
