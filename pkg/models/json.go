package models

import (
	"bytes"
	"encoding/json"
)

// MarshalRecord serializes a record as human-readable UTF-8 JSON:
// 2-space indentation, HTML escaping disabled so Vietnamese text and
// other native-script characters survive verbatim.
func MarshalRecord(r *InvoiceRecord) ([]byte, error) {
	return marshalIndent(r)
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
