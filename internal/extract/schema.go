package extract

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordSchema constrains the parsed reply before it is trusted. Every
// field is nullable; the model reports absence with null rather than
// inventing values. Unknown keys are rejected so a reply that drifted
// from the requested shape fails loudly instead of being silently
// truncated.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "store_name":       {"type": ["string", "null"]},
    "website":          {"type": ["string", "null"]},
    "address":          {"type": ["string", "null"]},
    "payment_method":   {"type": ["string", "null"]},
    "receipt_number":   {"type": ["string", "null"]},
    "receipt_datetime": {"type": ["string", "null"]},
    "staff_name":       {"type": ["string", "null"]},
    "items": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "name":        {"type": "string"},
          "quantity":    {"type": ["number", "null"]},
          "unit_price":  {"type": ["number", "null"]},
          "total_price": {"type": ["number", "null"]}
        },
        "required": ["name"],
        "additionalProperties": false
      }
    },
    "total_amount":    {"type": ["number", "null"]},
    "discount_amount": {"type": ["number", "null"]},
    "paid_amount":     {"type": ["number", "null"]},
    "customer_paid":   {"type": ["number", "null"]},
    "change":          {"type": ["number", "null"]}
  },
  "additionalProperties": false
}`

var compiledSchema = jsonschema.MustCompileString("receipt.schema.json", recordSchema)

// validateRecord checks the decoded reply against the schema. doc must
// come from json.Unmarshal into an interface{} value.
func validateRecord(doc interface{}) error {
	return compiledSchema.Validate(doc)
}
