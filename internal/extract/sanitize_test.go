package extract

import (
	"errors"
	"strings"
	"testing"
)

const goodReply = `{
  "store_name": "Bách Hóa Xanh",
  "website": null,
  "address": "123 Lê Lợi, Q1, TP.HCM",
  "payment_method": "Tiền mặt",
  "receipt_number": "HD0042",
  "receipt_datetime": "2024-03-15 18:32",
  "staff_name": null,
  "items": [
    {"name": "Sữa tươi Vinamilk 1L", "quantity": 2, "unit_price": 32000, "total_price": 64000},
    {"name": "Bánh mì sandwich", "quantity": 1, "unit_price": 25000, "total_price": 25000}
  ],
  "total_amount": 89000,
  "discount_amount": null,
  "paid_amount": 89000,
  "customer_paid": 100000,
  "change": 11000
}`

func TestParseReplyPlainJSON(t *testing.T) {
	record, err := ParseReply(goodReply)
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if record.StoreName == nil || *record.StoreName != "Bách Hóa Xanh" {
		t.Errorf("store_name = %v, want Bách Hóa Xanh", record.StoreName)
	}
	if record.Website != nil {
		t.Errorf("website = %v, want nil", *record.Website)
	}
	if len(record.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(record.Items))
	}
	if record.Items[0].Quantity == nil || *record.Items[0].Quantity != 2 {
		t.Errorf("items[0].quantity = %v, want 2", record.Items[0].Quantity)
	}
	if record.Change == nil || *record.Change != 11000 {
		t.Errorf("change = %v, want 11000", record.Change)
	}
}

func TestParseReplyFencedJSON(t *testing.T) {
	for _, fence := range []string{"```json", "```JSON", "```"} {
		wrapped := fence + "\n" + goodReply + "\n```"
		record, err := ParseReply(wrapped)
		if err != nil {
			t.Fatalf("ParseReply(%q wrapper): %v", fence, err)
		}
		if record.ReceiptNumber == nil || *record.ReceiptNumber != "HD0042" {
			t.Errorf("receipt_number = %v, want HD0042", record.ReceiptNumber)
		}
	}
}

func TestParseReplyFenceOnSameLineAsBrace(t *testing.T) {
	record, err := ParseReply("```{\"store_name\": \"ABC\", \"items\": []}\n```")
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if record.StoreName == nil || *record.StoreName != "ABC" {
		t.Errorf("store_name = %v, want ABC", record.StoreName)
	}
}

func TestParseReplyNotJSON(t *testing.T) {
	raw := "Xin lỗi, tôi không thể trích xuất dữ liệu từ văn bản này."
	_, err := ParseReply(raw)
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("err = %T, want *FormatError", err)
	}
	if formatErr.Raw != raw {
		t.Errorf("Raw = %q, want the reply verbatim", formatErr.Raw)
	}
}

func TestParseReplyEmpty(t *testing.T) {
	_, err := ParseReply("```json\n```")
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("err = %T, want *FormatError", err)
	}
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestParseReplySchemaViolation(t *testing.T) {
	// quantity as a string violates the schema even though it is valid JSON.
	raw := `{"store_name": "ABC", "items": [{"name": "Kẹo", "quantity": "hai"}]}`
	_, err := ParseReply(raw)
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("err = %T, want *FormatError", err)
	}
}

func TestParseReplyUnknownFieldRejected(t *testing.T) {
	raw := `{"store_name": "ABC", "confidence": 0.97}`
	_, err := ParseReply(raw)
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("err = %T, want *FormatError", err)
	}
}

func TestBuildPromptEmbedsText(t *testing.T) {
	text := "BACH HOA XANH\nSua tuoi 2 x 32000"
	prompt := BuildPrompt(text)
	if !strings.Contains(prompt, text) {
		t.Error("prompt does not contain the receipt text")
	}
	if !strings.Contains(prompt, "store_name") {
		t.Error("prompt does not describe the output shape")
	}
}
