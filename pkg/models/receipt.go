package models

import (
	"math"
	"time"
)

// InvoiceRecord is the structured result of extracting one retail receipt.
// Every field except Items may be absent; absent is represented by a nil
// pointer and serializes as JSON null, never as "" or 0. Records are
// immutable after creation; corrections require re-running the pipeline.
type InvoiceRecord struct {
	StoreName       *string    `json:"store_name"`
	Website         *string    `json:"website"`
	Address         *string    `json:"address"`
	PaymentMethod   *string    `json:"payment_method"`
	ReceiptNumber   *string    `json:"receipt_number"`
	ReceiptDatetime *string    `json:"receipt_datetime"`
	StaffName       *string    `json:"staff_name"`
	Items           []LineItem `json:"items"`

	TotalAmount    *float64 `json:"total_amount"`
	DiscountAmount *float64 `json:"discount_amount"`
	PaidAmount     *float64 `json:"paid_amount"`
	CustomerPaid   *float64 `json:"customer_paid"`
	Change         *float64 `json:"change"`
}

// LineItem is one row of the receipt's item table. Name is the only
// required field; the numeric columns may each be absent when the OCR
// text gives no clear support for them.
type LineItem struct {
	Name       string   `json:"name"`
	Quantity   *float64 `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
	TotalPrice *float64 `json:"total_price"`
}

// StoredInvoice wraps a record with the bookkeeping the store needs.
type StoredInvoice struct {
	ID         string        `json:"id"`
	Filename   string        `json:"filename"`
	Record     InvoiceRecord `json:"record"`
	IngestedAt time.Time     `json:"ingested_at"`
}

// Mismatch describes one advisory cross-check that did not balance.
// Mismatches are diagnostics for downstream consumers, not faults: the
// extractor never alters an explicitly stated value to force arithmetic
// consistency, so a record can legitimately carry mismatches.
type Mismatch struct {
	Rule     string  `json:"rule"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
}

// DefaultTolerance is the relative error allowed by CrossCheck before a
// pair of monetary values is reported as mismatched.
const DefaultTolerance = 0.01

// CrossCheck evaluates the arithmetic relationships among the monetary
// fields: total - discount ≈ paid, customer_paid - paid ≈ change, and
// quantity × unit_price ≈ total_price per line item. A check only runs
// when all of its operands are present. tolerance is a relative bound
// with an absolute floor of one currency unit; pass a non-positive value
// to use DefaultTolerance.
func (r *InvoiceRecord) CrossCheck(tolerance float64) []Mismatch {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var mismatches []Mismatch

	if r.TotalAmount != nil && r.PaidAmount != nil {
		discount := 0.0
		if r.DiscountAmount != nil {
			discount = *r.DiscountAmount
		}
		expected := *r.TotalAmount - discount
		if !approxEqual(expected, *r.PaidAmount, tolerance) {
			mismatches = append(mismatches, Mismatch{
				Rule:     "total_amount - discount_amount = paid_amount",
				Expected: expected,
				Actual:   *r.PaidAmount,
			})
		}
	}

	if r.CustomerPaid != nil && r.PaidAmount != nil && r.Change != nil {
		expected := *r.CustomerPaid - *r.PaidAmount
		if !approxEqual(expected, *r.Change, tolerance) {
			mismatches = append(mismatches, Mismatch{
				Rule:     "customer_paid - paid_amount = change",
				Expected: expected,
				Actual:   *r.Change,
			})
		}
	}

	for _, item := range r.Items {
		if item.Quantity == nil || item.UnitPrice == nil || item.TotalPrice == nil {
			continue
		}
		expected := *item.Quantity * *item.UnitPrice
		if !approxEqual(expected, *item.TotalPrice, tolerance) {
			mismatches = append(mismatches, Mismatch{
				Rule:     "quantity * unit_price = total_price (" + item.Name + ")",
				Expected: expected,
				Actual:   *item.TotalPrice,
			})
		}
	}

	return mismatches
}

// approxEqual compares within a relative tolerance, with an absolute
// floor of one currency unit so small amounts are not over-penalized.
func approxEqual(a, b, tolerance float64) bool {
	diff := math.Abs(a - b)
	if diff <= 1.0 {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= scale*tolerance
}
