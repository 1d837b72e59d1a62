package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func TestCrossCheckBalancedRecord(t *testing.T) {
	record := InvoiceRecord{
		TotalAmount:    numPtr(100000),
		DiscountAmount: numPtr(10000),
		PaidAmount:     numPtr(90000),
		CustomerPaid:   numPtr(100000),
		Change:         numPtr(10000),
		Items: []LineItem{
			{Name: "Sữa chua", Quantity: numPtr(4), UnitPrice: numPtr(22500), TotalPrice: numPtr(90000)},
		},
	}
	if mismatches := record.CrossCheck(0); len(mismatches) != 0 {
		t.Errorf("mismatches = %v, want none", mismatches)
	}
}

func TestCrossCheckReportsWrongChange(t *testing.T) {
	record := InvoiceRecord{
		TotalAmount:  numPtr(100000),
		PaidAmount:   numPtr(100000),
		CustomerPaid: numPtr(200000),
		Change:       numPtr(50000),
	}
	mismatches := record.CrossCheck(0)
	if len(mismatches) != 1 {
		t.Fatalf("mismatches = %v, want exactly the change rule", mismatches)
	}
	if mismatches[0].Expected != 100000 || mismatches[0].Actual != 50000 {
		t.Errorf("mismatch = %+v", mismatches[0])
	}
}

func TestCrossCheckMissingDiscountDefaultsToZero(t *testing.T) {
	record := InvoiceRecord{
		TotalAmount: numPtr(80000),
		PaidAmount:  numPtr(80000),
	}
	if mismatches := record.CrossCheck(0); len(mismatches) != 0 {
		t.Errorf("mismatches = %v, want none with no discount", mismatches)
	}
}

func TestCrossCheckSkipsAbsentOperands(t *testing.T) {
	record := InvoiceRecord{
		TotalAmount: numPtr(100000),
		Items: []LineItem{
			{Name: "Kẹo", Quantity: numPtr(2)},
		},
	}
	if mismatches := record.CrossCheck(0); len(mismatches) != 0 {
		t.Errorf("mismatches = %v, want none when operands are absent", mismatches)
	}
}

func TestCrossCheckTolerance(t *testing.T) {
	// Off by 500: beyond the one-unit floor but inside a 1% relative
	// bound.
	record := InvoiceRecord{
		TotalAmount: numPtr(100500),
		PaidAmount:  numPtr(100000),
	}
	if mismatches := record.CrossCheck(0.01); len(mismatches) != 0 {
		t.Errorf("0.5%% off reported at 1%% tolerance: %v", mismatches)
	}
	if mismatches := record.CrossCheck(0.001); len(mismatches) != 1 {
		t.Errorf("0.5%% off not reported at 0.1%% tolerance")
	}
}

func TestCrossCheckRoundingWithinOneUnit(t *testing.T) {
	record := InvoiceRecord{
		Items: []LineItem{
			{Name: "Thịt heo", Quantity: numPtr(0.497), UnitPrice: numPtr(120000), TotalPrice: numPtr(59640)},
		},
	}
	if mismatches := record.CrossCheck(0); len(mismatches) != 0 {
		t.Errorf("sub-unit rounding reported: %v", mismatches)
	}
}

func TestMarshalRecordNullsAndUTF8(t *testing.T) {
	record := InvoiceRecord{
		StoreName: strPtr("Phở 24 <Quận 1>"),
		Items:     []LineItem{{Name: "Phở đặc biệt"}},
	}
	data, err := MarshalRecord(&record)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	if !strings.Contains(text, `"website": null`) {
		t.Error("absent string field should marshal as null")
	}
	if !strings.Contains(text, `"total_amount": null`) {
		t.Error("absent numeric field should marshal as null")
	}
	if !strings.Contains(text, "Phở 24 <Quận 1>") {
		t.Error("UTF-8 text or angle brackets were escaped")
	}
	if !strings.Contains(text, "\n  ") {
		t.Error("output should be indented")
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	record := InvoiceRecord{
		ReceiptNumber: strPtr("HD777"),
		TotalAmount:   numPtr(123456),
		Items: []LineItem{
			{Name: "Bia Sài Gòn", Quantity: numPtr(6), UnitPrice: numPtr(18000), TotalPrice: numPtr(108000)},
		},
	}
	data, err := MarshalRecord(&record)
	if err != nil {
		t.Fatal(err)
	}
	var back InvoiceRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.ReceiptNumber == nil || *back.ReceiptNumber != "HD777" {
		t.Errorf("receipt_number = %v", back.ReceiptNumber)
	}
	if back.StoreName != nil {
		t.Errorf("store_name = %v, want nil", *back.StoreName)
	}
	if len(back.Items) != 1 || *back.Items[0].TotalPrice != 108000 {
		t.Errorf("items = %v", back.Items)
	}
}
