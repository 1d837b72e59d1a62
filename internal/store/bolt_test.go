package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hoadon/pkg/models"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func testRecord() *models.InvoiceRecord {
	return &models.InvoiceRecord{
		StoreName:     strPtr("VinMart"),
		ReceiptNumber: strPtr("HD123"),
		Items: []models.LineItem{
			{Name: "Nước mắm Nam Ngư", Quantity: numPtr(1), UnitPrice: numPtr(45000), TotalPrice: numPtr(45000)},
		},
		TotalAmount: numPtr(45000),
		PaidAmount:  numPtr(45000),
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)

	stored, err := s.Save("/photos/IMG_0042.jpg", testRecord())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if stored.ID == "" {
		t.Error("Save assigned no id")
	}
	if stored.Filename != "IMG_0042.jpg" {
		t.Errorf("Filename = %q, want base name only", stored.Filename)
	}

	got, err := s.Get(stored.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Record.StoreName == nil || *got.Record.StoreName != "VinMart" {
		t.Errorf("round-tripped store_name = %v", got.Record.StoreName)
	}
	if len(got.Record.Items) != 1 || got.Record.Items[0].Name != "Nước mắm Nam Ngư" {
		t.Errorf("round-tripped items = %v", got.Record.Items)
	}
}

func TestGetUnknown(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)

	first, _ := s.Save("a.jpg", testRecord())
	second, _ := s.Save("b.jpg", testRecord())

	invoices, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(invoices) != 2 {
		t.Fatalf("List = %d invoices, want 2", len(invoices))
	}

	if err := s.Delete(first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}

	invoices, _ = s.List()
	if len(invoices) != 1 || invoices[0].ID != second.ID {
		t.Errorf("after delete, List = %v", invoices)
	}
}

func TestExportJSON(t *testing.T) {
	s := openTestStore(t)
	stored, _ := s.Save("receipt01.png", testRecord())

	dir := filepath.Join(t.TempDir(), "out")
	path, err := ExportJSON(dir, stored)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if filepath.Base(path) != "receipt01_structured.json" {
		t.Errorf("exported as %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "Nước mắm Nam Ngư") {
		t.Error("Vietnamese text was escaped or lost in export")
	}
	if !strings.Contains(text, "\"website\": null") {
		t.Error("absent fields should export as null")
	}
}
