// Package report summarizes and filters stored receipts. Every
// function takes its document set as an explicit argument; the package
// holds no state and does not know where the documents came from.
package report

import (
	"fmt"
	"strings"

	"hoadon/pkg/models"
)

// Count reports how many receipts the set holds.
func Count(invoices []models.StoredInvoice) string {
	if len(invoices) == 0 {
		return "Không có dữ liệu hóa đơn nào để tạo báo cáo."
	}
	return fmt.Sprintf("Bạn đã tải lên tổng cộng %d hóa đơn.", len(invoices))
}

// HighestValue names the receipt with the largest total_amount.
// Receipts without a total are skipped.
func HighestValue(invoices []models.StoredInvoice) string {
	if len(invoices) == 0 {
		return "Không có dữ liệu hóa đơn nào để tạo báo cáo."
	}

	var top *models.StoredInvoice
	maxValue := -1.0
	for i := range invoices {
		record := &invoices[i].Record
		if record.TotalAmount == nil {
			continue
		}
		if *record.TotalAmount > maxValue {
			maxValue = *record.TotalAmount
			top = &invoices[i]
		}
	}
	if top == nil {
		return "Không tìm thấy hóa đơn nào có thông tin giá trị."
	}

	receiptID := "Không có mã"
	if top.Record.ReceiptNumber != nil {
		receiptID = *top.Record.ReceiptNumber
	}
	return fmt.Sprintf("Hóa đơn có giá trị cao nhất là hóa đơn '%s' với tổng giá trị là %s.",
		receiptID, FormatVND(maxValue))
}

// Summarize produces one line per receipt: its number, item count,
// item names, and total.
func Summarize(invoices []models.StoredInvoice) string {
	if len(invoices) == 0 {
		return "Không có dữ liệu hóa đơn nào để tạo báo cáo."
	}

	lines := []string{fmt.Sprintf("Đây là báo cáo tóm tắt cho %d hóa đơn của bạn:", len(invoices))}
	for i := range invoices {
		record := &invoices[i].Record

		receiptID := fmt.Sprintf("Hóa đơn không mã số %d", i+1)
		if record.ReceiptNumber != nil {
			receiptID = *record.ReceiptNumber
		}
		names := make([]string, len(record.Items))
		for j, item := range record.Items {
			names[j] = item.Name
		}
		total := 0.0
		if record.TotalAmount != nil {
			total = *record.TotalAmount
		}
		lines = append(lines, fmt.Sprintf("- Hóa đơn '%s': có %d sản phẩm (gồm: %s), tổng giá trị %s.",
			receiptID, len(record.Items), strings.Join(names, ", "), FormatVND(total)))
	}
	return strings.Join(lines, "\n")
}

// Criteria selects receipts. Nil fields do not constrain; at least one
// must be set.
type Criteria struct {
	ReceiptNumber *string
	TotalAmount   *float64
	ItemName      *string // case-insensitive substring match on item names
}

// Empty reports whether no criterion is set.
func (c Criteria) Empty() bool {
	return c.ReceiptNumber == nil && c.TotalAmount == nil && c.ItemName == nil
}

// Filter returns the receipts matching every set criterion.
func Filter(invoices []models.StoredInvoice, criteria Criteria) []models.StoredInvoice {
	if criteria.Empty() {
		return nil
	}

	var matched []models.StoredInvoice
	for i := range invoices {
		if matches(&invoices[i].Record, criteria) {
			matched = append(matched, invoices[i])
		}
	}
	return matched
}

func matches(record *models.InvoiceRecord, criteria Criteria) bool {
	if criteria.ReceiptNumber != nil {
		if record.ReceiptNumber == nil || *record.ReceiptNumber != *criteria.ReceiptNumber {
			return false
		}
	}
	if criteria.TotalAmount != nil {
		if record.TotalAmount == nil || *record.TotalAmount != *criteria.TotalAmount {
			return false
		}
	}
	if criteria.ItemName != nil {
		want := strings.ToLower(*criteria.ItemName)
		found := false
		for _, item := range record.Items {
			if strings.Contains(strings.ToLower(item.Name), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FormatVND renders an amount the way Vietnamese receipts print it:
// dot-separated thousands, no decimals, e.g. 1.200.000 VND.
func FormatVND(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := fmt.Sprintf("%.0f", amount)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteString(" VND")
	return b.String()
}
