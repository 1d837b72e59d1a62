package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hoadon/internal/logger"
	"hoadon/internal/report"
	"hoadon/internal/store"
	"hoadon/pkg/models"
)

var reportCmd = &cobra.Command{
	Use:   "report [count|summarize|highest]",
	Short: "Summarize the stored receipts",
	Long: `Generate a report over the locally stored receipts: how many there
are, a per-receipt summary, or the receipt with the highest total.

Combine with the filter flags to report over a subset only.`,
	Example: `  # How many receipts are stored
  hoadon report count

  # One summary line per receipt
  hoadon report summarize

  # The most expensive receipt among those containing milk
  hoadon report highest --item "sữa"`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"count", "summarize", "highest"},
	RunE:      runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("number", "", "Only receipts with this receipt number")
	reportCmd.Flags().Float64("total", 0, "Only receipts with exactly this total amount")
	reportCmd.Flags().String("item", "", "Only receipts containing an item whose name matches")
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("report")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	invoices, err := db.List()
	if err != nil {
		return err
	}

	invoices, err = applyFilters(cmd, invoices)
	if err != nil {
		return err
	}

	switch args[0] {
	case "count":
		fmt.Println(report.Count(invoices))
	case "summarize":
		fmt.Println(report.Summarize(invoices))
	case "highest":
		fmt.Println(report.HighestValue(invoices))
	default:
		return fmt.Errorf("unknown report type %q, want count, summarize, or highest", args[0])
	}
	return nil
}

func applyFilters(cmd *cobra.Command, invoices []models.StoredInvoice) ([]models.StoredInvoice, error) {
	var criteria report.Criteria
	if cmd.Flags().Changed("number") {
		number, _ := cmd.Flags().GetString("number")
		criteria.ReceiptNumber = &number
	}
	if cmd.Flags().Changed("total") {
		total, _ := cmd.Flags().GetFloat64("total")
		criteria.TotalAmount = &total
	}
	if cmd.Flags().Changed("item") {
		item, _ := cmd.Flags().GetString("item")
		criteria.ItemName = &item
	}
	if criteria.Empty() {
		return invoices, nil
	}
	return report.Filter(invoices, criteria), nil
}
