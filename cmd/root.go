package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hoadon/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "hoadon",
	Short: "Hoadon CLI - structured extraction for Vietnamese retail receipts",
	Long: `Hoadon CLI turns photos of Vietnamese retail receipts into structured
JSON records. A photo is normalized and binarized, read by OCR, the text
is optionally corrected, and an LLM extracts the fields of the receipt
under a strict non-fabrication ruleset.

Extracted records can be stored locally, exported as JSON documents,
embedded into a vector index for semantic search, and summarized with
the report commands.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Hoadon CLI executed")

		fmt.Println("Welcome to Hoadon CLI!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
