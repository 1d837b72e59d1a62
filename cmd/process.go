package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"hoadon/internal/logger"
	"hoadon/internal/pipeline"
	"hoadon/internal/store"
	"hoadon/pkg/models"
)

var processCmd = &cobra.Command{
	Use:   "process [image-file...]",
	Short: "Extract structured records from receipt photos",
	Long: `Process one or more receipt photos through the full pipeline:
normalize, binarize, OCR, text correction, and LLM extraction.

Each image produces a JSON record on stdout or in the output directory.
A failing image is reported and skipped; it never aborts the batch.

Required environment variables:
  GEMINI_KEYS    - Comma-separated Gemini API keys (LLM_PROVIDER=gemini), OR
  OPENAI_API_KEY - OpenAI API key (LLM_PROVIDER=openai)`,
	Example: `  # Extract one receipt to stdout
  hoadon process receipt.jpg

  # Process a batch with 4 images in flight, writing JSON documents
  hoadon process photos/*.jpg -o output_structured --concurrency 4

  # Process and persist the records in the local store
  hoadon process receipt.jpg --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("output", "o", "", "Directory for exported JSON documents (default: stdout)")
	processCmd.Flags().IntP("concurrency", "c", 1, "Number of images processed in parallel")
	processCmd.Flags().Bool("save", false, "Persist extracted records in the local store")
	processCmd.Flags().Int("timeout", 600, "Overall batch timeout in seconds")
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("process")

	outputDir, _ := cmd.Flags().GetString("output")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	save, _ := cmd.Flags().GetBool("save")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	log.Info().
		Int("images", len(args)).
		Int("concurrency", concurrency).
		Str("ocr_provider", cfg.OCRProvider).
		Str("llm_provider", cfg.LLMProvider).
		Msg("Starting receipt processing")

	ctx, cancel := createContextWithTimeout(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	p, cleanup, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var db *store.Store
	if save {
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	results := p.ProcessAll(ctx, args, concurrency)

	failures := 0
	for _, result := range results {
		if result.Failed() {
			failures++
			reportFailure(result)
			continue
		}
		if err := emitResult(result, outputDir, db); err != nil {
			return err
		}
	}

	log.Info().
		Int("succeeded", len(results)-failures).
		Int("failed", failures).
		Msg("Batch complete")
	if failures == len(results) {
		return fmt.Errorf("all %d images failed", failures)
	}
	return nil
}

func reportFailure(result pipeline.Result) {
	fmt.Fprintf(os.Stderr, "FAILED %s (%s): %v\n", result.Filename, result.Kind, result.Err)
	if result.RawReply != "" {
		fmt.Fprintf(os.Stderr, "  model reply: %s\n", result.RawReply)
	}
}

func emitResult(result pipeline.Result, outputDir string, db *store.Store) error {
	stored := &models.StoredInvoice{Filename: filepath.Base(result.Filename), Record: *result.Record}
	if db != nil {
		saved, err := db.Save(result.Filename, result.Record)
		if err != nil {
			return err
		}
		stored = saved
	}

	for _, mismatch := range result.Mismatches {
		fmt.Fprintf(os.Stderr, "WARN %s: %s (expected %.0f, got %.0f)\n",
			result.Filename, mismatch.Rule, mismatch.Expected, mismatch.Actual)
	}

	if outputDir != "" {
		path, err := store.ExportJSON(outputDir, stored)
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", result.Filename, path)
		return nil
	}

	data, err := models.MarshalRecord(result.Record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
