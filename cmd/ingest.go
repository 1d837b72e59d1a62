package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hoadon/internal/logger"
	"hoadon/internal/store"
	"hoadon/internal/vector"
	"hoadon/pkg/models"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [image-file...]",
	Short: "Process receipts and index them for semantic search",
	Long: `Run receipt photos through the extraction pipeline, persist the
records in the local store, and index their JSON form in the vector
index for semantic search.

Requires a running embedding service (EMBEDDER_URL).`,
	Example: `  # Ingest a batch of receipts
  hoadon ingest photos/*.jpg

  # Ingest with JSON documents exported alongside
  hoadon ingest receipt.jpg -o output_structured`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("output", "o", "", "Directory for exported JSON documents")
	ingestCmd.Flags().IntP("concurrency", "c", 1, "Number of images processed in parallel")
	ingestCmd.Flags().Int("timeout", 600, "Overall batch timeout in seconds")
}

func runIngest(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ingest")

	outputDir, _ := cmd.Flags().GetString("output")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if cfg.EmbedderURL == "" {
		return fmt.Errorf("EMBEDDER_URL is required for ingestion")
	}

	ctx, cancel := createContextWithTimeout(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	p, cleanup, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	index, err := vector.OpenBolt(cfg.VectorDBPath)
	if err != nil {
		return err
	}
	defer index.Close()

	embedder := vector.NewHTTPEmbedder(cfg.EmbedderURL)

	results := p.ProcessAll(ctx, args, concurrency)

	ingested, failures := 0, 0
	for _, result := range results {
		if result.Failed() {
			failures++
			reportFailure(result)
			continue
		}

		stored, err := db.Save(result.Filename, result.Record)
		if err != nil {
			return err
		}
		if outputDir != "" {
			if _, err := store.ExportJSON(outputDir, stored); err != nil {
				return err
			}
		}

		content, err := models.MarshalRecord(&stored.Record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		vecs, err := embedder.Embed(ctx, []string{string(content)})
		if err != nil {
			return fmt.Errorf("embed %s: %w", result.Filename, err)
		}
		err = index.Add(vector.Document{
			ID:       stored.ID,
			Filename: stored.Filename,
			Content:  string(content),
		}, vecs[0])
		if err != nil {
			return err
		}

		ingested++
		fmt.Printf("ingested %s as %s\n", result.Filename, stored.ID)
	}

	log.Info().
		Int("ingested", ingested).
		Int("failed", failures).
		Msg("Ingestion complete")
	if failures == len(results) {
		return fmt.Errorf("all %d images failed", failures)
	}
	return nil
}
