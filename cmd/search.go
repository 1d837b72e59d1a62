package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hoadon/internal/logger"
	"hoadon/internal/vector"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested receipts by meaning",
	Long: `Embed a free-text query and return the nearest ingested receipts.
Search is exact nearest-neighbor over the local index; results carry the
full JSON record of each receipt.

Requires a running embedding service (EMBEDDER_URL) and a populated
index (see "hoadon ingest").`,
	Example: `  # Find receipts about milk purchases
  hoadon search "mua sữa tươi"

  # Return the ten closest receipts
  hoadon search "hóa đơn siêu thị" -k 10`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("top", "k", 5, "Number of results to return")
	searchCmd.Flags().Int("timeout", 60, "Query timeout in seconds")
}

func runSearch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("search")

	topK, _ := cmd.Flags().GetInt("top")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	query := args[0]

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if cfg.EmbedderURL == "" {
		return fmt.Errorf("EMBEDDER_URL is required for search")
	}

	ctx, cancel := createContextWithTimeout(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	index, err := vector.OpenBolt(cfg.VectorDBPath)
	if err != nil {
		return err
	}
	defer index.Close()

	vecs, err := vector.NewHTTPEmbedder(cfg.EmbedderURL).Embed(ctx, []string{query})
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	hits, err := index.Search(vecs[0], topK)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("Không tìm thấy hóa đơn nào khớp với truy vấn của bạn.")
		return nil
	}

	log.Info().Str("query", query).Int("hits", len(hits)).Msg("Search complete")
	for i, hit := range hits {
		fmt.Printf("%d. %s (id %s, distance %.4f)\n%s\n\n", i+1, hit.Filename, hit.ID, hit.Distance, hit.Content)
	}
	return nil
}
