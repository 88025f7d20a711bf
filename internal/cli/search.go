package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dojosearch/dojosearch/internal/index"
	"github.com/dojosearch/dojosearch/internal/models"
)

var searchTopK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Retrieve matching documents without generating an answer",
	Long: `Run the retrieval half of the pipeline only: embed the query and list
the closest documents from the vector index. Useful for inspecting what an
answer would be grounded on.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 0, "max documents to retrieve (0 = configured default)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	normalized := models.Normalize(args[0])

	topK := searchTopK
	if topK <= 0 {
		topK = cfg.TopK
	}
	if topK > cfg.TopKMax {
		topK = cfg.TopKMax
	}

	embedding, err := instance.Embedder.Embed(ctx, normalized)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	docs, err := index.NewSurreal(instance.DB).Search(ctx, embedding, topK)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(docs) == 0 {
		fmt.Println("No matching documents.")
		return nil
	}

	fmt.Println(render(styleTitle, fmt.Sprintf("%d documents for %q", len(docs), normalized)))
	for i, doc := range docs {
		line := fmt.Sprintf("%d. %s (score %.3f)", i+1, doc.Title, doc.Score)
		if doc.URL != "" {
			line += " - " + doc.URL
		}
		fmt.Println(render(styleCitation, line))
		if doc.MediaID != "" {
			fmt.Println(render(styleDim, fmt.Sprintf("   media: %s (%s)", doc.MediaID, doc.MediaKind)))
		}
	}
	return nil
}
