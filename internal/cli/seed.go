package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dojosearch/dojosearch/internal/db"
)

var seedBatchSize int

// seedDocument is the YAML shape of one document in a seed file.
type seedDocument struct {
	Title     string `yaml:"title"`
	URL       string `yaml:"url"`
	Content   string `yaml:"content"`
	MediaID   string `yaml:"media_id"`
	MediaKind string `yaml:"media_kind"`
}

type seedFile struct {
	Documents []seedDocument `yaml:"documents"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Embed and index documents from a YAML file",
	Long: `Read documents from a YAML file, embed their content, and insert them
into the vector index.

The file holds a documents list:

  documents:
    - title: Karate belt ranks
      url: https://example.org/belts
      content: |
        Karate practitioners progress through colored belts...
      media_id: vid-belts-01
      media_kind: video`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedBatchSize, "batch-size", 16, "documents embedded per batch")
}

func runSeed(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	if len(file.Documents) == 0 {
		return fmt.Errorf("seed file contains no documents")
	}

	ctx := context.Background()
	inserted := 0

	for start := 0; start < len(file.Documents); start += seedBatchSize {
		end := start + seedBatchSize
		if end > len(file.Documents) {
			end = len(file.Documents)
		}
		batch := file.Documents[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Content
		}

		embeddings, err := instance.Embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch starting at %d: %w", start, err)
		}

		for i, doc := range batch {
			row := db.DocumentRow{
				Title:     doc.Title,
				Content:   doc.Content,
				Embedding: embeddings[i],
			}
			if doc.URL != "" {
				row.URL = &doc.URL
			}
			if doc.MediaID != "" {
				row.MediaID = &doc.MediaID
			}
			if doc.MediaKind != "" {
				row.MediaKind = &doc.MediaKind
			}

			if err := instance.DB.QueryInsertDocument(ctx, row); err != nil {
				return fmt.Errorf("insert %q: %w", doc.Title, err)
			}
			inserted++
		}

		fmt.Printf("Indexed %d/%d documents\n", inserted, len(file.Documents))
	}

	fmt.Println(render(styleTitle, fmt.Sprintf("Done: %d documents indexed", inserted)))
	return nil
}
