package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dojosearch/dojosearch/internal/pipeline"
)

var (
	askTopK   int
	askStream bool
	askUser   string
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a question and get a cited answer",
	Long: `Ask a question against the knowledge base. The answer cites the
retrieved documents and lists any related video or images.

Repeated questions within the cache TTL return instantly.

Examples:
  dojosearch ask "karate belt ranks"
  dojosearch ask "what is a roundhouse kick" --top-k 10
  dojosearch ask "judo throws" --stream`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "n", 0, "max documents to retrieve (0 = configured default)")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "stream the answer as it is generated")
	askCmd.Flags().StringVar(&askUser, "user", "", "user ID recorded in the query log")
}

func runAsk(cmd *cobra.Command, args []string) error {
	opts := pipeline.Options{
		TopK:   askTopK,
		UserID: askUser,
	}
	if askStream {
		opts.OnToken = func(token string) error {
			fmt.Print(token)
			return nil
		}
	}

	result, err := instance.Pipeline.Answer(context.Background(), args[0], opts)
	if err != nil {
		if pipeline.Retryable(err) {
			exitWithError("%v (retryable)", err)
		}
		exitWithError("%v", err)
	}

	if askStream {
		fmt.Println()
	} else {
		fmt.Println(result.Answer)
	}

	if len(result.Citations) > 0 {
		fmt.Println()
		fmt.Println(render(styleTitle, "Sources"))
		for i, doc := range result.Citations {
			line := fmt.Sprintf("%d. %s (score %.2f)", i+1, doc.Title, doc.Score)
			if doc.URL != "" {
				line += " - " + doc.URL
			}
			fmt.Println(render(styleCitation, line))
		}
	}

	if result.Video != nil {
		fmt.Println()
		fmt.Println(render(styleTitle, "Video"))
		fmt.Println(result.Video.URL)
	}
	if len(result.Images) > 0 {
		fmt.Println()
		fmt.Println(render(styleTitle, "Images"))
		for _, img := range result.Images {
			fmt.Println(img.URL)
		}
	}
	if len(result.Suggestions) > 0 {
		fmt.Println()
		fmt.Println(render(styleDim, "Related: "+strings.Join(result.Suggestions, ", ")))
	}
	if result.Degraded {
		fmt.Println(render(styleWarn, "Note: media could not be attached (partial result)"))
	}

	fmt.Println(render(styleDim, fmt.Sprintf("result %s", result.ID)))
	return nil
}
