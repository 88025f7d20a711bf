package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dojosearch/dojosearch/internal/feedback"
	"github.com/dojosearch/dojosearch/internal/models"
)

var (
	feedbackHelpful bool
	feedbackComment string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <result-id>",
	Short: "Record feedback on an answer",
	Long: `Record whether an answer was helpful. The result ID is printed after
every ask.

Examples:
  dojosearch feedback 4f7c... --helpful
  dojosearch feedback 4f7c... --comment "answer cited the wrong belt order"`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().BoolVar(&feedbackHelpful, "helpful", false, "mark the answer as helpful")
	feedbackCmd.Flags().StringVar(&feedbackComment, "comment", "", "free-text comment")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	rec := models.FeedbackRecord{
		ResultID:  args[0],
		Helpful:   feedbackHelpful,
		Comment:   feedbackComment,
		CreatedAt: time.Now().UTC(),
	}
	if err := feedback.Validate(rec); err != nil {
		return err
	}

	if err := instance.Feedback.Submit(context.Background(), rec); err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}

	fmt.Println("Feedback recorded.")
	return nil
}
