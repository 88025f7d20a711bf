package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show query log statistics",
	Long: `Show aggregate statistics from the query log: total queries, cache
hit counts, errors, and average latency.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	stats, err := instance.DB.QueryLogStats(context.Background())
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}

	fmt.Println(render(styleTitle, "Query log"))
	fmt.Printf("  Queries:    %d\n", stats.Total)
	fmt.Printf("  Cache hits: %d", stats.CacheHits)
	if stats.Total > 0 {
		fmt.Printf(" (%.0f%%)", float64(stats.CacheHits)/float64(stats.Total)*100)
	}
	fmt.Println()
	fmt.Printf("  Errors:     %d\n", stats.Errors)
	fmt.Printf("  Avg total:  %.0fms\n", stats.AvgTotalMs)
	return nil
}
