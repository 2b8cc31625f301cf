package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"campus-qa-api/internal/application/search"
)

func (c *cli) searchCmd() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "search <question...>",
		Short: "Print the aggregated search results for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			composer, cleanup, err := c.deps.composer(ctx, c.cfg)
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			defer cleanup()

			resp, err := composer.DebugSearch(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary {
				printSummary(out, resp)
				return nil
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "print one line per table instead of JSON")
	return cmd
}

func printSummary(out io.Writer, resp search.AggregateResponse) {
	if len(resp) == 0 {
		fmt.Fprintln(out, "no results")
		return
	}
	for _, b := range resp {
		top := 0
		if len(b.Results) > 0 {
			top = b.Results[0].RelevanceScore
		}
		fmt.Fprintf(out, "%d %-12s results=%d top_score=%d\n", b.Priority, b.Table, len(b.Results), top)
	}
}
