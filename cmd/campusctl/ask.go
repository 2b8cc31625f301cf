package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) askCmd() *cobra.Command {
	var showSource bool

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a campus question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			composer, cleanup, err := c.deps.composer(ctx, c.cfg)
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			defer cleanup()

			result, err := composer.Answer(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showSource {
				fmt.Fprintf(out, "[%s] ", result.Source)
			}
			fmt.Fprintln(out, result.Answer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSource, "show-source", false, "prefix the answer with its source (greeting, ai, fallback)")
	return cmd
}
