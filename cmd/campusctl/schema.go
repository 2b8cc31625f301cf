package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"campus-qa-api/internal/application/search"
	"campus-qa-api/internal/infrastructure/persistence/postgres"
)

func (c *cli) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Check that every catalog table and searchable column exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, cleanup, err := c.deps.postgres(c.cfg)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer cleanup()

			catalog := search.DefaultCatalog()
			repo := postgres.NewCampusRepository(client)
			loadErr := repo.LoadSchema(ctx, catalog.Columns())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tPRIORITY\tMISSING COLUMNS")
			for _, t := range catalog {
				var missing []string
				for _, col := range t.SearchableColumns {
					if !repo.HasColumn(t.Name, col) {
						missing = append(missing, col)
					}
				}
				status := "-"
				if len(missing) > 0 {
					status = strings.Join(missing, ",")
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", t.Name, t.Priority, status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return loadErr
		},
	}
}
