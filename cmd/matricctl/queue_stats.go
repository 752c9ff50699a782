package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var queueStatsCmd = &cobra.Command{
	Use:   "queue-stats",
	Short: "Show job counts by type and status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, _, err := connectPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		rows, err := pool.Query(ctx, `
			SELECT type, status, count(*) FROM public.jobs
			GROUP BY type, status ORDER BY type, status
		`)
		if err != nil {
			return fmt.Errorf("query job counts: %w", err)
		}
		defer rows.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tSTATUS\tCOUNT")
		for rows.Next() {
			var jobType, status string
			var count int
			if err := rows.Scan(&jobType, &status, &count); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%d\n", jobType, status, count)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		return w.Flush()
	},
}
