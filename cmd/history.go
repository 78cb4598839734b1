package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/interviewdeck/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished solution and follow-up jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")

		return withRepo(cmd, func(repo store.EventRepo) error {
			jobs, err := repo.QueryJobEvents(cmd.Context(), store.QueryOpts{Limit: limit, Label: kind})
			if err != nil {
				return fmt.Errorf("query jobs: %w", err)
			}
			writeHistory(cmd.OutOrStdout(), jobs)
			return nil
		})
	},
}

func writeHistory(w io.Writer, jobs []store.JobEvent) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs recorded yet.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-19s  %-9s  %-10s  %8s  %s\n", "ID", "Finished", "Kind", "Outcome", "Elapsed", "Key")
	fmt.Fprintln(w, rule(100))
	for _, j := range jobs {
		elapsed := (time.Duration(j.ElapsedMs) * time.Millisecond).Round(100 * time.Millisecond)
		fmt.Fprintf(w, "%-5d  %-19s  %-9s  %-10s  %8s  %s\n",
			j.ID, j.Timestamp.Local().Format(timeLayout), j.Kind, j.Outcome, elapsed, j.Key)
		if j.ErrorMessage != "" {
			fmt.Fprintf(w, "%5s  %s\n", "", j.ErrorMessage)
		}
	}
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of jobs to show")
	historyCmd.Flags().StringP("kind", "k", "", "Only show one kind (solution or followup)")
}
