package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/revise/internal/spacedrep"
)

var statsCmd = &cobra.Command{
	Use:   "stats <student-id> <course-id>",
	Short: "Show review statistics for a course",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(rt *runtime, repo recordStore) error {
			stats, err := rt.sched.Stats(cmd.Context(), repo, args[0], args[1])
			if err != nil {
				return err
			}
			if asJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		})
	},
}

func printStats(w io.Writer, s spacedrep.ReviewStats) {
	fmt.Fprintf(w, "%-16s  %5s\n", "Status", "Count")
	fmt.Fprintln(w, strings.Repeat("─", 23))
	fmt.Fprintf(w, "%-16s  %5d\n", "Overdue", s.OverdueCount)
	fmt.Fprintf(w, "%-16s  %5d\n", "Due soon", s.DueSoonCount)
	fmt.Fprintf(w, "%-16s  %5d\n", "Mastered", s.MasteredCount)
	fmt.Fprintf(w, "%-16s  %5d\n", "Not practiced", s.NotPracticedCount)
	fmt.Fprintln(w, strings.Repeat("─", 23))
	fmt.Fprintf(w, "%-16s  %5d\n", "Total", s.TotalOutcomes)
	fmt.Fprintf(w, "\nOverall mastery: %.1f%%\n", s.OverallMastery*100)
}
