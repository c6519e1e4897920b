package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/revise/internal/spacedrep"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <student-id> <course-id>",
	Short: "List the outcomes most in need of review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(rt *runtime, repo recordStore) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit == 0 {
				limit = rt.cfg.Scheduler.DefaultLimit
			}
			items, err := rt.sched.Recommendations(cmd.Context(), repo, args[0], args[1], limit)
			if err != nil {
				return err
			}
			if asJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			printRecommendations(cmd.OutOrStdout(), items)
			return nil
		})
	},
}

var upcomingCmd = &cobra.Command{
	Use:   "upcoming <student-id> <course-id>",
	Short: "Show the review calendar for the coming days",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(rt *runtime, repo recordStore) error {
			horizon, _ := cmd.Flags().GetInt("horizon")
			if horizon == 0 {
				horizon = rt.cfg.Scheduler.DefaultHorizonDays
			}
			entries, err := rt.sched.Upcoming(cmd.Context(), repo, args[0], args[1], horizon)
			if err != nil {
				return err
			}
			if asJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			printUpcoming(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <student-id> <course-id>",
	Short: "Show recommendations, stats and calendar from one snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(rt *runtime, repo recordStore) error {
			opts := spacedrep.Options{
				Limit:       rt.cfg.Scheduler.DefaultLimit,
				HorizonDays: rt.cfg.Scheduler.DefaultHorizonDays,
			}
			if n, _ := cmd.Flags().GetInt("limit"); n != 0 {
				opts.Limit = n
			}
			if n, _ := cmd.Flags().GetInt("horizon"); n != 0 {
				opts.HorizonDays = n
			}
			sched, err := rt.sched.Schedule(cmd.Context(), repo, args[0], args[1], opts)
			if err != nil {
				return err
			}
			if asJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), sched)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Generated at %s\n\n", sched.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
			printRecommendations(w, sched.Recommendations)
			fmt.Fprintln(w)
			printStats(w, sched.Stats)
			fmt.Fprintln(w)
			printUpcoming(w, sched.Upcoming)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{recommendCmd, statsCmd, upcomingCmd, scheduleCmd} {
		c.Flags().Bool("json", false, "Print JSON instead of a table")
	}
	recommendCmd.Flags().Int("limit", 0, "Maximum number of recommendations (default scheduler.default_limit)")
	scheduleCmd.Flags().Int("limit", 0, "Maximum number of recommendations (default scheduler.default_limit)")
	upcomingCmd.Flags().Int("horizon", 0, "Days to look ahead (default scheduler.default_horizon_days)")
	scheduleCmd.Flags().Int("horizon", 0, "Days to look ahead (default scheduler.default_horizon_days)")
}

// withStore runs fn with a configured runtime and an open store.
func withStore(cmd *cobra.Command, fn func(*runtime, recordStore) error) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	repo, closeStore, err := openStore(cmd.Context(), rt.cfg, rt.log)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(rt, repo)
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecommendations(w io.Writer, items []spacedrep.RecommendationItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing to review.")
		return
	}
	fmt.Fprintf(w, "%-4s  %-36s  %-10s  %9s  %8s\n", "#", "Outcome", "Reason", "Mastery", "Urgency")
	fmt.Fprintln(w, strings.Repeat("─", 75))
	for i, it := range items {
		id := truncate(it.OutcomeID, 36)
		fmt.Fprintf(w, "%-4d  %-36s  %-10s  %8.1f%%  %8.4f\n",
			i+1, id, it.Reason, it.EffectiveMastery*100, it.Urgency)
	}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func printUpcoming(w io.Writer, entries []spacedrep.UpcomingReviewEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No reviews due in the horizon.")
		return
	}
	fmt.Fprintf(w, "%-10s  %5s  %s\n", "Date", "Count", "Outcomes")
	fmt.Fprintln(w, strings.Repeat("─", 75))
	for _, e := range entries {
		fmt.Fprintf(w, "%-10s  %5d  %s\n", e.Date, len(e.OutcomeIDs), strings.Join(e.OutcomeIDs, ", "))
	}
}
