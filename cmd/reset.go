package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <student-id> <course-id>",
	Short: "Delete a student's mastery records for a course",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(rt *runtime, repo recordStore) error {
			if err := repo.DeleteCourse(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("reset %s/%s: %w", args[0], args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted records of %s in %s.\n", args[0], args[1])
			return nil
		})
	},
}
