package score

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Miandari/dailygrit/internal/streak"
	"github.com/Miandari/dailygrit/pkg/utils"
)

var StreakCmd = &cobra.Command{
	Use:   "streak <yyyy-mm-dd>...",
	Short: "Compute streaks from completed dates",
	Long:  "Compute the current and longest streak for a list of completed entry dates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todayFlag, _ := cmd.Flags().GetString("today")
		previous, _ := cmd.Flags().GetInt("longest")
		tz, _ := cmd.Flags().GetString("tz")
		loc := utils.LoadLocation(tz)

		today := time.Now().In(loc)
		if todayFlag != "" {
			parsed, err := utils.ParseDate(todayFlag, loc)
			if err != nil {
				return fmt.Errorf("invalid --today: %w", err)
			}
			today = parsed
		}

		for _, d := range args {
			if _, err := utils.ParseDate(d, loc); err != nil {
				return err
			}
		}

		result := streak.ComputeFromStrings(args, today, previous)
		output, _ := cmd.Flags().GetString("output")
		return writeResult(cmd.OutOrStdout(), output, result)
	},
}

func init() {
	StreakCmd.Flags().String("today", "", "reference day (yyyy-mm-dd), defaults to the current date")
	StreakCmd.Flags().Int("longest", 0, "previously stored longest streak")
	StreakCmd.Flags().String("tz", "", "timezone name for calendar days, defaults to local time")
	StreakCmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
}
