package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.AddCommand(sweepDecayCmd)
	sweepCmd.AddCommand(sweepInactiveCmd)
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a momentum sweep once, outside the scheduler",
	Long: `Run one sweep immediately. The serve daemon already runs these on a
daily cron schedule; the manual form exists for backfills and operator
intervention. Running the decay sweep twice in one day decays twice.`,
}

var sweepDecayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Apply the daily momentum decay to every active participant",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := openServices()
		if err != nil {
			return err
		}
		defer svcs.db.Close()

		n, err := svcs.stipend.ApplyDailyDecay()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "decayed %d participant(s)\n", n)
		return nil
	},
}

var sweepInactiveCmd = &cobra.Command{
	Use:   "inactive",
	Short: "Pause participants with no recent completions and low momentum",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := openServices()
		if err != nil {
			return err
		}
		defer svcs.db.Close()

		paused, err := svcs.stipend.CheckInactiveUsers()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "paused %d participant(s)\n", len(paused))
		for _, id := range paused {
			fmt.Fprintf(os.Stdout, "  %s\n", id)
		}
		return nil
	},
}
