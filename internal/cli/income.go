package cli

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stride-works/stride/internal/infra/observability"
)

func init() {
	rootCmd.AddCommand(incomeCmd)
	incomeCmd.AddCommand(incomeApproveCmd)
	incomeCmd.AddCommand(incomeRejectCmd)

	incomeApproveCmd.Flags().StringP("reviewer", "r", "", "Reviewer identifier (required)")
	incomeApproveCmd.MarkFlagRequired("reviewer")
	incomeRejectCmd.Flags().StringP("reviewer", "r", "", "Reviewer identifier (required)")
	incomeRejectCmd.MarkFlagRequired("reviewer")
	incomeRejectCmd.Flags().String("reason", "", "Rejection reason shown to the participant")
}

var incomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Review submitted income records",
}

var incomeApproveCmd = &cobra.Command{
	Use:   "approve RECORD_ID",
	Short: "Verify a submitted income record and credit the ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runIncomeApprove,
}

func runIncomeApprove(cmd *cobra.Command, args []string) error {
	reviewer, _ := cmd.Flags().GetString("reviewer")
	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.db.Close()

	ok, total, err := svcs.income.Approve(args[0], reviewer)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(os.Stdout, "record is not awaiting review; nothing changed")
		return nil
	}
	fmt.Fprintf(os.Stdout, "approved; lifetime verified income is now $%.2f\n", total)
	return nil
}

var incomeRejectCmd = &cobra.Command{
	Use:   "reject RECORD_ID",
	Short: "Reject a submitted income record",
	Args:  cobra.ExactArgs(1),
	RunE:  runIncomeReject,
}

func runIncomeReject(cmd *cobra.Command, args []string) error {
	reviewer, _ := cmd.Flags().GetString("reviewer")
	reason, _ := cmd.Flags().GetString("reason")
	svcs, err := openServices()
	if err != nil {
		return err
	}
	defer svcs.db.Close()

	ok, err := svcs.income.Reject(args[0], reviewer, reason)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(os.Stdout, "record is not awaiting review; nothing changed")
		return nil
	}
	fmt.Fprintln(os.Stdout, "rejected")
	return nil
}

// openServices wires the service layer for one-shot admin commands.
func openServices() (*services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(true)
	metrics := observability.New(prometheus.NewRegistry())
	return buildServices(cfg, metrics, log)
}
