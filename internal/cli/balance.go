package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/hourtab/internal/domain"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [client_id_or_name]",
	Short: "Show a client's balance",
	Long:  `Show a client's financial summary: worked time, earnings, payments, and the net balance.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		report, err := appInstance.BalanceService.Calculate(ctx, clientID)
		if err != nil {
			return fmt.Errorf("failed to calculate balance: %w", err)
		}

		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("Balance: %s\n", report.Client.Name)
		fmt.Println(strings.Repeat("=", 60))

		fmt.Printf("Time worked: %s (%d entries)\n",
			report.TimeWorked.FormattedTime(), report.TimeWorked.Entries)
		fmt.Printf("Earnings: %.2f (at %.2f/h)\n",
			report.Earnings.TotalAmount, report.Earnings.HourlyRate)
		fmt.Println()

		fmt.Printf("Payments received: %.2f\n", report.Payments.TotalPaid)
		fmt.Printf("  Money: %.2f\n", report.Payments.Money)
		fmt.Printf("  Supplements: %.2f\n", report.Payments.Supplements)
		for _, item := range report.Payments.SupplementsList {
			amount := "-"
			if item.Amount != nil {
				amount = fmt.Sprintf("%.2f", *item.Amount)
			}
			fmt.Printf("    %s  %-10s %s\n",
				item.PaymentDate.Format("2006-01-02"), amount, item.Description)
		}
		fmt.Println()

		fmt.Printf("Unbilled: %dh %dm, %.2f (%d entries)\n",
			report.Unbilled.Hours, report.Unbilled.Minutes,
			report.Unbilled.Amount, report.Unbilled.Entries)
		fmt.Println(strings.Repeat("-", 60))

		if report.Balance.Status == domain.BalanceClientCredit {
			fmt.Printf("Balance: %.2f (client credit)\n", report.Balance.Amount)
		} else {
			fmt.Printf("Balance: %.2f (client owes)\n", report.Balance.Amount)
		}
		fmt.Println(strings.Repeat("=", 60))

		return nil
	},
}
