package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andy/hourtab/internal/domain"
	"github.com/spf13/cobra"
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Manage payments",
	Long:  `List, add, edit, and delete payments received from clients.`,
}

var paymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Parse filters
		var clientID *int64
		if cmd.Flags().Changed("client") {
			id, err := resolveClientID(ctx, mustString(cmd, "client"))
			if err != nil {
				return fmt.Errorf("failed to resolve client: %w", err)
			}
			clientID = &id
		}

		var paymentType *domain.PaymentType
		if cmd.Flags().Changed("type") {
			t := domain.PaymentType(mustString(cmd, "type"))
			paymentType = &t
		}

		var from, to *time.Time
		if cmd.Flags().Changed("from") {
			t, err := parseDate(mustString(cmd, "from"))
			if err != nil {
				return fmt.Errorf("invalid from date: %w", err)
			}
			from = &t
		}
		if cmd.Flags().Changed("to") {
			t, err := parseDate(mustString(cmd, "to"))
			if err != nil {
				return fmt.Errorf("invalid to date: %w", err)
			}
			to = &t
		}

		payments, err := appInstance.PaymentRepo.List(ctx, clientID, paymentType, from, to)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}

		if len(payments) == 0 {
			fmt.Println("No payments found")
			return nil
		}

		// Print table header
		fmt.Printf("%-5s %-20s %-12s %-12s %-12s %-30s\n", "ID", "Client", "Date", "Type", "Amount", "Description")
		fmt.Println("-------------------------------------------------------------------------------------------")

		var totalAmount float64

		// Print payments
		for _, payment := range payments {
			client, _ := appInstance.ClientRepo.GetByID(ctx, payment.ClientID)
			clientName := fmt.Sprintf("Client #%d", payment.ClientID)
			if client != nil {
				clientName = client.Name
			}

			amount := "-"
			if payment.Amount != nil {
				amount = fmt.Sprintf("%.2f", *payment.Amount)
				totalAmount += *payment.Amount
			}

			fmt.Printf("%-5d %-20s %-12s %-12s %-12s %-30s\n",
				payment.ID,
				truncate(clientName, 20),
				payment.PaymentDate.Format("2006-01-02"),
				payment.Type,
				amount,
				truncate(payment.SupplementsDescription, 30),
			)
		}

		fmt.Println("-------------------------------------------------------------------------------------------")
		fmt.Printf("Total: %d payment(s), %.2f\n", len(payments), totalAmount)
		return nil
	},
}

var paymentsAddCmd = &cobra.Command{
	Use:   "add [client_id_or_name] [date]",
	Short: "Record a payment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Resolve client
		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		paymentDate, err := parseDate(args[1])
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}

		typeStr, _ := cmd.Flags().GetString("type")
		notes, _ := cmd.Flags().GetString("notes")
		description, _ := cmd.Flags().GetString("description")

		payment := domain.NewPayment(clientID, paymentDate, domain.PaymentType(typeStr))
		payment.SupplementsDescription = description
		payment.Notes = notes

		if cmd.Flags().Changed("amount") {
			amount, _ := cmd.Flags().GetFloat64("amount")
			payment.Amount = &amount
		}

		if err := payment.Validate(); err != nil {
			return fmt.Errorf("invalid payment: %w", err)
		}

		if err := appInstance.PaymentRepo.Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		fmt.Printf("✓ Payment recorded (ID: %d)\n", payment.ID)
		if payment.Amount != nil {
			fmt.Printf("  Amount: %.2f\n", *payment.Amount)
		}

		return nil
	},
}

var paymentsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid payment ID: %w", err)
		}

		payment, err := appInstance.PaymentRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get payment: %w", err)
		}
		if payment == nil {
			return fmt.Errorf("payment not found")
		}

		// Collect changed flags into a patch
		var patch domain.PaymentPatch
		if cmd.Flags().Changed("date") {
			t, err := parseDate(mustString(cmd, "date"))
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			patch.PaymentDate = &t
		}
		if cmd.Flags().Changed("type") {
			t := domain.PaymentType(mustString(cmd, "type"))
			patch.Type = &t
		}
		if cmd.Flags().Changed("amount") {
			amount, _ := cmd.Flags().GetFloat64("amount")
			ptr := &amount
			patch.Amount = &ptr
		}
		if cmd.Flags().Changed("clear-amount") {
			var cleared *float64
			patch.Amount = &cleared
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			patch.SupplementsDescription = &description
		}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			patch.Notes = &notes
		}

		patch.Apply(payment)

		if err := payment.Validate(); err != nil {
			return fmt.Errorf("invalid payment: %w", err)
		}

		if err := appInstance.PaymentRepo.Update(ctx, payment); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		fmt.Printf("✓ Payment updated (ID: %d)\n", payment.ID)
		return nil
	},
}

var paymentsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid payment ID: %w", err)
		}

		if err := appInstance.PaymentRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}

		fmt.Printf("✓ Payment deleted (ID: %d)\n", id)
		return nil
	},
}

func init() {
	paymentsCmd.AddCommand(paymentsListCmd)
	paymentsCmd.AddCommand(paymentsAddCmd)
	paymentsCmd.AddCommand(paymentsEditCmd)
	paymentsCmd.AddCommand(paymentsDeleteCmd)

	// List flags
	paymentsListCmd.Flags().String("client", "", "Filter by client ID or name")
	paymentsListCmd.Flags().String("type", "", "Filter by type (money, supplements, other)")
	paymentsListCmd.Flags().String("from", "", "Filter from date (YYYY-MM-DD)")
	paymentsListCmd.Flags().String("to", "", "Filter to date (YYYY-MM-DD)")

	// Add flags
	paymentsAddCmd.Flags().String("type", "money", "Payment type (money, supplements, other)")
	paymentsAddCmd.Flags().Float64("amount", 0, "Amount (required for money payments)")
	paymentsAddCmd.Flags().String("description", "", "Description (required for supplements)")
	paymentsAddCmd.Flags().String("notes", "", "Notes about the payment")

	// Edit flags
	paymentsEditCmd.Flags().String("date", "", "New payment date")
	paymentsEditCmd.Flags().String("type", "", "New payment type")
	paymentsEditCmd.Flags().Float64("amount", 0, "New amount")
	paymentsEditCmd.Flags().Bool("clear-amount", false, "Remove the amount")
	paymentsEditCmd.Flags().String("description", "", "New description")
	paymentsEditCmd.Flags().String("notes", "", "New notes")
}
