package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andy/hourtab/internal/domain"
	"github.com/andy/hourtab/internal/pdf"
	"github.com/andy/hourtab/internal/service"
	"github.com/spf13/cobra"
)

var billsCmd = &cobra.Command{
	Use:   "bills",
	Short: "Manage bills",
	Long:  `Generate, list, and manage bills (invoices and acts).`,
}

var billsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bills",
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

		var status *domain.BillStatus
		if cmd.Flags().Changed("status") {
			s := domain.BillStatus(mustString(cmd, "status"))
			status = &s
		}

		var billType *domain.BillType
		if cmd.Flags().Changed("type") {
			t := domain.BillType(mustString(cmd, "type"))
			billType = &t
		}

		bills, err := appInstance.BillingService.ListBills(ctx, clientID, status, billType)
		if err != nil {
			return fmt.Errorf("failed to list bills: %w", err)
		}

		if len(bills) == 0 {
			fmt.Println("No bills found")
			return nil
		}

		// Print table header
		fmt.Printf("%-5s %-15s %-20s %-23s %-10s %-12s %-10s\n", "ID", "Number", "Client", "Period", "Time", "Amount", "Status")
		fmt.Println("----------------------------------------------------------------------------------------------------")

		// Print bills
		for _, bill := range bills {
			client, _ := appInstance.ClientRepo.GetByID(ctx, bill.ClientID)
			clientName := fmt.Sprintf("Client #%d", bill.ClientID)
			if client != nil {
				clientName = client.Name
			}

			period := fmt.Sprintf("%s - %s",
				bill.PeriodFrom.Format("2006-01-02"),
				bill.PeriodTo.Format("2006-01-02"),
			)

			fmt.Printf("%-5d %-15s %-20s %-23s %-10s %-12.2f %-10s\n",
				bill.ID,
				bill.BillNumber,
				truncate(clientName, 20),
				period,
				fmt.Sprintf("%dh %dm", bill.TotalHours, bill.TotalMinutes),
				bill.TotalAmount,
				bill.Status,
			)
		}

		fmt.Printf("\nTotal: %d bill(s)\n", len(bills))
		return nil
	},
}

var billsCreateCmd = &cobra.Command{
	Use:   "create [client_id_or_name]",
	Short: "Generate a bill from unbilled time entries",
	Long: `Generate a bill from unbilled time entries.

Select entries either explicitly with --entries, or by work date range
with --from and --to.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Resolve client
		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		opts := service.BillOptions{
			Type: domain.BillType(appInstance.Config.Billing.DefaultType),
		}
		if cmd.Flags().Changed("type") {
			opts.Type = domain.BillType(mustString(cmd, "type"))
		}
		if cmd.Flags().Changed("issue-date") {
			opts.IssueDate, err = parseDate(mustString(cmd, "issue-date"))
			if err != nil {
				return fmt.Errorf("invalid issue date: %w", err)
			}
		}
		if cmd.Flags().Changed("status") {
			opts.Status = domain.BillStatus(mustString(cmd, "status"))
		} else if appInstance.Config.Billing.DefaultStatus != "" {
			opts.Status = domain.BillStatus(appInstance.Config.Billing.DefaultStatus)
		}
		opts.Notes, _ = cmd.Flags().GetString("notes")

		var bill *domain.Bill

		entriesFlag, _ := cmd.Flags().GetString("entries")
		if entriesFlag != "" {
			// Explicit entry selection
			entryIDs, err := parseEntryIDs(entriesFlag)
			if err != nil {
				return err
			}
			bill, err = appInstance.BillingService.GenerateFromEntries(ctx, clientID, entryIDs, opts)
			if err != nil {
				return fmt.Errorf("failed to generate bill: %w", err)
			}
		} else {
			// Date-range selection
			fromStr, _ := cmd.Flags().GetString("from")
			toStr, _ := cmd.Flags().GetString("to")
			if fromStr == "" || toStr == "" {
				return fmt.Errorf("either --entries or both --from and --to are required")
			}

			from, err := parseDate(fromStr)
			if err != nil {
				return fmt.Errorf("invalid from date: %w", err)
			}
			to, err := parseDate(toStr)
			if err != nil {
				return fmt.Errorf("invalid to date: %w", err)
			}

			bill, err = appInstance.BillingService.GenerateFromDateRange(ctx, clientID, from, to, opts)
			if err != nil {
				return fmt.Errorf("failed to generate bill: %w", err)
			}
		}

		fmt.Printf("✓ Bill created: %s\n", bill.BillNumber)
		fmt.Printf("  Client: %s\n", bill.Client.Name)
		fmt.Printf("  Period: %s to %s\n",
			bill.PeriodFrom.Format("2006-01-02"),
			bill.PeriodTo.Format("2006-01-02"),
		)
		fmt.Printf("  Time: %dh %dm\n", bill.TotalHours, bill.TotalMinutes)
		fmt.Printf("  Amount: %.2f\n", bill.TotalAmount)
		fmt.Printf("  Entries: %d\n", len(bill.Entries))

		return nil
	},
}

var billsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show bill details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bill ID: %w", err)
		}

		bill, err := appInstance.BillingService.GetBill(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get bill: %w", err)
		}

		clientName := fmt.Sprintf("Client #%d", bill.ClientID)
		rate := 0.0
		if bill.Client != nil {
			clientName = bill.Client.Name
			rate = bill.Client.HourlyRate
		}

		// Print bill details
		fmt.Println(strings.Repeat("=", 80))
		fmt.Printf("Bill: %s (%s)\n", bill.BillNumber, bill.Type)
		fmt.Println(strings.Repeat("=", 80))
		fmt.Printf("Client: %s\n", clientName)
		fmt.Printf("Issued: %s\n", bill.IssueDate.Format("2006-01-02"))
		fmt.Printf("Period: %s to %s\n",
			bill.PeriodFrom.Format("2006-01-02"),
			bill.PeriodTo.Format("2006-01-02"),
		)
		fmt.Printf("Status: %s\n", bill.Status)
		fmt.Println()

		// Print entries
		if len(bill.Entries) > 0 {
			fmt.Println("Time Entries:")
			fmt.Println(strings.Repeat("-", 80))
			fmt.Printf("%-5s %-12s %-40s %-10s %s\n", "ID", "Date", "Notes", "Time", "Amount")
			fmt.Println(strings.Repeat("-", 80))

			for _, entry := range bill.Entries {
				fmt.Printf("%-5d %-12s %-40s %-10s %8.2f\n",
					entry.ID,
					entry.WorkDate.Format("2006-01-02"),
					truncate(entry.Notes, 40),
					fmt.Sprintf("%dh %dm", entry.Hours, entry.Minutes),
					entry.Amount(rate),
				)
			}
			fmt.Println(strings.Repeat("-", 80))
		}

		// Print totals
		fmt.Printf("\n")
		fmt.Printf("Total Time: %dh %dm\n", bill.TotalHours, bill.TotalMinutes)
		fmt.Printf("Total Amount: %.2f\n", bill.TotalAmount)
		fmt.Println(strings.Repeat("=", 80))

		return nil
	},
}

var billsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a bill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bill ID: %w", err)
		}

		// Collect changed flags into a patch
		var patch domain.BillPatch
		if cmd.Flags().Changed("status") {
			s := domain.BillStatus(mustString(cmd, "status"))
			patch.Status = &s
		}
		if cmd.Flags().Changed("issue-date") {
			t, err := parseDate(mustString(cmd, "issue-date"))
			if err != nil {
				return fmt.Errorf("invalid issue date: %w", err)
			}
			patch.IssueDate = &t
		}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			patch.Notes = &notes
		}

		bill, err := appInstance.BillingService.UpdateBill(ctx, id, patch)
		if err != nil {
			return fmt.Errorf("failed to update bill: %w", err)
		}

		fmt.Printf("✓ Bill updated: %s (status: %s)\n", bill.BillNumber, bill.Status)
		return nil
	},
}

var billsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a bill and release its time entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bill ID: %w", err)
		}

		bill, err := appInstance.BillingService.GetBill(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get bill: %w", err)
		}

		if !confirmPrompt(fmt.Sprintf("Delete bill %s and release its %d entries back to unbilled?", bill.BillNumber, len(bill.Entries))) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.BillingService.DeleteBill(ctx, id); err != nil {
			return fmt.Errorf("failed to delete bill: %w", err)
		}

		fmt.Printf("✓ Bill deleted: %s (%d entries released)\n", bill.BillNumber, len(bill.Entries))
		return nil
	},
}

var billsExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a bill as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bill ID: %w", err)
		}

		bill, err := appInstance.BillingService.GetBill(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get bill: %w", err)
		}

		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			outputPath = filepath.Join(appInstance.Config.Billing.OutputDir, bill.BillNumber+".pdf")
		}

		generator := pdf.NewBillGenerator(appInstance.Config.User)
		if err := generator.Generate(bill, outputPath); err != nil {
			return fmt.Errorf("failed to export bill: %w", err)
		}

		fmt.Printf("✓ Bill exported: %s\n", outputPath)
		return nil
	},
}

func parseEntryIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid entry ID '%s': %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func init() {
	billsCmd.AddCommand(billsListCmd)
	billsCmd.AddCommand(billsCreateCmd)
	billsCmd.AddCommand(billsShowCmd)
	billsCmd.AddCommand(billsEditCmd)
	billsCmd.AddCommand(billsDeleteCmd)
	billsCmd.AddCommand(billsExportCmd)

	// List flags
	billsListCmd.Flags().String("client", "", "Filter by client ID or name")
	billsListCmd.Flags().String("status", "", "Filter by status (draft, issued, paid, cancelled)")
	billsListCmd.Flags().String("type", "", "Filter by type (invoice, act)")

	// Create flags
	billsCreateCmd.Flags().String("entries", "", "Comma-separated entry IDs to bill")
	billsCreateCmd.Flags().String("from", "", "Bill unbilled entries from this work date")
	billsCreateCmd.Flags().String("to", "", "Bill unbilled entries up to this work date")
	billsCreateCmd.Flags().String("type", "", "Bill type (invoice, act)")
	billsCreateCmd.Flags().String("issue-date", "", "Issue date (defaults to today)")
	billsCreateCmd.Flags().String("status", "", "Initial status (defaults to draft)")
	billsCreateCmd.Flags().String("notes", "", "Notes on the bill")

	// Edit flags
	billsEditCmd.Flags().String("status", "", "New status")
	billsEditCmd.Flags().String("issue-date", "", "New issue date")
	billsEditCmd.Flags().String("notes", "", "New notes")

	// Export flags
	billsExportCmd.Flags().String("output", "", "Output path (defaults to configured output dir)")
}
