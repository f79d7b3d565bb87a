package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andy/hourtab/internal/domain"
	"github.com/spf13/cobra"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage time entries",
	Long:  `List, add, edit, and delete time entries.`,
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
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

		var workDate *time.Time
		if cmd.Flags().Changed("date") {
			t, err := parseDate(mustString(cmd, "date"))
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			workDate = &t
		}

		var isBilled *bool
		if cmd.Flags().Changed("billed") {
			b, _ := cmd.Flags().GetBool("billed")
			isBilled = &b
		}

		entries, err := appInstance.EntryRepo.List(ctx, clientID, workDate, isBilled)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No entries found")
			return nil
		}

		// Print table header
		fmt.Printf("%-5s %-20s %-12s %-10s %-15s %-8s\n", "ID", "Client", "Date", "Time", "Source", "Status")
		fmt.Println("--------------------------------------------------------------------------------")

		totalMinutes := 0

		// Print entries
		for _, entry := range entries {
			client, _ := appInstance.ClientRepo.GetByID(ctx, entry.ClientID)
			clientName := fmt.Sprintf("Client #%d", entry.ClientID)
			if client != nil {
				clientName = client.Name
			}

			status := "Unbilled"
			if entry.IsBilled {
				status = fmt.Sprintf("Bill #%d", *entry.BillID)
			}

			fmt.Printf("%-5d %-20s %-12s %-10s %-15s %-8s\n",
				entry.ID,
				truncate(clientName, 20),
				entry.WorkDate.Format("2006-01-02"),
				fmt.Sprintf("%dh %dm", entry.Hours, entry.Minutes),
				entry.Source,
				status,
			)

			totalMinutes += entry.TotalMinutes()
		}

		fmt.Println("--------------------------------------------------------------------------------")
		fmt.Printf("Total: %d entries, %dh %dm\n", len(entries), totalMinutes/60, totalMinutes%60)
		return nil
	},
}

var entriesAddCmd = &cobra.Command{
	Use:   "add [client_id_or_name] [date] [duration]",
	Short: "Add a time entry (duration like 3h20m)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Resolve client
		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		workDate, err := parseDate(args[1])
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}

		hours, minutes, err := parseWorkDuration(args[2])
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		notes, _ := cmd.Flags().GetString("notes")
		source, _ := cmd.Flags().GetString("source")
		excludeAFK, _ := cmd.Flags().GetBool("exclude-afk")

		entry := domain.NewTimeEntry(clientID, workDate, hours, minutes)
		entry.Notes = notes
		entry.ExcludeAFK = excludeAFK
		if source != "" {
			entry.Source = domain.EntrySource(source)
		}

		if err := entry.Validate(); err != nil {
			return fmt.Errorf("invalid entry: %w", err)
		}

		if err := appInstance.EntryRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}

		fmt.Printf("✓ Time entry created (ID: %d)\n", entry.ID)
		fmt.Printf("  Date: %s\n", entry.WorkDate.Format("2006-01-02"))
		fmt.Printf("  Time: %dh %dm\n", entry.Hours, entry.Minutes)

		return nil
	},
}

var entriesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit an unbilled time entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID: %w", err)
		}

		entry, err := appInstance.EntryRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}
		if entry == nil {
			return fmt.Errorf("entry not found")
		}

		if entry.IsBilled {
			return fmt.Errorf("cannot edit entry: already billed")
		}

		// Collect changed flags into a patch
		var patch domain.TimeEntryPatch
		if cmd.Flags().Changed("date") {
			t, err := parseDate(mustString(cmd, "date"))
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			patch.WorkDate = &t
		}
		if cmd.Flags().Changed("duration") {
			hours, minutes, err := parseWorkDuration(mustString(cmd, "duration"))
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			patch.Hours = &hours
			patch.Minutes = &minutes
		}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			patch.Notes = &notes
		}

		patch.Apply(entry)

		if err := entry.Validate(); err != nil {
			return fmt.Errorf("invalid entry: %w", err)
		}

		if err := appInstance.EntryRepo.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}

		fmt.Printf("✓ Entry updated (ID: %d)\n", entry.ID)
		return nil
	},
}

var entriesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a time entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID: %w", err)
		}

		entry, err := appInstance.EntryRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}
		if entry == nil {
			return fmt.Errorf("entry not found")
		}

		if entry.IsBilled && !confirmPrompt(fmt.Sprintf("Entry %d is on bill #%d; the bill totals will not be adjusted. Delete anyway?", id, *entry.BillID)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.EntryRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}

		fmt.Printf("✓ Entry deleted (ID: %d)\n", id)
		return nil
	},
}

func init() {
	entriesCmd.AddCommand(entriesListCmd)
	entriesCmd.AddCommand(entriesAddCmd)
	entriesCmd.AddCommand(entriesEditCmd)
	entriesCmd.AddCommand(entriesDeleteCmd)

	// List flags
	entriesListCmd.Flags().String("client", "", "Filter by client ID or name")
	entriesListCmd.Flags().String("date", "", "Filter by work date (YYYY-MM-DD or 'today')")
	entriesListCmd.Flags().Bool("billed", false, "Filter by billed state")

	// Add flags
	entriesAddCmd.Flags().String("notes", "", "Notes about the entry")
	entriesAddCmd.Flags().String("source", "", "Entry source (manual, activity-import, csv-import)")
	entriesAddCmd.Flags().Bool("exclude-afk", false, "Mark AFK time as excluded (imported entries)")

	// Edit flags
	entriesEditCmd.Flags().String("date", "", "New work date")
	entriesEditCmd.Flags().String("duration", "", "New duration (like 3h20m)")
	entriesEditCmd.Flags().String("notes", "", "New notes")
}
