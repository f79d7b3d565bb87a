package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the database",
	Long: `Reset data in the database.

Examples:
  hourtab reset entries    # Delete all time entries and bills
  hourtab reset bills      # Delete all bills and release time entries
  hourtab reset all        # Wipe everything: entries, payments, bills, clients`,
}

var resetEntriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Delete all time entries and bills",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL time entries and bills. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		db := appInstance.DB

		// Clear bill references from entries before deleting bills
		if _, err := db.Exec("UPDATE time_entries SET is_billed = 0, bill_id = NULL WHERE bill_id IS NOT NULL"); err != nil {
			return fmt.Errorf("failed to release entries: %w", err)
		}

		// Order matters due to foreign keys
		tables := []string{
			"time_entries",
			"bills",
		}

		for _, table := range tables {
			if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		fmt.Println("All time entries and bills have been deleted.")
		return nil
	},
}

var resetBillsCmd = &cobra.Command{
	Use:   "bills",
	Short: "Delete all bills and release associated time entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL bills and release all time entries. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		db := appInstance.DB

		// Release all entries that were attached to bills
		if _, err := db.Exec("UPDATE time_entries SET is_billed = 0, bill_id = NULL WHERE bill_id IS NOT NULL"); err != nil {
			return fmt.Errorf("failed to release entries: %w", err)
		}

		if _, err := db.Exec("DELETE FROM bills"); err != nil {
			return fmt.Errorf("failed to clear bills: %w", err)
		}

		fmt.Println("All bills have been deleted and time entries released.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: clients, entries, payments, bills, everything",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL data (clients, entries, payments, bills). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		db := appInstance.DB

		// Clear bill references from entries before deleting bills
		if _, err := db.Exec("UPDATE time_entries SET is_billed = 0, bill_id = NULL WHERE bill_id IS NOT NULL"); err != nil {
			return fmt.Errorf("failed to release entries: %w", err)
		}

		// Order matters due to foreign keys
		tables := []string{
			"time_entries",
			"bills",
			"payments",
			"clients",
		}

		for _, table := range tables {
			if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		fmt.Println("All data has been deleted.")
		return nil
	},
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetEntriesCmd)
	resetCmd.AddCommand(resetBillsCmd)
	resetCmd.AddCommand(resetAllCmd)
}
