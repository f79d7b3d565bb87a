package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andy/hourtab/internal/domain"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
	Long:  `List, add, edit, and deactivate clients.`,
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		all, _ := cmd.Flags().GetBool("all")

		clients, err := appInstance.ClientRepo.List(ctx, !all)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		if len(clients) == 0 {
			fmt.Println("No clients found")
			return nil
		}

		// Print table header
		fmt.Printf("%-5s %-30s %-15s %-10s\n", "ID", "Name", "Hourly Rate", "Status")
		fmt.Println("----------------------------------------------------------------------")

		// Print clients
		for _, client := range clients {
			status := "Active"
			if !client.IsActive {
				status = "Inactive"
			}
			fmt.Printf("%-5d %-30s %-15.2f %-10s\n",
				client.ID,
				truncate(client.Name, 30),
				client.HourlyRate,
				status,
			)
		}

		fmt.Printf("\nTotal: %d client(s)\n", len(clients))
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		name := args[0]

		rate, _ := cmd.Flags().GetFloat64("rate")
		contact, _ := cmd.Flags().GetString("contact")
		category, _ := cmd.Flags().GetString("category")
		notes, _ := cmd.Flags().GetString("notes")

		client := domain.NewClient(name, rate)
		client.ContactInfo = contact
		client.ActivityCategory = category
		client.Notes = notes

		if err := client.Validate(); err != nil {
			return fmt.Errorf("invalid client: %w", err)
		}

		if err := appInstance.ClientRepo.Create(ctx, client); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Printf("✓ Client created: %s (ID: %d)\n", client.Name, client.ID)
		fmt.Printf("  Hourly Rate: %.2f\n", client.HourlyRate)

		return nil
	},
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit an existing client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid client ID: %w", err)
		}

		client, err := appInstance.ClientRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}
		if client == nil {
			return fmt.Errorf("client not found")
		}

		// Collect changed flags into a patch
		var patch domain.ClientPatch
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			patch.Name = &name
		}
		if cmd.Flags().Changed("rate") {
			rate, _ := cmd.Flags().GetFloat64("rate")
			patch.HourlyRate = &rate
		}
		if cmd.Flags().Changed("contact") {
			contact, _ := cmd.Flags().GetString("contact")
			patch.ContactInfo = &contact
		}
		if cmd.Flags().Changed("category") {
			category, _ := cmd.Flags().GetString("category")
			patch.ActivityCategory = &category
		}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			patch.Notes = &notes
		}

		patch.Apply(client)

		if err := client.Validate(); err != nil {
			return fmt.Errorf("invalid client: %w", err)
		}

		if err := appInstance.ClientRepo.Update(ctx, client); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		fmt.Printf("✓ Client updated: %s\n", client.Name)
		return nil
	},
}

var clientsDeactivateCmd = &cobra.Command{
	Use:   "deactivate [id]",
	Short: "Deactivate a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid client ID: %w", err)
		}

		client, err := appInstance.ClientRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}
		if client == nil {
			return fmt.Errorf("client not found")
		}

		if err := appInstance.ClientRepo.Deactivate(ctx, id); err != nil {
			return fmt.Errorf("failed to deactivate client: %w", err)
		}

		fmt.Printf("✓ Client deactivated: %s\n", client.Name)
		return nil
	},
}

var clientsReactivateCmd = &cobra.Command{
	Use:   "reactivate [id]",
	Short: "Reactivate a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid client ID: %w", err)
		}

		if err := appInstance.ClientRepo.Reactivate(ctx, id); err != nil {
			return fmt.Errorf("failed to reactivate client: %w", err)
		}

		fmt.Printf("✓ Client reactivated (ID: %d)\n", id)
		return nil
	},
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsEditCmd)
	clientsCmd.AddCommand(clientsDeactivateCmd)
	clientsCmd.AddCommand(clientsReactivateCmd)

	// List flags
	clientsListCmd.Flags().Bool("all", false, "Include inactive clients")

	// Add flags
	clientsAddCmd.Flags().Float64("rate", 0, "Hourly rate (required)")
	clientsAddCmd.MarkFlagRequired("rate")
	clientsAddCmd.Flags().String("contact", "", "Contact info")
	clientsAddCmd.Flags().String("category", "", "Activity category for imported entries")
	clientsAddCmd.Flags().String("notes", "", "Notes about the client")

	// Edit flags
	clientsEditCmd.Flags().String("name", "", "New name")
	clientsEditCmd.Flags().Float64("rate", 0, "New hourly rate")
	clientsEditCmd.Flags().String("contact", "", "New contact info")
	clientsEditCmd.Flags().String("category", "", "New activity category")
	clientsEditCmd.Flags().String("notes", "", "New notes")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
