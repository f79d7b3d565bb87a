package cli

import (
	"github.com/andy/hourtab/internal/app"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "hourtab",
	Short: "A CLI billing tool for freelancers",
	Long: `Hourtab tracks worked time, payments, and bills per client.

By default, running hourtab without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior: launch TUI
		launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	// Add all subcommands
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(paymentsCmd)
	rootCmd.AddCommand(billsCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
