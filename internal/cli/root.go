package cli

import (
	"github.com/andy/invoicer/internal/app"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Create, preview and export invoices and quotes",
	Long: `Invoicer keeps your company profile, invoices and quotes in an encrypted
local database and exports them as PDF.

By default, running invoicer without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return launchTUI(cmd, args)
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
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
