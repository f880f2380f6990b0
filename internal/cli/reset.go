package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andy/invoicer/internal/db"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the database",
	Long: `Reset data in the database.

Examples:
  invoicer reset invoices    # Delete all invoices and quotes
  invoicer reset all         # Also restore the default company profile and numbering`,
}

var resetInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Delete all invoices and their line items",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL invoices and quotes. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := clearTables(appInstance.DB, "line_items", "invoices"); err != nil {
			return err
		}

		appInstance.Logger.Warn("all invoices deleted")
		fmt.Println("All invoices have been deleted.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data and restore the default company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL data (invoices, company profile, numbering). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := clearTables(appInstance.DB, "line_items", "invoices", "company_settings"); err != nil {
			return err
		}

		if _, err := appInstance.SettingsService.Provision(context.Background()); err != nil {
			return err
		}

		appInstance.Logger.Warn("all data deleted")
		fmt.Println("All data has been deleted. The default company profile was restored.")
		return nil
	},
}

// clearTables empties the tables in order within one transaction
func clearTables(database *db.DB, tables ...string) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
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
	resetCmd.AddCommand(resetInvoicesCmd)
	resetCmd.AddCommand(resetAllCmd)
}
