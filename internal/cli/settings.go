package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/andy/invoicer/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the company profile",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appInstance.SettingsService.Get(context.Background())
		if err != nil {
			return err
		}
		cfg := appInstance.Config.Invoice
		writeSettings(cmd.OutOrStdout(), s, s.InvoiceNumber(cfg.NumberPrefix, cfg.NumberWidth))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change company profile fields",
	Long: `Change company profile fields. Only the flags given are updated.

Examples:
  invoicer settings set --name "ACME Pty Ltd" --email billing@acme.test
  invoicer settings set --no-tax
  invoicer settings set --tax --tax-rate 12.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := appInstance.SettingsService.Get(ctx)
		if err != nil {
			return err
		}

		if err := applySettingsFlags(cmd, s); err != nil {
			return err
		}

		if err := appInstance.SettingsService.Update(ctx, s); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "✓ Settings saved")
		return nil
	},
}

// applySettingsFlags copies every flag the user set onto s
func applySettingsFlags(cmd *cobra.Command, s *domain.CompanySettings) error {
	flags := cmd.Flags()

	strs := map[string]*string{
		"name":    &s.CompanyName,
		"email":   &s.CompanyEmail,
		"phone":   &s.CompanyPhone,
		"address": &s.CompanyAddress,
		"terms":   &s.DefaultPaymentTerms,
	}
	for name, dst := range strs {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	if flags.Changed("tax") && flags.Changed("no-tax") {
		return fmt.Errorf("--tax and --no-tax are mutually exclusive")
	}
	if flags.Changed("tax") {
		s.TaxEnabled, _ = flags.GetBool("tax")
	}
	if flags.Changed("no-tax") {
		off, _ := flags.GetBool("no-tax")
		s.TaxEnabled = !off
	}

	if flags.Changed("tax-rate") {
		raw, _ := flags.GetString("tax-rate")
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid tax rate %q: %w", raw, err)
		}
		s.TaxRate = rate
	}

	return nil
}

func writeSettings(w io.Writer, s *domain.CompanySettings, nextNumber string) {
	tax := "disabled"
	if s.TaxEnabled {
		tax = "enabled"
	}
	fmt.Fprintf(w, "Company:        %s\n", s.CompanyName)
	fmt.Fprintf(w, "Email:          %s\n", s.CompanyEmail)
	fmt.Fprintf(w, "Phone:          %s\n", s.CompanyPhone)
	fmt.Fprintf(w, "Address:        %s\n", s.CompanyAddress)
	fmt.Fprintf(w, "Tax:            %s (rate %s%%)\n", tax, s.TaxRate.String())
	fmt.Fprintf(w, "Payment terms:  %s\n", s.DefaultPaymentTerms)
	fmt.Fprintf(w, "Next invoice:   %s\n", nextNumber)
}

func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Company name")
	cmd.Flags().String("email", "", "Company email")
	cmd.Flags().String("phone", "", "Company phone")
	cmd.Flags().String("address", "", "Company address")
	cmd.Flags().String("terms", "", "Default payment terms")
	cmd.Flags().Bool("tax", false, "Enable tax")
	cmd.Flags().Bool("no-tax", false, "Disable tax (the rate is kept)")
	cmd.Flags().String("tax-rate", "", "Tax rate in percent, e.g. 10")
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	addSettingsFlags(settingsSetCmd)
}
