package cli

import (
	"fmt"
	"io"

	"github.com/andy/invoicer/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change local configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", config.DefaultConfigPath())
		return writeConfig(cmd.OutOrStdout(), appInstance.Config)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change numbering, export and log settings",
	Long: `Change numbering, export and log settings. Only the flags given are updated.
Changes apply from the next start.

Examples:
  invoicer config set --number-prefix QTE --number-width 5
  invoicer config set --output-dir ~/Documents/invoices`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyConfigFlags(cmd, appInstance.Config); err != nil {
			return err
		}
		if err := appInstance.SaveConfig(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Config saved")
		return nil
	},
}

// applyConfigFlags copies every flag the user set onto cfg
func applyConfigFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("number-prefix") {
		cfg.Invoice.NumberPrefix, _ = flags.GetString("number-prefix")
	}
	if flags.Changed("number-width") {
		width, _ := flags.GetInt("number-width")
		if width < 1 {
			return fmt.Errorf("number width must be at least 1, got %d", width)
		}
		cfg.Invoice.NumberWidth = width
	}
	if flags.Changed("output-dir") {
		cfg.Invoice.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		switch level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("unknown log level %q", level)
		}
		cfg.Log.Level = level
	}
	return nil
}

func writeConfig(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("number-prefix", "", "Invoice number prefix, e.g. INV")
	cmd.Flags().Int("number-width", 0, "Zero-padded digits in invoice numbers")
	cmd.Flags().String("output-dir", "", "Directory for exported PDFs")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	addConfigFlags(configSetCmd)
}
