package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/service"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "List, show and export invoices",
	Long:  `List, show and export invoices and quotes. Use the TUI to create or edit them.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		invoices, err := appInstance.InvoiceService.ListInvoices(context.Background())
		if err != nil {
			return err
		}
		writeInvoiceList(cmd.OutOrStdout(), invoices)
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [id_or_number]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		doc, err := loadDocument(ctx, appInstance.InvoiceService, appInstance.SettingsService, args[0])
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), export.Text(doc))
		return nil
	},
}

var invoicesExportCmd = &cobra.Command{
	Use:   "export [id_or_number]",
	Short: "Export an invoice as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		doc, err := loadDocument(ctx, appInstance.InvoiceService, appInstance.SettingsService, args[0])
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = appInstance.Config.Invoice.OutputDir
		}

		path, err := export.WritePDF(doc, dir)
		if err != nil {
			return fmt.Errorf("failed to export invoice: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %s exported to %s\n", doc.Invoice.Type.Label(), doc.Invoice.InvoiceNumber, path)
		return nil
	},
}

// resolveInvoice looks an invoice up by id, then by invoice number
func resolveInvoice(ctx context.Context, invoices service.InvoiceService, ref string) (*domain.Invoice, error) {
	invoice, err := invoices.GetInvoice(ctx, ref)
	if err == nil {
		return invoice, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	all, err := invoices.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	for _, inv := range all {
		if strings.EqualFold(inv.InvoiceNumber, ref) {
			return invoices.GetInvoice(ctx, inv.ID)
		}
	}
	return nil, fmt.Errorf("invoice %q: %w", ref, domain.ErrNotFound)
}

// loadDocument resolves an invoice and pairs it with the company profile when available
func loadDocument(ctx context.Context, invoices service.InvoiceService, settings service.SettingsService, ref string) (export.Document, error) {
	invoice, err := resolveInvoice(ctx, invoices, ref)
	if err != nil {
		return export.Document{}, err
	}

	company, err := settings.Get(ctx)
	if err != nil && !errors.Is(err, service.ErrSettingsMissing) {
		return export.Document{}, err
	}

	return export.Document{Invoice: invoice, Company: company}, nil
}

func writeInvoiceList(w io.Writer, invoices []*domain.Invoice) {
	if len(invoices) == 0 {
		fmt.Fprintln(w, "No invoices found")
		return
	}

	fmt.Fprintf(w, "%-12s %-8s %-24s %-12s %12s %-8s %s\n", "Number", "Type", "Client", "Date", "Total", "Status", "ID")
	fmt.Fprintln(w, strings.Repeat("-", 118))

	for _, inv := range invoices {
		fmt.Fprintf(w, "%-12s %-8s %-24s %-12s %12s %-8s %s\n",
			truncate(inv.InvoiceNumber, 12),
			inv.Type.Label(),
			truncate(inv.ClientName, 24),
			inv.InvoiceDate.Format("2006-01-02"),
			export.Money(inv.Total),
			inv.Status,
			inv.ID,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d invoice(s)\n", len(invoices))
}

// truncate shortens s to max runes with an ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesExportCmd)

	invoicesExportCmd.Flags().String("dir", "", "Output directory (defaults to invoice.output_dir from config)")
}
