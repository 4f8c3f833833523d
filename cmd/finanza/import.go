package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/adriaviles2711/finanzaApp/internal/cli"
	"github.com/adriaviles2711/finanzaApp/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from CSV, JSON backups or OFX/QFX statements",
		Long: `Import transactions from external files. The format is inferred from
the extension unless --format is given.

  .csv        bank CSV exports (flexible headers, Spanish or English)
  .json       backup files with categories and transactions
  .ofx .qfx   bank statements

Examples:
  finanza import ~/Downloads/movimientos.csv
  finanza import backup-2026-08.json
  finanza import --format ofx statement.dat`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	cmd.Flags().String("format", "", "force format (csv, json, ofx)")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			format = "csv"
		case ".json":
			format = "json"
		case ".ofx", ".qfx":
			format = "ofx"
		default:
			return fmt.Errorf("cannot infer format from %q, pass --format", path)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "importing")
		}
		_ = bar.Set(done)
	}

	var summary *service.ImportSummary
	switch format {
	case "csv":
		summary, err = a.manager.ImportCSV(ctx, f, progress)
	case "json":
		summary, err = a.manager.ImportJSON(ctx, f, progress)
	case "ofx":
		summary, err = a.manager.ImportOFX(ctx, f, progress)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	printImportSummary(summary)
	a.flush(ctx)
	return nil
}

func printImportSummary(summary *service.ImportSummary) {
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", summary.Transactions)))
	if summary.Categories > 0 {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("Created %d categories", summary.Categories)))
	}
	if summary.Errors > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("Skipped %d rows", summary.Errors)))
	}
}
