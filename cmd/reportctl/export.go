package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/reportkit/internal/core"
	"github.com/JonMunkholm/reportkit/internal/datatable"
	"github.com/JonMunkholm/reportkit/internal/export"
	"github.com/JonMunkholm/reportkit/internal/store"
)

type exportFlags struct {
	outDir string
	title  string
	raw    bool
}

// newExportCmd creates the 'export' command group.
func newExportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a datatable JSON file",
		Long: strings.TrimSpace(`
Export one datatable object, or an array of datatables, to files.

Examples:
  reportctl export csv sales.json
  reportctl export csv sales.json --raw --out exports/
  reportctl export xlsx sales.json --title "Q1 sales"
`),
	}
	cmd.AddCommand(newExportFormatCmd(opts, "csv"))
	cmd.AddCommand(newExportFormatCmd(opts, "xlsx"))
	return cmd
}

func newExportFormatCmd(opts *rootOptions, format string) *cobra.Command {
	flags := &exportFlags{}
	c := &cobra.Command{
		Use:   format + " <datatable-file>",
		Short: "Export as " + strings.ToUpper(format),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, flags, format, args[0])
		},
	}

	c.Flags().StringVarP(&flags.outDir, "out", "o", ".", "Directory to write files into")
	c.Flags().StringVarP(&flags.title, "title", "t", "", "Export title used for file names (default: input file name)")
	if format == "csv" {
		c.Flags().BoolVar(&flags.raw, "raw", false, "Write unformatted cell values")
	}
	return c
}

func runExport(cmd *cobra.Command, opts *rootOptions, flags *exportFlags, format, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	set, err := readTableSet(path, flags.title)
	if err != nil {
		return err
	}

	svc, err := core.NewService(store.NewMemoryStore(), opts.cfg)
	if err != nil {
		return err
	}

	var result core.ExportResult
	switch format {
	case "csv":
		result, err = svc.ExportCSV(ctx, set, core.ExportOptions{}, flags.raw)
	case "xlsx":
		result, err = svc.ExportXLSX(ctx, set)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return userError(err)
	}

	if result.HasFormulas {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", export.FormulaWarning)
	}

	d := &export.DirDispatcher{Dir: flags.outDir}
	if err := d.Dispatch(ctx, result.Content); err != nil {
		return err
	}
	if len(d.Written) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Nothing to export")
		return nil
	}
	for _, p := range d.Written {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	slog.Info("export written", "format", format, "files", len(d.Written), "dir", flags.outDir)
	return nil
}

// newPreviewCmd renders the formatted cells of a datatable file.
func newPreviewCmd(opts *rootOptions) *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "preview <datatable-file>",
		Short: "Print datatables as formatted tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := readTableSet(args[0], "")
			if err != nil {
				return err
			}
			svc, err := core.NewService(store.NewMemoryStore(), opts.cfg)
			if err != nil {
				return err
			}
			return renderPreview(cmd.OutOrStdout(), set, limit, svc.DetectFormulas(set))
		},
	}
	c.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows per datatable (0 = all)")
	return c
}

func renderPreview(w io.Writer, set *datatable.TableSet, limit int, hasFormulas bool) error {
	printed := 0
	for i, dt := range set.Datatables {
		if dt == nil {
			continue
		}
		sheet, err := export.ToSheetTable(dt, datatable.DefaultLookup)
		if err != nil {
			fmt.Fprintf(w, "Datatable %d: %s\n", i+1, core.FormatUserError(err))
			continue
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleRounded)
		tw.Style().Format.Header = text.FormatDefault
		tw.SetTitle(fmt.Sprintf("%s (%d/%d)", set.Title, i+1, len(set.Datatables)))

		header := make(table.Row, len(sheet.Header))
		for j, col := range sheet.Header {
			header[j] = col.Label
		}
		tw.AppendHeader(header)

		for r, row := range sheet.Rows {
			if limit > 0 && r >= limit {
				tw.AppendFooter(table.Row{fmt.Sprintf("%d more rows", len(sheet.Rows)-limit)})
				break
			}
			cells := make(table.Row, len(row))
			for j, v := range row {
				cells[j] = v
			}
			tw.AppendRow(cells)
		}
		tw.Render()
		printed++
	}

	if printed == 0 {
		fmt.Fprintln(w, core.FormatUserError(export.ErrNoData))
	}
	if hasFormulas {
		fmt.Fprintln(w, "Warning:", export.FormulaWarning)
	}
	return nil
}

// readTableSet decodes a datatable file. The title defaults to the file name
// without extension.
func readTableSet(path, title string) (*datatable.TableSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open datatable file: %w", err)
	}
	defer f.Close()

	tables, err := datatable.DecodeSet(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return datatable.NewTableSet(title, tables), nil
}

// userError attaches the mapped message when err has one. Other errors, such
// as file system failures, are returned as they are.
func userError(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return core.NewUserError(err)
}

// formatError renders a command error for the terminal.
func formatError(err error) string {
	var ue *core.UserError
	if errors.As(err, &ue) {
		return core.FormatUserError(ue)
	}
	return err.Error()
}
