package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/reportkit/internal/client"
	"github.com/JonMunkholm/reportkit/internal/core"
)

// newSchedulesCmd creates the 'schedules' command group.
func newSchedulesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Manage scheduled reports on a reportkit server",
	}
	cmd.AddCommand(newSchedulesListCmd(opts))
	cmd.AddCommand(newSchedulesCreateCmd(opts))
	cmd.AddCommand(newSchedulesDeleteCmd(opts))
	return cmd
}

func newClient(opts *rootOptions) (*client.Client, error) {
	var options []client.Option
	if opts.apiKey != "" {
		options = append(options, client.WithAPIKey(opts.apiKey))
	}
	return client.New(opts.serverURL, options...)
}

func newSchedulesListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			reports, err := c.ListScheduledReports(cmd.Context())
			if err != nil {
				return err
			}
			renderSchedules(cmd.OutOrStdout(), reports)
			return nil
		},
	}
}

func renderSchedules(w io.Writer, reports []core.ScheduledReport) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No scheduled reports")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"ID", "Title", "Receiver", "Every", "Time filter", "Created"})
	for _, r := range reports {
		tw.AppendRow(table.Row{
			r.ID,
			r.Title,
			r.Receiver,
			fmt.Sprintf("%d %s", r.Duration, r.DurationUnit),
			fmt.Sprintf("last %d %s", r.TimeFilter, r.TimeFilterUnit),
			r.CreatedAt.Format(time.RFC3339),
		})
	}
	tw.Render()
}

type createFlags struct {
	index           string
	visualizationID string
	title           string
	request         string
	duration        string
	durationUnit    string
	receiver        string
	timeFilter      string
	timeFilterUnit  string
	columns         string
}

func newSchedulesCreateCmd(opts *rootOptions) *cobra.Command {
	flags := &createFlags{}
	c := &cobra.Command{
		Use:   "create",
		Short: "Create a scheduled report",
		Long: strings.TrimSpace(`
Create a scheduled report. The request is validated locally before it is sent.

Example:
  reportctl schedules create --receiver ops@example.com --duration 1 \
    --duration-unit day --time-filter 7 --time-filter-unit day \
    --index 'logs-*' --visualization vis-1 --title "Daily errors"
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}

			form := client.NewCreateForm(c)
			report, err := form.Submit(cmd.Context(), flags.toRequest())
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created scheduled report %s\n", report.ID)
			return nil
		},
	}

	c.Flags().StringVar(&flags.index, "index", "", "Index pattern the report queries")
	c.Flags().StringVar(&flags.visualizationID, "visualization", "", "Visualization id")
	c.Flags().StringVar(&flags.title, "title", "", "Report title")
	c.Flags().StringVar(&flags.request, "request", "{}", "Search request body")
	c.Flags().StringVar(&flags.duration, "duration", "1", "Repeat every N units")
	c.Flags().StringVar(&flags.durationUnit, "duration-unit", string(core.DefaultUnit), "Repeat unit: second|hour|day|month")
	c.Flags().StringVar(&flags.receiver, "receiver", "", "Receiver email address")
	c.Flags().StringVar(&flags.timeFilter, "time-filter", "1", "Report on the last N units")
	c.Flags().StringVar(&flags.timeFilterUnit, "time-filter-unit", string(core.DefaultUnit), "Time filter unit: hour|day|month")
	c.Flags().StringVar(&flags.columns, "columns", "", "Columns to include")
	return c
}

func (f *createFlags) toRequest() core.CreateScheduledReportRequest {
	return core.CreateScheduledReportRequest{
		Index:           f.index,
		VisualizationID: f.visualizationID,
		Title:           f.title,
		Request:         f.request,
		Duration:        core.NumberField(f.duration),
		DurationUnit:    core.DurationUnit(f.durationUnit),
		Receiver:        f.receiver,
		TimeFilter:      core.NumberField(f.timeFilter),
		TimeFilterUnit:  core.DurationUnit(f.timeFilterUnit),
		Columns:         f.columns,
	}
}

func newSchedulesDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a scheduled report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			if err := c.DeleteScheduledReport(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted scheduled report %s\n", args[0])
			return nil
		},
	}
}
