package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"imgmin/internal/logging"
	"imgmin/internal/metadata"
	"imgmin/internal/minify"
	"imgmin/internal/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file|dir>...",
	Short: "Report format, size and privacy metadata without modifying files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(logging.Options{Out: os.Stdout, LogFile: flags.logFile, Verbosity: flags.verbose})
		if err != nil {
			return err
		}
		defer log.Close()

		inputs := minify.Expand(args, "", log)
		leaks := 0
		for i, in := range inputs {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			report, err := metadata.Inspect(in.Path)
			fmt.Fprintf(os.Stdout, "%s\n", inspectFileStyle.Render(in.Path))
			if err != nil {
				fmt.Fprintf(os.Stdout, "  %s %s\n", inspectBulletStyle.Render("-"), inspectErrStyle.Render(err.Error()))
				continue
			}
			printReport(report)
			leaks += report.Leaks()
		}

		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, tui.RenderSummary([]tui.SummaryRow{
			{Label: "Files inspected", Value: fmt.Sprint(len(inputs))},
			{Label: "Metadata entries", Value: fmt.Sprint(leaks)},
		}))
		return nil
	},
}

func printReport(report metadata.Report) {
	info := report.Format.String()
	if report.Width > 0 && report.Height > 0 {
		info += fmt.Sprintf(", %d x %d", report.Width, report.Height)
	}
	if fi, err := os.Stat(report.Path); err == nil {
		info += ", " + minify.SizeSuffix(fi.Size())
	}
	fmt.Fprintf(os.Stdout, "  %s\n", inspectDimStyle.Render(info))

	if len(report.Details) == 0 {
		fmt.Fprintf(os.Stdout, "  %s %s\n", inspectBulletStyle.Render("-"), inspectDimStyle.Render("no metadata"))
		return
	}
	for _, detail := range report.Details {
		fmt.Fprintf(os.Stdout, "  %s\n", inspectCategoryStyle.Render(detail.Category+":"))
		for _, value := range detail.Values {
			fmt.Fprintf(os.Stdout, "    %s %s\n", inspectBulletStyle.Render("-"), inspectValueStyle.Render(value))
		}
	}
	for _, insight := range report.Insights {
		fmt.Fprintf(os.Stdout, "  %s %s\n", inspectInsightStyle.Render(insight.Kind+":"), insight.Message)
	}
}

var (
	inspectFileStyle     = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	inspectCategoryStyle = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	inspectInsightStyle  = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorWarn)
	inspectValueStyle    = lipgloss.NewStyle().Foreground(tui.ColorInk)
	inspectDimStyle      = lipgloss.NewStyle().Foreground(tui.ColorDim)
	inspectBulletStyle   = lipgloss.NewStyle().Foreground(tui.ColorDim)
	inspectErrStyle      = lipgloss.NewStyle().Foreground(tui.ColorError)
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}
