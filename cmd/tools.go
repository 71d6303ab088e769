package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"imgmin/internal/config"
	"imgmin/internal/tools"
	"imgmin/internal/tui"
	"imgmin/pkg/imgutil"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tool chain per format and where each executable was found",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("tool-dir") {
			cfg.ToolDir = flags.toolDir
		}
		if cfg.ToolDir == "" {
			cfg.ToolDir = tools.DefaultToolDir()
		}
		runner := &tools.ExecRunner{ToolDir: cfg.ToolDir}

		fmt.Fprintf(os.Stdout, "%s %s\n", toolsDimStyle.Render("tool dir:"), cfg.ToolDir)
		current := imgutil.FormatSkip
		for _, spec := range tools.Catalog {
			if spec.Format != current {
				current = spec.Format
				fmt.Fprintf(os.Stdout, "\n%s\n", toolsFormatStyle.Render(strings.ToUpper(current.String())))
			}
			fmt.Fprintf(os.Stdout, "  %-16s %s\n", spec.Display, describeTool(runner, cfg, spec))
		}
		return nil
	},
}

func describeTool(runner *tools.ExecRunner, cfg config.Config, spec tools.Spec) string {
	var tags []string
	if spec.Lossy {
		tags = append(tags, "lossy")
	}
	if spec.DisabledBy(cfg.DisabledTools) {
		tags = append(tags, "disabled")
	}
	suffix := ""
	if len(tags) > 0 {
		suffix = " " + toolsDimStyle.Render("("+strings.Join(tags, ", ")+")")
	}

	if spec.Builtin {
		return toolsFoundStyle.Render("builtin") + suffix
	}
	path, err := runner.Lookup(spec.Name)
	if err != nil {
		return toolsMissingStyle.Render("missing") + suffix
	}
	return toolsFoundStyle.Render(path) + suffix
}

func configPath() string {
	if flags.config != "" {
		return flags.config
	}
	return config.DefaultPath()
}

var (
	toolsFormatStyle  = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	toolsFoundStyle   = lipgloss.NewStyle().Foreground(tui.ColorSuccess)
	toolsMissingStyle = lipgloss.NewStyle().Foreground(tui.ColorError)
	toolsDimStyle     = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(toolsCmd)
}
