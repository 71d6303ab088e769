package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"imgmin/internal/minify"
)

// SummaryRow is one label/value line of the end-of-run table.
type SummaryRow struct {
	Label string
	Value string
	Style *lipgloss.Style // Optional value style.
}

// BatchRows turns a batch summary into table rows.
func BatchRows(s minify.Summary) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Files supplied", Value: fmt.Sprint(s.Total)},
		{Label: "Minified", Value: fmt.Sprint(s.Done), Style: &successStyle},
		{Label: "Skipped", Value: fmt.Sprint(s.Skipped)},
	}
	failed := SummaryRow{Label: "Failed", Value: fmt.Sprint(s.Failed)}
	if s.Failed > 0 {
		failed.Style = &errorStyle
	}
	rows = append(rows, failed)

	if s.Done > 0 {
		rows = append(rows,
			SummaryRow{Label: "Original size", Value: minify.SizeSuffix(s.InputBytes)},
			SummaryRow{Label: "Minified size", Value: minify.SizeSuffix(s.OutputBytes)},
			SummaryRow{
				Label: "Saved",
				Value: fmt.Sprintf("%s (%s%% of original)", minify.SizeSuffix(s.Saved()), minify.Ratio(s.InputBytes, s.OutputBytes)),
				Style: &successStyle,
			},
		)
	}
	return rows
}

// RenderSummary draws rows as a two-column table framed by rules.
func RenderSummary(rows []SummaryRow) string {
	labelWidth, valueWidth := 0, 0
	for _, row := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(row.Label))
		valueWidth = max(valueWidth, lipgloss.Width(row.Value))
	}

	rule := dimStyle.Render(strings.Repeat("─", labelWidth+valueWidth+3))
	lines := []string{rule}
	for _, row := range rows {
		style := valueStyle
		if row.Style != nil {
			style = *row.Style
		}
		label := summaryLabelStyle.Width(labelWidth).Render(row.Label)
		lines = append(lines, label+dimStyle.Render(" │ ")+style.Render(row.Value))
	}
	lines = append(lines, rule)
	return strings.Join(lines, "\n")
}

var (
	summaryLabelStyle = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	valueStyle        = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	successStyle      = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	errorStyle        = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)
