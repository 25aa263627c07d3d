package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"config-packager/internal/app"
	"config-packager/internal/types"
)

const sideBySideWidth = 48

var (
	addedColor   = lipgloss.ANSIColor(10)
	removedColor = lipgloss.ANSIColor(9)
	changedColor = lipgloss.ANSIColor(11)
	dimColor     = lipgloss.ANSIColor(8)

	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	packageStyle = lipgloss.NewStyle().Bold(true)
	itemStyle    = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(14))
	addedStyle   = lipgloss.NewStyle().Foreground(addedColor)
	removedStyle = lipgloss.NewStyle().Foreground(removedColor)
	changedStyle = lipgloss.NewStyle().Foreground(changedColor)
	contextStyle = lipgloss.NewStyle().Foreground(dimColor)
	successStyle = lipgloss.NewStyle().Foreground(addedColor)
	failureStyle = lipgloss.NewStyle().Foreground(removedColor).Bold(true)
	columnStyle  = lipgloss.NewStyle().Width(sideBySideWidth)
)

func rowStyle(kind types.DiffKind) lipgloss.Style {
	switch kind {
	case types.DiffAdded:
		return addedStyle
	case types.DiffRemoved:
		return removedStyle
	case types.DiffChanged:
		return changedStyle
	default:
		return contextStyle
	}
}

func renderDiff(w io.Writer, result app.DiffResult, sideBySide bool) {
	fmt.Fprintln(w, headerStyle.Render(result.Header))
	if result.Empty() && !hasUnreadable(result) {
		fmt.Fprintln(w, app.NoDifferencesMessage)
		return
	}
	for _, report := range result.Reports {
		fmt.Fprintln(w)
		fmt.Fprintln(w, packageStyle.Render("Package: "+report.Package))
		for _, override := range report.Overrides {
			fmt.Fprintln(w, itemStyle.Render("  "+override.Name))
			if override.Missing {
				fmt.Fprintln(w, changedStyle.Render("    detected in active config but not exported"))
			}
			for _, row := range override.Rows {
				if sideBySide {
					fmt.Fprintln(w, renderColumns(row))
					continue
				}
				fmt.Fprintln(w, rowStyle(row.Kind).Render(fmt.Sprintf("    %4s %s %s", lineLabel(row), row.Marker(), row.Text())))
			}
		}
		for _, name := range report.Unreadable {
			fmt.Fprintln(w, failureStyle.Render("  "+name+": could not be read"))
		}
	}
}

// renderColumns lays a row out as packaged value on the left and active
// value on the right.
func renderColumns(row types.DiffRow) string {
	left := ""
	if row.PackagedText != nil && row.Kind != types.DiffAdded {
		left = *row.PackagedText
	}
	right := ""
	if row.ActiveText != nil && row.Kind != types.DiffRemoved {
		right = *row.ActiveText
	}
	style := rowStyle(row.Kind)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		"    ",
		style.Inherit(columnStyle).Render(left),
		" "+row.Marker()+" ",
		style.Inherit(columnStyle).Render(right),
	)
}

func lineLabel(row types.DiffRow) string {
	if row.ActiveLine > 0 {
		return fmt.Sprintf("%d", row.ActiveLine)
	}
	if row.PackagedLine > 0 {
		return fmt.Sprintf("%d", row.PackagedLine)
	}
	return ""
}

func hasUnreadable(result app.DiffResult) bool {
	for _, report := range result.Reports {
		if len(report.Unreadable) > 0 {
			return true
		}
	}
	return false
}

func renderGenerationResults(w io.Writer, results []types.GenerationResult) {
	for _, result := range results {
		if result.Success {
			fmt.Fprintln(w, successStyle.Render(result.Message()))
			continue
		}
		fmt.Fprintln(w, failureStyle.Render(result.Message()))
	}
}

func renderRevertReport(w io.Writer, result app.ImportResult) {
	if result.Report.Empty {
		fmt.Fprintln(w, app.NoImportSelectionMessage)
	}
	for _, item := range result.Report.Results {
		if item.Success {
			fmt.Fprintln(w, successStyle.Render(item.Message))
			continue
		}
		fmt.Fprintln(w, failureStyle.Render(item.Message))
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintln(w, contextStyle.Render("Not overridden, skipped: "+strings.Join(result.Skipped, ", ")))
	}
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, cell := range header {
		widths[i] = lipgloss.Width(cell)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style.Width(widths[i] + 2).Render(cell)
		}
		return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " ")
	}
	fmt.Fprintln(w, line(header, packageStyle))
	for _, row := range rows {
		fmt.Fprintln(w, line(row, lipgloss.NewStyle()))
	}
}
