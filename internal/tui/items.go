package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyjobs/internal/model"
)

// cardHeight is the number of lines each board card occupies.
const cardHeight = 3

type tableColumn struct {
	field model.SortField
	label string
	share int
}

var tableColumns = []tableColumn{
	{field: model.SortCompany, label: "Company", share: 24},
	{field: model.SortPosition, label: "Position", share: 26},
	{field: model.SortLocation, label: "Location", share: 18},
	{field: model.SortStatus, label: "Status", share: 14},
	{field: model.SortDateApplied, label: "Applied", share: 12},
}

func columnWidths(width int) []int {
	usable := max(width-2-len(tableColumns), 40)
	widths := make([]int, len(tableColumns))
	for i, column := range tableColumns {
		widths[i] = max(usable*column.share/100, 6)
	}
	return widths
}

func formatTableHeader(width int, controls model.ViewControls) string {
	widths := columnWidths(width)
	cells := make([]string, 0, len(tableColumns)+1)
	cells = append(cells, " ")
	for i, column := range tableColumns {
		label := fmt.Sprintf("%d %s", i+1, column.label)
		if column.field == controls.SortField {
			if controls.SortDirection == model.SortAsc {
				label += " ↑"
			} else {
				label += " ↓"
			}
		}
		cells = append(cells, pad(label, widths[i]))
	}
	return strings.Join(cells, " ")
}

func formatRow(record model.Application, width int) string {
	widths := columnWidths(width)
	values := []string{
		record.Company,
		record.Position,
		record.Location,
		string(record.Status),
		formatDate(record.DateApplied),
	}

	cells := make([]string, 0, len(values)+1)
	cells = append(cells, favoriteMark(record))
	for i, value := range values {
		cells = append(cells, pad(value, widths[i]))
	}
	return strings.Join(cells, " ")
}

func formatCard(record model.Application, width int) []string {
	width = max(width, 6)
	return []string{
		truncate(favoriteMark(record)+" "+record.Company, width),
		truncate(record.Position, width),
		truncate(formatDate(record.DateApplied)+" "+record.Location, width),
	}
}

func formatDetail(record model.Application) []string {
	lines := []string{
		fmt.Sprintf("%s %s", favoriteMark(record), record.Company),
		record.Position,
		"",
		fmt.Sprintf("Status: %s", record.Status),
		fmt.Sprintf("Applied: %s", formatDate(record.DateApplied)),
		fmt.Sprintf("Location: %s", orNA(record.Location)),
		fmt.Sprintf("Salary: %s", orNA(record.SalaryRange)),
		fmt.Sprintf("URL: %s", orNA(record.JobURL)),
	}
	if !record.Status.Known() {
		lines = append(lines, "", "This status has no board column.")
	}
	if notes := strings.TrimSpace(record.Notes); notes != "" {
		lines = append(lines, "", notes)
	}
	return lines
}

func favoriteMark(record model.Application) string {
	if record.IsFavorite {
		return "★"
	}
	return " "
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "n/a"
	}
	return value.Format("2006-01-02")
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "n/a"
	}
	return value
}

func truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

func pad(value string, width int) string {
	value = truncate(value, width)
	if gap := width - len([]rune(value)); gap > 0 {
		return value + strings.Repeat(" ", gap)
	}
	return value
}
