// Package render formats adapter data for the terminal.
package render

import (
	"fmt"
	"strings"

	"macswap/internal/adapter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))

	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
)

var columns = []string{"NAME", "MAC ADDRESS", "STATUS", "DESCRIPTION"}

const statusColumn = 2

// Adapters renders records as a table with the status column coloured.
func Adapters(records []adapter.Record) string {
	if len(records) == 0 {
		return "No network adapters with a hardware address were found."
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Name, r.MacAddress, r.Status, r.Description})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == statusColumn && row >= 0 && row < len(rows) {
				return cellStyle.Inherit(statusStyle(rows[row][col]))
			}
			return cellStyle
		})
	return t.String()
}

// Outcome renders a change or restore result. The message is shown verbatim.
func Outcome(out adapter.Outcome) string {
	var b strings.Builder
	if out.Success {
		b.WriteString(okStyle.Render("✔ "))
	} else {
		b.WriteString(failStyle.Render("✘ "))
	}
	b.WriteString(out.Message)
	if out.OriginalMac != "" {
		fmt.Fprintf(&b, "\noriginal MAC address: %s", out.OriginalMac)
	}
	return b.String()
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case adapter.StatusUp:
		return upStyle
	case adapter.StatusDown, "Disconnected", "Disabled":
		return downStyle
	}
	return lipgloss.NewStyle()
}
