package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Align is the horizontal placement of a column's cells
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// TableColumn describes one column
// MaxWidth truncates longer cells with an ellipsis; zero means unlimited
type TableColumn struct {
	Header   string
	MaxWidth int
	Align    Align
}

// Table renders aligned rows in the terminal palette
type Table struct {
	Columns []TableColumn
	Rows    [][]string
}

func NewTable(columns ...TableColumn) *Table {
	return &Table{Columns: columns}
}

// AddRow appends a row; missing cells render empty
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render returns the table, one line per row after the header and separator
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		rows[r] = make([]string, len(t.Columns))
		for i := range t.Columns {
			if i < len(row) {
				rows[r][i] = truncate(row[i], t.Columns[i].MaxWidth)
			}
		}
	}

	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = lipgloss.Width(col.Header)
		for _, row := range rows {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder

	header := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = pad(col.Header, widths[i], AlignLeft)
		rule[i] = strings.Repeat("─", widths[i])
	}
	b.WriteString(StyleTableHeader.Render(strings.Join(header, "  ")))
	b.WriteString("\n")
	b.WriteString(StyleTableBorder.Render(strings.Join(rule, "  ")))
	b.WriteString("\n")

	for r, row := range rows {
		parts := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			parts[i] = pad(row[i], widths[i], col.Align)
		}

		style := StyleTableRow
		if r%2 == 1 {
			style = StyleTableRowAlt
		}
		b.WriteString(style.Render(strings.Join(parts, "  ")))
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, limit int) string {
	if limit <= 0 || lipgloss.Width(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func pad(s string, width int, align Align) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if align == AlignRight {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// RenderKeyValue renders "key: value" with a highlighted key
func RenderKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", StyleInfo.Render(key), value)
}
