package cli

import (
	"fmt"
	"io"
	"saasanalytics/models"
	"sort"
	"strings"
)

const (
	bannerDefaultWidth = 60
	maxCellWidth       = 24
	maxTableRows       = 20
)

// PrintBanner renders a box-drawing banner around a title using the default width.
func PrintBanner(w io.Writer, title string) {
	PrintBannerWidth(w, title, bannerDefaultWidth)
}

// PrintBannerWidth renders a box-drawing banner around a title using the provided width.
// If the title is wider than the inner width, the banner grows to fit it.
func PrintBannerWidth(w io.Writer, title string, width int) {
	if width < 10 {
		width = bannerDefaultWidth
	}

	inner := width - 2
	if len(title)+2 > inner {
		inner = len(title) + 2
	}

	edge := strings.Repeat("═", inner)
	fmt.Fprintf(w, "╔%s╗\n", edge)
	fmt.Fprintf(w, "║%s║\n", padCenter(title, inner))
	fmt.Fprintf(w, "╚%s╝\n", edge)
}

func padCenter(text string, width int) string {
	if len(text) >= width {
		return text[:width]
	}
	padTotal := width - len(text)
	left := padTotal / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", padTotal-left)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// renderResult prints the SQL, the rows and the insight of an answer.
func renderResult(w io.Writer, r *models.QueryResult) {
	fmt.Fprintf(w, "\nSQL:\n  %s\n\n", strings.ReplaceAll(r.SQLQuery, "\n", "\n  "))

	if r.Type == models.ResultTypeMetric && len(r.Data) == 1 {
		for col, val := range r.Data[0] {
			fmt.Fprintf(w, "  %s = %s\n", col, formatCell(val))
		}
	} else {
		renderTable(w, r.Data)
	}

	fmt.Fprintf(w, "\n(%d row(s), %s)\n", r.RowCount, r.Type)
	if r.Insights != "" {
		fmt.Fprintf(w, "\nInsight: %s\n", r.Insights)
	}
}

// renderTable prints rows with columns in alphabetical order; row maps do
// not keep the query's column order.
func renderTable(w io.Writer, rows []map[string]any) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "  No rows.")
		return
	}

	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	shown := rows
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}
	cells := make([][]string, len(shown))
	for r, row := range shown {
		cells[r] = make([]string, len(columns))
		for i, col := range columns {
			cell := truncate(formatCell(row[col]), maxCellWidth)
			cells[r][i] = cell
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	total := 0
	for i, col := range columns {
		fmt.Fprintf(w, "%-*s  ", widths[i], col)
		total += widths[i] + 2
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", total))
	for _, row := range cells {
		for i, cell := range row {
			fmt.Fprintf(w, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(w)
	}
	if len(rows) > len(shown) {
		fmt.Fprintf(w, "... %d more row(s)\n", len(rows)-len(shown))
	}
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprint(val)
	}
}
