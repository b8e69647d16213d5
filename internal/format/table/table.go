package table

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const gap = " "

// Format returns the rows padded according to the widest entry in each column.
func Format(rows [][]string, alignments []Alignment) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := columnWidths(rows)
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = formatRow(row, widths, alignments)
	}
	return out
}

// Fit is Format constrained to maxWidth cells per row. The column given by
// flex absorbs the shortfall: its cells are truncated with an ellipsis.
func Fit(rows [][]string, alignments []Alignment, flex, maxWidth int) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := columnWidths(rows)
	total := 0
	for i, w := range widths {
		if i > 0 {
			total += len(gap)
		}
		total += w
	}
	if over := total - maxWidth; over > 0 && flex >= 0 && flex < len(widths) {
		widths[flex] -= over
		if widths[flex] < 1 {
			widths[flex] = 1
		}
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		copy(cells, row)
		if flex < len(cells) {
			cells[flex] = runewidth.Truncate(cells[flex], widths[flex], "…")
		}
		out[i] = runewidth.Truncate(formatRow(cells, widths, alignments), maxWidth, "")
	}
	return out
}

func columnWidths(rows [][]string) []int {
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	widths := make([]int, colCount)
	for _, row := range rows {
		for c, cell := range row {
			if width := runewidth.StringWidth(cell); width > widths[c] {
				widths[c] = width
			}
		}
	}
	return widths
}

func formatRow(row []string, widths []int, alignments []Alignment) string {
	var b strings.Builder
	for c, cell := range row {
		if c > 0 {
			b.WriteString(gap)
		}
		pad := widths[c] - runewidth.StringWidth(cell)
		if pad < 0 {
			pad = 0
		}
		if c < len(alignments) && alignments[c] == AlignRight {
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(cell)
		} else {
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	return b.String()
}
