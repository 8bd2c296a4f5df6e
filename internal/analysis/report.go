package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Markdown renders the detected layout, the column ranking and the first data rows of t.
// sampleRows <= 0 suppresses the sample table.
func (l *Layout) Markdown(t *Table, sampleRows int) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if t != nil {
		if t.Name != "" {
			b.WriteString(fmt.Sprintf("File: %s\n", t.Name))
		}
		b.WriteString(fmt.Sprintf("Rows: %d\n", t.NumRows()))
		b.WriteString(fmt.Sprintf("Columns: %d\n", t.NumCols()))
	}

	b.WriteString("\n[LAYOUT]\n")
	if l.Column >= 0 {
		b.WriteString(fmt.Sprintf("- identifier column: %s (index %d)\n", safeName(l.ColumnName), l.Column))
		b.WriteString(fmt.Sprintf("- data start row: %d\n", l.StartRow))
	} else {
		b.WriteString("- identifier column: (not detected)\n")
	}

	if len(l.Scores) > 0 {
		b.WriteString("\n[COLUMN SCORES]\n")
		scores := make([]ColumnScore, len(l.Scores))
		copy(scores, l.Scores)
		sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
		maxc := 10
		if len(scores) < maxc {
			maxc = len(scores)
		}
		for _, s := range scores[:maxc] {
			b.WriteString(fmt.Sprintf("- %s: score %.3f (sampled %d of %d, distinct %d)\n",
				safeName(s.Name), s.Score, s.Sampled, s.NonEmpty, s.Distinct))
		}
	}

	if t != nil && l.Column >= 0 && sampleRows > 0 && l.StartRow < t.NumRows() {
		cols := t.Columns[l.Column:]
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(safeName(c)))
		}
		b.WriteString(" |\n| ")
		for i := range cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		end := l.StartRow + sampleRows
		if end > t.NumRows() {
			end = t.NumRows()
		}
		for _, row := range t.Rows[l.StartRow:end] {
			b.WriteString("| ")
			for i, c := range row[l.Column:] {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := c.String()
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	return b.String()
}
