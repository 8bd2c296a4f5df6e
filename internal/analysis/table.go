package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumberFormat controls how measurement cells are read as numbers.
type NumberFormat struct {
	// DecimalSeparator; if 0, auto-detect per value.
	DecimalSeparator rune
	// ThousandsSeparator; if 0, strip common separators (',' '.' space) that differ from the decimal.
	ThousandsSeparator rune
}

// LoadOptions controls how raw spreadsheets are turned into a Table.
type LoadOptions struct {
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, sniffs among ',', ';', '\t'.
	Delimiter rune
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
	Format     NumberFormat
}

// DefaultLoadOptions returns reasonable defaults for loading expression matrices.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		MaxRows:    0,
		SheetIndex: 1,
	}
}

// Cell is one spreadsheet value: text, a number, or empty.
type Cell struct {
	Text    string
	Num     float64
	Numeric bool
}

// TextCell returns a string cell.
func TextCell(s string) Cell { return Cell{Text: s} }

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell { return Cell{Num: f, Numeric: true} }

// ParseCell classifies a raw spreadsheet string. Blank input yields an empty cell,
// finite numbers become numeric cells, everything else stays text.
func ParseCell(raw string, nf NumberFormat) Cell {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Cell{}
	}
	if f, ok := parseNumeric(v, nf); ok {
		return NumberCell(f)
	}
	return TextCell(v)
}

// Empty reports whether the cell holds no value.
func (c Cell) Empty() bool { return !c.Numeric && c.Text == "" }

// String returns the cell coerced to a string.
func (c Cell) String() string {
	if c.Numeric {
		return formatReal(c.Num)
	}
	return c.Text
}

// Float returns the cell as a float64. Text cells are parsed with nf.
func (c Cell) Float(nf NumberFormat) (float64, bool) {
	if c.Numeric {
		return c.Num, true
	}
	if c.Text == "" {
		return 0, false
	}
	return parseNumeric(c.Text, nf)
}

// MarshalJSON encodes empty cells as null, numbers as numbers and text as strings.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch {
	case c.Numeric:
		return json.Marshal(c.Num)
	case c.Text == "":
		return []byte("null"), nil
	default:
		return json.Marshal(c.Text)
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *Cell) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*c = Cell{}
	case float64:
		*c = NumberCell(x)
	case string:
		*c = TextCell(x)
	default:
		return fmt.Errorf("unsupported cell value %s", string(b))
	}
	return nil
}

// Table is a row-indexed spreadsheet with named columns. Every row has exactly
// len(Columns) cells.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// NewTable builds a Table, padding short rows and naming extra or blank columns
// "Unnamed: <index>".
func NewTable(name string, columns []string, rows [][]Cell) *Table {
	ncol := len(columns)
	for _, r := range rows {
		if len(r) > ncol {
			ncol = len(r)
		}
	}
	cols := make([]string, ncol)
	seen := make(map[string]int, ncol)
	for j := 0; j < ncol; j++ {
		var n string
		if j < len(columns) {
			n = strings.TrimSpace(columns[j])
		}
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", j)
		}
		if k, dup := seen[n]; dup {
			seen[n] = k + 1
			n = fmt.Sprintf("%s.%d", n, k+1)
		} else {
			seen[n] = 0
		}
		cols[j] = n
	}
	out := make([][]Cell, len(rows))
	for i, r := range rows {
		if len(r) == ncol {
			out[i] = r
			continue
		}
		tmp := make([]Cell, ncol)
		copy(tmp, r)
		out[i] = tmp
	}
	return &Table{Name: name, Columns: cols, Rows: out}
}

// FromRecords builds a Table from raw string records. The first record is the header.
func FromRecords(name string, records [][]string, nf NumberFormat) *Table {
	if len(records) == 0 {
		return NewTable(name, nil, nil)
	}
	rows := make([][]Cell, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]Cell, len(rec))
		for j, v := range rec {
			row[j] = ParseCell(v, nf)
		}
		rows = append(rows, row)
	}
	return NewTable(name, records[0], rows)
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// Column returns the cells of column j in row order.
func (t *Table) Column(j int) []Cell {
	out := make([]Cell, len(t.Rows))
	for i, r := range t.Rows {
		if j < len(r) {
			out[i] = r[j]
		}
	}
	return out
}

// Head returns up to n rows as column-name keyed records.
func (t *Table) Head(n int) []map[string]any {
	if n > len(t.Rows) || n < 0 {
		n = len(t.Rows)
	}
	out := make([]map[string]any, 0, n)
	for _, r := range t.Rows[:n] {
		rec := make(map[string]any, len(t.Columns))
		for j, name := range t.Columns {
			c := r[j]
			switch {
			case c.Numeric:
				rec[name] = c.Num
			case c.Text == "":
				rec[name] = nil
			default:
				rec[name] = c.Text
			}
		}
		out = append(out, rec)
	}
	return out
}

func parseNumeric(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := nf.DecimalSeparator
	thou := nf.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	// NaN/Inf spellings are treated as text, not measurements.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// formatReal prints a float as a decimal real, always carrying a fractional part.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
