package analysis

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCell(t *testing.T) {
	cases := []struct {
		in      string
		numeric bool
		num     float64
		text    string
	}{
		{"", false, 0, ""},
		{"   ", false, 0, ""},
		{"12.5", true, 12.5, ""},
		{"1.000,5", true, 1000.5, ""},
		{"1,000.5", true, 1000.5, ""},
		{"0,25", true, 0.25, ""},
		{"12%", true, 12, ""},
		{"-3e-2", true, -0.03, ""},
		{"GENE1", false, 0, "GENE1"},
		{"N/A", false, 0, "N/A"},
		{"NaN", false, 0, "NaN"},
		{"inf", false, 0, "inf"},
	}
	for _, tc := range cases {
		c := ParseCell(tc.in, NumberFormat{})
		if c.Numeric != tc.numeric {
			t.Fatalf("ParseCell(%q).Numeric = %v, want %v", tc.in, c.Numeric, tc.numeric)
		}
		if tc.numeric && c.Num != tc.num {
			t.Fatalf("ParseCell(%q).Num = %v, want %v", tc.in, c.Num, tc.num)
		}
		if !tc.numeric && c.Text != tc.text {
			t.Fatalf("ParseCell(%q).Text = %q, want %q", tc.in, c.Text, tc.text)
		}
	}
}

func TestParseNumericExplicitSeparators(t *testing.T) {
	nf := NumberFormat{DecimalSeparator: ',', ThousandsSeparator: '.'}
	f, ok := parseNumeric("1.234,5", nf)
	if !ok || f != 1234.5 {
		t.Fatalf("got %v %v, want 1234.5", f, ok)
	}
	if _, ok := parseNumeric("abc", nf); ok {
		t.Fatalf("expected abc to be rejected")
	}
}

func TestFormatRealKeepsFraction(t *testing.T) {
	cases := map[float64]string{-1: "-1.0", 0.5: "0.5", 3: "3.0", -0.25: "-0.25"}
	for in, want := range cases {
		if got := formatReal(in); got != want {
			t.Fatalf("formatReal(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestNewTablePadsAndNamesColumns(t *testing.T) {
	tbl := NewTable("x", []string{"Gene", "", "Gene"}, [][]Cell{
		{TextCell("A")},
		{TextCell("B"), NumberCell(1), NumberCell(2), NumberCell(3)},
	})
	want := []string{"Gene", "Unnamed: 1", "Gene.1", "Unnamed: 3"}
	if strings.Join(tbl.Columns, ",") != strings.Join(want, ",") {
		t.Fatalf("columns = %v, want %v", tbl.Columns, want)
	}
	for i, r := range tbl.Rows {
		if len(r) != len(want) {
			t.Fatalf("row %d has %d cells, want %d", i, len(r), len(want))
		}
	}
	if !tbl.Rows[0][3].Empty() {
		t.Fatalf("padding cell should be empty")
	}
}

func TestCellJSON(t *testing.T) {
	row := []Cell{TextCell("GENE1"), NumberCell(2.5), {}}
	b, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["GENE1",2.5,null]` {
		t.Fatalf("unexpected json %s", b)
	}
	var back []Cell
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back[0] != row[0] || back[1] != row[1] || !back[2].Empty() {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	var c Cell
	if err := json.Unmarshal([]byte(`true`), &c); err == nil {
		t.Fatalf("expected error for bool cell")
	}
}

func TestLoadCSVSniffsSemicolon(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "expr.csv")
	content := "Gene;S1;S2\n" +
		"TP53;1,5;2,5\n" +
		"BRCA1;3,0;N/A\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := LoadCSV(p, DefaultLoadOptions())
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if tbl.Name != "expr.csv" || tbl.NumCols() != 3 || tbl.NumRows() != 2 {
		t.Fatalf("unexpected shape: name=%s cols=%d rows=%d", tbl.Name, tbl.NumCols(), tbl.NumRows())
	}
	if c := tbl.Rows[0][1]; !c.Numeric || c.Num != 1.5 {
		t.Fatalf("expected 1.5, got %+v", c)
	}
	if c := tbl.Rows[1][2]; c.Numeric || c.Text != "N/A" {
		t.Fatalf("expected N/A text, got %+v", c)
	}
}

func TestReadCSVMaxRowsAndTSV(t *testing.T) {
	in := "id\tv\nA\t1\nB\t2\nC\t3\n"
	opt := DefaultLoadOptions()
	opt.MaxRows = 2
	tbl, err := ReadCSV(strings.NewReader(in), "x.tsv", opt)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.NumRows() != 2 || tbl.NumCols() != 2 {
		t.Fatalf("rows=%d cols=%d", tbl.NumRows(), tbl.NumCols())
	}
}

func TestHeadRecords(t *testing.T) {
	tbl := FromRecords("h", [][]string{{"Gene", "S1"}, {"A", "1"}, {"B", ""}, {"C", "3"}}, NumberFormat{})
	head := tbl.Head(2)
	if len(head) != 2 {
		t.Fatalf("len(head) = %d", len(head))
	}
	if head[0]["Gene"] != "A" || head[0]["S1"] != 1.0 {
		t.Fatalf("unexpected first record %+v", head[0])
	}
	if head[1]["S1"] != nil {
		t.Fatalf("expected nil for empty cell, got %v", head[1]["S1"])
	}
	if len(tbl.Head(100)) != 3 {
		t.Fatalf("Head should clamp to row count")
	}
}
