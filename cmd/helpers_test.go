package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	cfgpkg "github.com/KaramelBytes/coexnet/internal/config"
)

func TestReadIDs_FlagsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ids.txt")
	body := "# targets\nTP53\n\nBRCA1, EGFR\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := readIDs([]string{" MYC ", ""}, path)
	if err != nil {
		t.Fatalf("readIDs: %v", err)
	}
	want := []string{"MYC", "TP53", "BRCA1", "EGFR"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestReadIDs_Empty(t *testing.T) {
	if _, err := readIDs([]string{"  "}, ""); err == nil {
		t.Fatalf("expected error for empty identifier set")
	}
	if _, err := readIDs(nil, filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing ids file")
	}
}

func TestExpandInputs_GlobAndLiteral(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.csv", "a.csv", "c.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got, err := expandInputs([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv"), filepath.Join(dir, "c.xlsx")})
	if err != nil {
		t.Fatalf("expandInputs: %v", err)
	}
	want := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv"), filepath.Join(dir, "c.xlsx")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if _, err := expandInputs([]string{filepath.Join(dir, "*.tsv")}); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}

func TestHubSummary(t *testing.T) {
	g, err := analysis.ParseEdgeList(strings.NewReader("A B 0.9\nB C -1.0\n"))
	if err != nil {
		t.Fatalf("ParseEdgeList: %v", err)
	}
	if got := hubSummary(g); got != ", hub B with degree 2" {
		t.Fatalf("hubSummary = %q", got)
	}
	if got := hubSummary(&analysis.EdgeList{}); got != "" {
		t.Fatalf("empty graph summary = %q", got)
	}
}

func TestLoadFlags_Options(t *testing.T) {
	c := &cfgpkg.Global{DecimalSeparator: ",", ThousandsSeparator: "."}
	f := loadFlags{delimiter: "tab", sheetName: "Expr", sheetIndex: 2, maxRows: 5}
	opt, err := f.options(c)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opt.Delimiter != '\t' || opt.SheetName != "Expr" || opt.SheetIndex != 2 || opt.MaxRows != 5 {
		t.Fatalf("unexpected options: %+v", opt)
	}
	if opt.Format.DecimalSeparator != ',' || opt.Format.ThousandsSeparator != '.' {
		t.Fatalf("config number format not applied: %+v", opt.Format)
	}

	f = loadFlags{decimal: "dot", thousands: "space"}
	opt, err = f.options(c)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opt.Format.DecimalSeparator != '.' || opt.Format.ThousandsSeparator != ' ' {
		t.Fatalf("flags should override config: %+v", opt.Format)
	}

	for _, bad := range []loadFlags{{delimiter: "|"}, {decimal: "x"}, {thousands: "_"}} {
		if _, err := bad.options(c); err == nil {
			t.Fatalf("expected error for %+v", bad)
		}
	}
}
