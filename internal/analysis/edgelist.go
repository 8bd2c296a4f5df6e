package analysis

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteTo writes one "<source> <target> <r>" line per edge. P-values are not written.
func (l *EdgeList) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, e := range l.Edges {
		n, err := fmt.Fprintf(bw, "%s %s %s\n", e.Source, e.Target, formatReal(e.R))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// ParseEdgeList reads the format produced by WriteTo. Blank lines are skipped;
// P is left at zero since it is not persisted.
func ParseEdgeList(r io.Reader) (*EdgeList, error) {
	sc := bufio.NewScanner(r)
	list := &EdgeList{}
	seen := map[string]bool{}
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		f := strings.Fields(text)
		if len(f) != 3 {
			return nil, fmt.Errorf("line %d: want 3 fields, got %d", line, len(f))
		}
		r, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse weight: %w", line, err)
		}
		for _, id := range f[:2] {
			if !seen[id] {
				seen[id] = true
				list.Nodes = append(list.Nodes, id)
			}
		}
		list.Edges = append(list.Edges, Edge{Source: f[0], Target: f[1], R: r})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read edge list: %w", err)
	}
	return list, nil
}

// Degree returns the number of edges touching id.
func (l *EdgeList) Degree(id string) int {
	n := 0
	for _, e := range l.Edges {
		if e.Source == id || e.Target == id {
			n++
		}
	}
	return n
}
