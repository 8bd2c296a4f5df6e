package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSignificance is the p-value an entity pair must stay below to become an edge.
const DefaultSignificance = 5e-8

// GraphOptions controls correlation graph construction.
type GraphOptions struct {
	// Threshold is the exclusive p-value cutoff; <= 0 uses DefaultSignificance.
	Threshold float64
	// MirrorEdges emits both (a,b) and (b,a) for every accepted pair.
	MirrorEdges bool
	// Format is used to read measurement cells stored as text.
	Format NumberFormat
}

// DefaultGraphOptions returns the standard cutoff with one edge per pair.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{Threshold: DefaultSignificance}
}

// Edge is a significant correlation between two entities.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	R      float64 `json:"r"`
	P      float64 `json:"p"`
}

// EdgeList is the graph produced by one run: every requested entity as a node,
// plus the accepted edges.
type EdgeList struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

type entityRow struct {
	id    string
	cells []Cell
	vec   []float64
	err   error
	done  bool
}

// BuildGraph restricts t to rows at/after startRow and columns at/after idCol, keeps the
// rows whose identifier is in targets, and correlates every pair of retained rows.
// Pairs whose two-sided Pearson p-value is below the threshold become edges.
func BuildGraph(t *Table, idCol, startRow int, targets []string, opt GraphOptions) (*EdgeList, error) {
	if t == nil || idCol < 0 || idCol >= t.NumCols() {
		return nil, fmt.Errorf("identifier column %d: %w", idCol, ErrLayoutInvalid)
	}
	if startRow < 0 {
		return nil, fmt.Errorf("start row %d: %w", startRow, ErrLayoutInvalid)
	}
	thr := opt.Threshold
	if thr <= 0 {
		thr = DefaultSignificance
	}

	list := &EdgeList{Nodes: uniqueStrings(targets), Edges: []Edge{}}
	want := make(map[string]bool, len(list.Nodes))
	for _, id := range list.Nodes {
		want[id] = true
	}

	sampleCols := t.Columns[idCol+1:]
	var rows []*entityRow
	for i := startRow; i < t.NumRows(); i++ {
		row := t.Rows[i]
		if idCol >= len(row) || row[idCol].Empty() {
			continue
		}
		id := row[idCol].String()
		if !want[id] {
			continue
		}
		// short rows read as missing measurements
		cells := make([]Cell, len(sampleCols))
		copy(cells, row[idCol+1:])
		rows = append(rows, &entityRow{id: id, cells: cells})
	}

	// An identifier repeated over several rows keeps the first significant pairing.
	emitted := make(map[[2]string]bool)
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			a, b := rows[i], rows[j]
			if a.id == b.id {
				continue
			}
			x, err := a.vector(sampleCols, opt.Format)
			if err != nil {
				return nil, err
			}
			y, err := b.vector(sampleCols, opt.Format)
			if err != nil {
				return nil, err
			}
			key := [2]string{a.id, b.id}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			if emitted[key] {
				continue
			}
			r, p, err := Pearson(x, y)
			if err != nil {
				return nil, &SampleError{Entity: a.id + "/" + b.id, Reason: err.Error()}
			}
			if !(p < thr) {
				continue
			}
			emitted[key] = true
			list.Edges = append(list.Edges, Edge{Source: a.id, Target: b.id, R: r, P: p})
			if opt.MirrorEdges {
				list.Edges = append(list.Edges, Edge{Source: b.id, Target: a.id, R: r, P: p})
			}
		}
	}
	return list, nil
}

func (e *entityRow) vector(cols []string, nf NumberFormat) ([]float64, error) {
	if e.done {
		return e.vec, e.err
	}
	e.done = true
	vec := make([]float64, len(e.cells))
	for k, c := range e.cells {
		f, ok := c.Float(nf)
		if !ok {
			reason := "not a number"
			if c.Empty() {
				reason = "missing value"
			}
			e.err = &SampleError{Entity: e.id, Column: cols[k], Value: c.String(), Reason: reason}
			return nil, e.err
		}
		vec[k] = f
	}
	e.vec = vec
	return vec, nil
}

// Pearson returns the Pearson correlation of x and y and its two-sided p-value under
// the null hypothesis of no correlation (Student t with n-2 degrees of freedom).
// Constant inputs give NaN for both values.
func Pearson(x, y []float64) (r, p float64, err error) {
	n := len(x)
	if n != len(y) {
		return 0, 0, fmt.Errorf("length mismatch %d != %d: %w", n, len(y), ErrBadSample)
	}
	if n < 2 {
		return 0, 0, fmt.Errorf("need at least 2 samples, got %d: %w", n, ErrBadSample)
	}
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN(), math.NaN(), nil
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	df := float64(n - 2)
	switch {
	case df == 0:
		p = 1
	case math.Abs(r) == 1:
		p = 0
	default:
		t := r * math.Sqrt(df/((1-r)*(1+r)))
		p = 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(-math.Abs(t))
	}
	if p > 1 {
		p = 1
	} else if p < 0 {
		p = 0
	}
	return r, p, nil
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
