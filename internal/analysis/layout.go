package analysis

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultSampleSize is the number of values scored per column.
	DefaultSampleSize = 20
	// DefaultMinColumnScore is the score a column must exceed to be accepted.
	DefaultMinColumnScore = 0.3
)

var identifierPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// Detector locates the identifier column and the first data row of a table.
type Detector struct {
	Classifier EntityClassifier
	Rand       *rand.Rand
	// SampleSize caps the values scored per column; <= 0 uses DefaultSampleSize.
	SampleSize int
	// MinScore is the acceptance threshold; <= 0 uses DefaultMinColumnScore.
	MinScore float64
}

// NewDetector returns a Detector with default thresholds.
func NewDetector(c EntityClassifier, rng *rand.Rand) *Detector {
	return &Detector{Classifier: c, Rand: rng, SampleSize: DefaultSampleSize, MinScore: DefaultMinColumnScore}
}

// ColumnScore is the identifier score of one column.
type ColumnScore struct {
	Index    int
	Name     string
	NonEmpty int
	Sampled  int
	Distinct int
	Score    float64
}

// Layout is the detected structure of a table.
type Layout struct {
	Column     int
	ColumnName string
	StartRow   int
	Scores     []ColumnScore
}

// Detect scores every column, picks the identifier column, then finds the data start row.
// It returns ErrLayoutInvalid when no column scores above MinScore or when the chosen
// column holds no identifier string longer than one character.
func (d *Detector) Detect(t *Table) (*Layout, error) {
	if t == nil || t.NumCols() == 0 {
		return nil, fmt.Errorf("empty table: %w", ErrLayoutInvalid)
	}
	minScore := d.MinScore
	if minScore <= 0 {
		minScore = DefaultMinColumnScore
	}
	lay := &Layout{Column: -1, StartRow: -1}
	best := -1
	for j := range t.Columns {
		values := nonEmptyStrings(t.Column(j))
		if len(values) == 0 {
			continue
		}
		cs := d.scoreColumn(values)
		cs.Index = j
		cs.Name = t.Columns[j]
		lay.Scores = append(lay.Scores, cs)
		if best < 0 || cs.Score > lay.Scores[best].Score {
			best = len(lay.Scores) - 1
		}
	}
	if best < 0 {
		return lay, fmt.Errorf("no non-empty columns: %w", ErrLayoutInvalid)
	}
	top := lay.Scores[best]
	if !(top.Score > minScore) {
		return lay, fmt.Errorf("best column %q scored %.3f (need > %.3f): %w", top.Name, top.Score, minScore, ErrLayoutInvalid)
	}
	start, ok := findStartRow(t.Column(top.Index))
	if !ok {
		return lay, fmt.Errorf("column %q has no identifier values: %w", top.Name, ErrLayoutInvalid)
	}
	lay.Column = top.Index
	lay.ColumnName = top.Name
	lay.StartRow = start
	return lay, nil
}

func (d *Detector) scoreColumn(values []string) ColumnScore {
	sample := d.sample(values)
	n := len(sample)
	distinct := make(map[string]struct{}, n)
	total := 0
	for _, v := range sample {
		distinct[v] = struct{}{}
		total += d.scoreValue(v)
	}
	fn := float64(n)
	return ColumnScore{
		NonEmpty: len(values),
		Sampled:  n,
		Distinct: len(distinct),
		Score:    (float64(total) / fn) * (float64(len(distinct)) / fn),
	}
}

func (d *Detector) scoreValue(v string) int {
	s := 0
	if identifierPattern.MatchString(v) {
		s += 2
	}
	if isUpper(v) || d.hasIdentifierEntity(v) {
		s++
	}
	return s
}

func (d *Detector) hasIdentifierEntity(v string) bool {
	if d.Classifier == nil {
		return false
	}
	for _, label := range d.Classifier.EntityLabels(v) {
		if identifierEntityLabels[label] {
			return true
		}
	}
	return false
}

// sample draws min(SampleSize, len(values)) values without replacement.
func (d *Detector) sample(values []string) []string {
	k := d.SampleSize
	if k <= 0 {
		k = DefaultSampleSize
	}
	if k >= len(values) {
		k = len(values)
	}
	rng := d.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	// partial Fisher-Yates
	out := make([]string, k)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = values[idx[i]]
	}
	return out
}

// findStartRow returns the row index of the first text cell longer than one character.
// Numeric cells never mark the start of data.
func findStartRow(col []Cell) (int, bool) {
	for i, c := range col {
		if c.Empty() || c.Numeric {
			continue
		}
		if utf8.RuneCountInString(c.Text) > 1 {
			return i, true
		}
	}
	return -1, false
}

func nonEmptyStrings(col []Cell) []string {
	out := make([]string, 0, len(col))
	for _, c := range col {
		if c.Empty() {
			continue
		}
		out = append(out, c.String())
	}
	return out
}

// isUpper reports whether s has at least one cased letter and no lowercase ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
