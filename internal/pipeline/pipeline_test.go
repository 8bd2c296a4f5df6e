package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	"github.com/KaramelBytes/coexnet/internal/metrics"
	"github.com/KaramelBytes/coexnet/internal/store"
)

type memTables map[string]*analysis.Table

func (m memTables) Table(handle string) (*analysis.Table, error) {
	t, ok := m[handle]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", handle, store.ErrNotFound)
	}
	return t, nil
}

type memWriter struct {
	lists []*analysis.EdgeList
	err   error
}

func (w *memWriter) PutEdgeList(l *analysis.EdgeList) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.lists = append(w.lists, l)
	return fmt.Sprintf("edgelist_%d.txt", len(w.lists)), nil
}

func table(csv string) *analysis.Table {
	t, err := analysis.ReadCSV(strings.NewReader(csv), "t.csv", analysis.DefaultLoadOptions())
	if err != nil {
		panic(err)
	}
	return t
}

const exported = "Exported by lab,,,\n" +
	"Gene,S1,S2,S3\n" +
	"GENE1,1,2,3\n" +
	"GENE2,3,2,1\n" +
	"GENE3,1,5,2\n"

func newService(tables memTables, w *memWriter, opts Options) (*Service, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return New(tables, w, nil, opts, WithMetrics(metrics.New(reg))), reg
}

func TestDetectAndBuild(t *testing.T) {
	tables := memTables{"expr": table(exported)}
	w := &memWriter{}
	opts := DefaultOptions()
	opts.Seed = 1
	svc, _ := newService(tables, w, opts)

	res, err := svc.DetectAndBuild(context.Background(), "expr", []string{" GENE1", "GENE2 ", "", "GENE9"})
	require.NoError(t, err)
	assert.Equal(t, "edgelist_1.txt", res.EdgeList)
	assert.Equal(t, 0, res.Column)
	// header row "Gene" is the first text longer than one character
	assert.Equal(t, 0, res.StartRow)
	assert.Equal(t, 3, res.Nodes)
	assert.Equal(t, 1, res.Edges)

	require.Len(t, w.lists, 1)
	e := w.lists[0].Edges[0]
	assert.Equal(t, "GENE1", e.Source)
	assert.Equal(t, "GENE2", e.Target)
	assert.Equal(t, -1.0, e.R)
	assert.Equal(t, []string{"GENE1", "GENE2", "GENE9"}, w.lists[0].Nodes)
}

func TestDetectAndBuildMirrored(t *testing.T) {
	w := &memWriter{}
	opts := DefaultOptions()
	opts.MirrorEdges = true
	svc, _ := newService(memTables{"expr": table(exported)}, w, opts)

	res, err := svc.DetectAndBuild(context.Background(), "expr", []string{"GENE1", "GENE2"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Edges)
	assert.Equal(t, "GENE2", w.lists[0].Edges[1].Source)
}

func TestDetectAndBuildErrors(t *testing.T) {
	flat := "Group,Value\nA,1\nA,2\nA,3\nA,4\nA,5\nA,6\nA,7\nA,8\nA,9\nA,10\nA,11\n"
	tables := memTables{
		"expr": table(exported),
		"bad":  table("Gene,S1,S2,S3\nGENE1,1,N/A,3\nGENE2,3,2,1\n"),
		"flat": table(flat),
	}
	svc, reg := newService(tables, &memWriter{}, DefaultOptions())
	ctx := context.Background()

	_, err := svc.DetectAndBuild(ctx, "missing", []string{"GENE1"})
	assert.True(t, errors.Is(err, store.ErrNotFound), "%v", err)

	_, err = svc.DetectAndBuild(ctx, "flat", []string{"A"})
	assert.True(t, errors.Is(err, analysis.ErrLayoutInvalid), "%v", err)

	_, err = svc.DetectAndBuild(ctx, "bad", []string{"GENE1", "GENE2"})
	assert.True(t, errors.Is(err, analysis.ErrBadSample), "%v", err)
	var se *analysis.SampleError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "GENE1", se.Entity)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.DetectAndBuild(cancelled, "expr", []string{"GENE1"})
	assert.True(t, errors.Is(err, context.Canceled))

	assert.Equal(t, 1.0, runsTotal(t, reg, metrics.OutcomeNotFound))
	assert.Equal(t, 1.0, runsTotal(t, reg, metrics.OutcomeLayoutInvalid))
	assert.Equal(t, 1.0, runsTotal(t, reg, metrics.OutcomeBadSample))
	assert.Equal(t, 1.0, runsTotal(t, reg, metrics.OutcomeError))
}

func TestDetectAndBuildWriteFailure(t *testing.T) {
	boom := errors.New("disk full")
	svc, _ := newService(memTables{"expr": table(exported)}, &memWriter{err: boom}, DefaultOptions())
	_, err := svc.DetectAndBuild(context.Background(), "expr", []string{"GENE1", "GENE2"})
	assert.ErrorIs(t, err, boom)
}

func TestDetectAndBuildIsIdempotent(t *testing.T) {
	w := &memWriter{}
	svc, _ := newService(memTables{"expr": table(exported)}, w, DefaultOptions())
	for i := 0; i < 2; i++ {
		_, err := svc.DetectAndBuild(context.Background(), "expr", []string{"GENE1", "GENE2", "GENE3"})
		require.NoError(t, err)
	}
	assert.Equal(t, w.lists[0].Edges, w.lists[1].Edges)
}

func TestDetectReturnsScoresOnFailure(t *testing.T) {
	svc, _ := newService(memTables{"flat": table("Group\nA\nA\nA\nA\n")}, &memWriter{}, DefaultOptions())
	_, lay, err := svc.Detect(context.Background(), "flat")
	assert.ErrorIs(t, err, analysis.ErrLayoutInvalid)
	require.NotNil(t, lay)
	assert.Len(t, lay.Scores, 1)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, metrics.OutcomeOK, Outcome(nil))
	assert.Equal(t, metrics.OutcomeError, Outcome(errors.New("x")))
	assert.Equal(t, metrics.OutcomeBadSample, Outcome(&analysis.SampleError{Entity: "A"}))
}

// runsTotal reads coexnet_runs_total{outcome} from reg.
func runsTotal(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "coexnet_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" && lp.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
