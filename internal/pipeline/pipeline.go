package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	"github.com/KaramelBytes/coexnet/internal/logging"
	"github.com/KaramelBytes/coexnet/internal/metrics"
	"github.com/KaramelBytes/coexnet/internal/store"
)

// TableLoader resolves a table handle. Missing handles yield an error wrapping store.ErrNotFound.
type TableLoader interface {
	Table(handle string) (*analysis.Table, error)
}

// TableLoaderFunc adapts a function to TableLoader.
type TableLoaderFunc func(handle string) (*analysis.Table, error)

// Table calls f(handle).
func (f TableLoaderFunc) Table(handle string) (*analysis.Table, error) { return f(handle) }

// EdgeListWriter persists a finished graph and returns its name.
type EdgeListWriter interface {
	PutEdgeList(l *analysis.EdgeList) (string, error)
}

// Options are the per-run thresholds.
type Options struct {
	Threshold   float64
	MinScore    float64
	SampleSize  int
	MirrorEdges bool
	// Seed fixes column sampling; 0 draws a fresh seed per run.
	Seed   uint64
	Format analysis.NumberFormat
}

// DefaultOptions mirrors the analysis package defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:  analysis.DefaultSignificance,
		MinScore:   analysis.DefaultMinColumnScore,
		SampleSize: analysis.DefaultSampleSize,
	}
}

// Result summarises one detect-and-build run.
type Result struct {
	EdgeList   string             `json:"edgelist"`
	Column     int                `json:"column"`
	ColumnName string             `json:"column_name"`
	StartRow   int                `json:"start_row"`
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`
	Graph      *analysis.EdgeList `json:"-"`
}

// Service runs layout detection and graph construction against stored tables.
type Service struct {
	tables     TableLoader
	out        EdgeListWriter
	classifier analysis.EntityClassifier
	opts       Options
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = logging.Component(l, "pipeline") }
}

// WithMetrics sets the run recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// New builds a Service. A nil classifier disables the entity bonus.
func New(tables TableLoader, out EdgeListWriter, classifier analysis.EntityClassifier, opts Options, options ...Option) *Service {
	if classifier == nil {
		classifier = analysis.NoEntities
	}
	s := &Service{
		tables:     tables,
		out:        out,
		classifier: classifier,
		opts:       opts,
		logger:     logging.Discard(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *Service) detector() *analysis.Detector {
	seed := s.opts.Seed
	var src *rand.PCG
	if seed != 0 {
		src = rand.NewPCG(seed, seed)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	d := analysis.NewDetector(s.classifier, rand.New(src))
	if s.opts.SampleSize > 0 {
		d.SampleSize = s.opts.SampleSize
	}
	if s.opts.MinScore > 0 {
		d.MinScore = s.opts.MinScore
	}
	return d
}

// Detect loads handle and detects its layout. On ErrLayoutInvalid the partial
// layout (column scores) is still returned.
func (s *Service) Detect(ctx context.Context, handle string) (*analysis.Table, *analysis.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	start := time.Now()
	t, err := s.tables.Table(handle)
	if err != nil {
		return nil, nil, fmt.Errorf("load table: %w", err)
	}
	s.metrics.Stage("load", time.Since(start))

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	start = time.Now()
	lay, err := s.detector().Detect(t)
	s.metrics.Stage("detect", time.Since(start))
	if err != nil {
		return t, lay, fmt.Errorf("detect layout of %q: %w", handle, err)
	}
	s.logger.DebugContext(ctx, "layout detected",
		slog.String("table", handle),
		slog.String("column", lay.ColumnName),
		slog.Int("start_row", lay.StartRow),
	)
	return t, lay, nil
}

// DetectAndBuild detects the layout of the table behind handle, builds the
// correlation graph over targets and persists it as an edge list.
func (s *Service) DetectAndBuild(ctx context.Context, handle string, targets []string) (*Result, error) {
	res, err := s.run(ctx, handle, targets)
	outcome := Outcome(err)
	s.metrics.Run(outcome)
	if err != nil {
		s.logger.WarnContext(ctx, "run failed",
			slog.String("table", handle),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.metrics.Graph(res.Nodes, res.Edges)
	s.logger.InfoContext(ctx, "run finished",
		slog.String("table", handle),
		slog.String("edgelist", res.EdgeList),
		slog.Int("nodes", res.Nodes),
		slog.Int("edges", res.Edges),
	)
	return res, nil
}

func (s *Service) run(ctx context.Context, handle string, targets []string) (*Result, error) {
	ids := CleanTargets(targets)
	t, lay, err := s.Detect(ctx, handle)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	g, err := analysis.BuildGraph(t, lay.Column, lay.StartRow, ids, analysis.GraphOptions{
		Threshold:   s.opts.Threshold,
		MirrorEdges: s.opts.MirrorEdges,
		Format:      s.opts.Format,
	})
	s.metrics.Stage("build", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("build graph for %q: %w", handle, err)
	}

	start = time.Now()
	name, err := s.out.PutEdgeList(g)
	s.metrics.Stage("write", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("write edge list: %w", err)
	}
	return &Result{
		EdgeList:   name,
		Column:     lay.Column,
		ColumnName: lay.ColumnName,
		StartRow:   lay.StartRow,
		Nodes:      len(g.Nodes),
		Edges:      len(g.Edges),
		Graph:      g,
	}, nil
}

// CleanTargets trims identifiers and drops blanks, keeping request order.
func CleanTargets(in []string) []string {
	out := make([]string, 0, len(in))
	for _, id := range in {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Outcome maps a run error to its metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, store.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, analysis.ErrLayoutInvalid):
		return metrics.OutcomeLayoutInvalid
	case errors.Is(err, analysis.ErrBadSample):
		return metrics.OutcomeBadSample
	default:
		return metrics.OutcomeError
	}
}
