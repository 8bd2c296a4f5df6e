package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	"github.com/KaramelBytes/coexnet/internal/logging"
	"github.com/KaramelBytes/coexnet/internal/metrics"
	"github.com/KaramelBytes/coexnet/internal/pipeline"
	"github.com/KaramelBytes/coexnet/internal/store"
)

// Tables is the table and edge list storage the API serves from.
type Tables interface {
	ImportReader(r io.Reader, name string, opt analysis.LoadOptions) (*store.TableInfo, error)
	Tables() ([]store.TableInfo, error)
	Table(handle string) (*analysis.Table, error)
	EdgeListPath(name string) (string, error)
}

// Runner executes a detect-and-build run.
type Runner interface {
	DetectAndBuild(ctx context.Context, handle string, targets []string) (*pipeline.Result, error)
}

// Config holds the HTTP surface settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
	MaxUploadBytes int64
	PreviewRows    int
	Load           analysis.LoadOptions
	// Gatherer backs GET /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Recorder
}

// Server is the coexnet HTTP API.
type Server struct {
	cfg      Config
	tables   Tables
	runner   Runner
	logger   *slog.Logger
	validate *validator.Validate
	router   chi.Router
}

// New wires the routes.
func New(cfg Config, tables Tables, runner Runner, logger *slog.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 64 << 20
	}
	if cfg.PreviewRows < 0 {
		cfg.PreviewRows = 0
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		cfg:      cfg,
		tables:   tables,
		runner:   runner,
		logger:   logging.Component(logger, "http"),
		validate: newValidator(),
	}
	s.router = s.routes()
	return s
}

func newValidator() *validator.Validate {
	v := validator.New()
	// report JSON field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Post("/upload", s.upload)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.listTables)
		r.Get("/tables/{handle}", s.previewTable)
		r.Post("/process", s.process)
		r.Get("/download/{name}", s.download)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
