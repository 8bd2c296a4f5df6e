package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ProcessRequest is the body of POST /api/process.
type ProcessRequest struct {
	Filename string   `json:"filename" validate:"required"`
	Values   []string `json:"values" validate:"required,min=1,dive,required"`
}

// TablePreview is the body of GET /api/tables/{handle}.
type TablePreview struct {
	Handle  string           `json:"handle"`
	Columns []string         `json:"columns"`
	Rows    int              `json:"rows"`
	Head    []map[string]any `json:"head"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Int("status", apiErr.StatusCode),
		slog.String("error", err.Error()),
	)
	_ = render.Render(w, r, apiErr)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// upload handles POST /upload with a multipart "file" field and optional
// "sheet" (name or 1-based index) for workbooks.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, err)
			return
		}
		s.fail(w, r, newAPIError(http.StatusBadRequest, "MISSING_FILE", "multipart field \"file\" is required", nil))
		return
	}
	defer file.Close()

	opt := s.cfg.Load
	if sheet := r.FormValue("sheet"); sheet != "" {
		if idx, err := strconv.Atoi(sheet); err == nil {
			opt.SheetIndex = idx
			opt.SheetName = ""
		} else {
			opt.SheetName = sheet
		}
	}
	info, err := s.tables.ImportReader(file, filepath.Base(header.Filename), opt)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.cfg.Metrics.Import(strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), "."))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"message": "File uploaded and converted successfully",
		"table":   info,
	})
}

func (s *Server) listTables(w http.ResponseWriter, r *http.Request) {
	list, err := s.tables.Tables()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	handles := make([]string, 0, len(list))
	for _, t := range list {
		handles = append(handles, t.Handle)
	}
	render.JSON(w, r, map[string]any{"tables": handles, "details": list})
}

func (s *Server) previewTable(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	t, err := s.tables.Table(handle)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, TablePreview{
		Handle:  handle,
		Columns: t.Columns,
		Rows:    t.NumRows(),
		Head:    t.Head(s.cfg.PreviewRows),
	})
}

func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, newAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.DetectAndBuild(r.Context(), req.Filename, req.Values)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"message":       "Processing completed",
		"edgelist_file": res.EdgeList,
		"result":        res,
	})
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	path, err := s.tables.EdgeListPath(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
