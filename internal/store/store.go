package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	"github.com/KaramelBytes/coexnet/internal/parser"
	"github.com/KaramelBytes/coexnet/internal/utils"
)

const (
	tablesDir    = "tables"
	edgeListsDir = "edgelists"
	tableExt     = ".json"
	edgeListExt  = ".txt"
	edgeListPre  = "edgelist_"

	maxNameAttempts = 16
)

// ErrNotFound is returned when a table handle or edge list name does not exist.
var ErrNotFound = errors.New("not found")

// TableInfo describes a cached table.
type TableInfo struct {
	ID         string    `json:"id"`
	Handle     string    `json:"handle"`
	Source     string    `json:"source"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	ImportedAt time.Time `json:"imported_at"`
}

type cachedTable struct {
	Info  TableInfo       `json:"info"`
	Table *analysis.Table `json:"table"`
}

// Store persists imported tables and generated edge lists under one data directory.
type Store struct {
	dir   string
	runID func() string
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithRunIDs overrides the generator for the numeric part of edge list names.
func WithRunIDs(f func() string) Option {
	return func(s *Store) { s.runID = f }
}

// WithClock overrides the import timestamp source.
func WithClock(f func() time.Time) Option {
	return func(s *Store) { s.now = f }
}

// NewRunID returns a random decimal run token.
func NewRunID() string {
	return strconv.FormatUint(uint64(uuid.New().ID()), 10)
}

// Open prepares dir for use, creating the table and edge list folders.
func Open(dir string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data directory not set")
	}
	s := &Store{dir: dir, runID: NewRunID, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	for _, d := range []string{tablesDir, edgeListsDir} {
		if err := utils.EnsureDir(filepath.Join(dir, d)); err != nil {
			return nil, fmt.Errorf("ensure dir: %w", err)
		}
	}
	return s, nil
}

// HandleFor derives a table handle from a file name: the base name without
// extension, restricted to letters, digits, '-', '_' and '.'.
func HandleFor(name string) string {
	base := utils.TrimExt(name)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	h := strings.TrimLeft(b.String(), ".")
	if h == "" {
		h = "table"
	}
	return h
}

// ImportFile parses a spreadsheet from disk and caches it.
func (s *Store) ImportFile(path string, opt analysis.LoadOptions) (*TableInfo, error) {
	t, err := parser.ParseFile(path, opt)
	if err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	return s.PutTable(HandleFor(path), filepath.Base(path), t)
}

// ImportReader parses a spreadsheet read from r; name selects the format.
func (s *Store) ImportReader(r io.Reader, name string, opt analysis.LoadOptions) (*TableInfo, error) {
	t, err := parser.Parse(r, name, opt)
	if err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	return s.PutTable(HandleFor(name), filepath.Base(name), t)
}

// PutTable caches t under handle, replacing any previous table with that handle.
func (s *Store) PutTable(handle, source string, t *analysis.Table) (*TableInfo, error) {
	h, err := utils.SafeBase(handle)
	if err != nil {
		return nil, err
	}
	info := TableInfo{
		ID:         uuid.NewString(),
		Handle:     h,
		Source:     source,
		Rows:       t.NumRows(),
		Columns:    t.NumCols(),
		ImportedAt: s.now().UTC(),
	}
	b, err := json.Marshal(cachedTable{Info: info, Table: t})
	if err != nil {
		return nil, fmt.Errorf("marshal table: %w", err)
	}
	if err := utils.SafeWriteFile(s.tablePath(h), b); err != nil {
		return nil, err
	}
	return &info, nil
}

// Table loads the cached table for handle. A trailing ".json" is accepted.
func (s *Store) Table(handle string) (*analysis.Table, error) {
	c, err := s.readTable(handle)
	if err != nil {
		return nil, err
	}
	return c.Table, nil
}

// TableInfo returns the metadata of a cached table.
func (s *Store) TableInfo(handle string) (*TableInfo, error) {
	c, err := s.readTable(handle)
	if err != nil {
		return nil, err
	}
	return &c.Info, nil
}

func (s *Store) readTable(handle string) (*cachedTable, error) {
	h, err := utils.SafeBase(strings.TrimSuffix(handle, tableExt))
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", handle, ErrNotFound)
	}
	b, err := os.ReadFile(s.tablePath(h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("table %q: %w", h, ErrNotFound)
		}
		return nil, fmt.Errorf("read table: %w", err)
	}
	var c cachedTable
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse table %q: %w", h, err)
	}
	if c.Table == nil {
		return nil, fmt.Errorf("table %q: empty cache file", h)
	}
	// cache files may be edited by hand; restore the equal row length invariant
	c.Table = analysis.NewTable(c.Table.Name, c.Table.Columns, c.Table.Rows)
	return &c, nil
}

// Tables lists cached tables ordered by handle.
func (s *Store) Tables() ([]TableInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, tablesDir))
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	var out []TableInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), tableExt) {
			continue
		}
		info, err := s.TableInfo(strings.TrimSuffix(e.Name(), tableExt))
		if err != nil {
			return nil, err
		}
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

func (s *Store) tablePath(handle string) string {
	return filepath.Join(s.dir, tablesDir, handle+tableExt)
}
