package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	"github.com/KaramelBytes/coexnet/internal/utils"
)

// ErrNameExhausted is returned when no unused edge list name could be generated.
var ErrNameExhausted = errors.New("could not allocate an unused edge list name")

// PutEdgeList writes l as edgelist_<run id>.txt and returns the file name.
// Names are claimed with exclusive create, so concurrent runs never share a file.
func (s *Store) PutEdgeList(l *analysis.EdgeList) (string, error) {
	var buf bytes.Buffer
	if _, err := l.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("format edge list: %w", err)
	}
	dir := filepath.Join(s.dir, edgeListsDir)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := edgeListPre + s.runID() + edgeListExt
		if _, err := utils.SafeBase(name); err != nil {
			return "", err
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return "", fmt.Errorf("create edge list: %w", err)
		}
		if _, err := f.Write(buf.Bytes()); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("write edge list: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", fmt.Errorf("close edge list: %w", err)
		}
		return name, nil
	}
	return "", ErrNameExhausted
}

// EdgeListPath resolves a previously written edge list. Only plain file names are accepted.
func (s *Store) EdgeListPath(name string) (string, error) {
	n, err := utils.SafeBase(name)
	if err != nil {
		return "", fmt.Errorf("edge list %q: %w", name, ErrNotFound)
	}
	path := filepath.Join(s.dir, edgeListsDir, n)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("edge list %q: %w", n, ErrNotFound)
		}
		return "", fmt.Errorf("stat edge list: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("edge list %q: %w", n, ErrNotFound)
	}
	return path, nil
}

// EdgeList reads back a written edge list.
func (s *Store) EdgeList(name string) (*analysis.EdgeList, error) {
	path, err := s.EdgeListPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open edge list: %w", err)
	}
	defer f.Close()
	return analysis.ParseEdgeList(f)
}

// EdgeLists returns the names of written edge lists in lexical order.
func (s *Store) EdgeLists() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, edgeListsDir))
	if err != nil {
		return nil, fmt.Errorf("list edge lists: %w", err)
	}
	var out []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, edgeListPre) || !strings.HasSuffix(n, edgeListExt) {
			continue
		}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
