// Package storage persists subtitle files in the local directory served by
// the static subtitles route.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Dir is a flat directory of subtitle files. Names are generated by the
// resolver and never contain path separators.
type Dir struct {
	root    string
	baseURL string
	route   string
}

// NewDir creates root if needed. baseURL and route build the public URL of a
// stored file, e.g. "http://10.0.0.5:7000" and "/subtitles".
func NewDir(root, baseURL, route string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create subtitles directory %s: %w", root, err)
	}
	if route == "" {
		route = "/subtitles"
	}
	return &Dir{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		route:   "/" + strings.Trim(route, "/"),
	}, nil
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Route returns the URL path prefix files are served under.
func (d *Dir) Route() string {
	return d.route
}

// Path returns the filesystem path of name. Only the base name is used so
// callers cannot escape the directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, filepath.Base(name))
}

// Write stores content under name.
func (d *Dir) Write(name string, content []byte) error {
	if err := os.WriteFile(d.Path(name), content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Rename moves a stored file to a new name.
func (d *Dir) Rename(from, to string) error {
	if err := os.Rename(d.Path(from), d.Path(to)); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", from, to, err)
	}
	return nil
}

// Exists reports whether name is a stored regular file.
func (d *Dir) Exists(name string) bool {
	info, err := os.Stat(d.Path(name))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Open returns the stored file for reading.
func (d *Dir) Open(name string) (*os.File, error) {
	f, err := os.Open(d.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fs.ErrNotExist
	}
	return f, err
}

// URL returns the public URL of a stored file.
func (d *Dir) URL(name string) string {
	return d.baseURL + d.route + "/" + url.PathEscape(filepath.Base(name))
}

// SetBaseURL replaces the base URL, used once the listening address is known.
func (d *Dir) SetBaseURL(baseURL string) {
	d.baseURL = strings.TrimRight(baseURL, "/")
}
