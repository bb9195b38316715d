package storage

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohanthewiz/serr"
)

// Local stores objects as files under a base directory and serves them
// back through the /files endpoint.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates the base directory if needed. baseURL is the externally
// visible server address, e.g. http://localhost:8000.
func NewLocal(dir, baseURL string) (*Local, error) {
	if dir == "" {
		dir = "data/files"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, serr.Wrap(err, "failed to create storage dir", "dir", dir)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes data under path and returns its download URL.
func (l *Local) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	full, err := l.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", serr.Wrap(err, "failed to create object dir", "path", path)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", serr.Wrap(err, "failed to write object", "path", path)
	}
	return l.URL(path)
}

// URL returns the download URL for an object path without touching disk.
func (l *Local) URL(path string) (string, error) {
	if _, err := l.resolve(path); err != nil {
		return "", err
	}
	return l.baseURL + "/files?path=" + url.QueryEscape(path), nil
}

// Get reads an object back for serving. The content type is derived from
// the file extension, falling back to sniffing the bytes.
func (l *Local) Get(path string) ([]byte, string, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, "", serr.Wrap(err, "failed to read object", "path", path)
	}
	contentType := mime.TypeByExtension(filepath.Ext(full))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// resolve maps an object path to an absolute file path, rejecting anything
// that would escape the storage dir.
func (l *Local) resolve(path string) (string, error) {
	if path == "" {
		return "", serr.New("empty object path")
	}
	absBase, err := filepath.Abs(l.dir)
	if err != nil {
		return "", serr.Wrap(err, "failed to resolve storage dir")
	}
	absFull, err := filepath.Abs(filepath.Join(l.dir, filepath.FromSlash(path)))
	if err != nil {
		return "", serr.Wrap(err, "failed to resolve object path", "path", path)
	}
	if absFull != absBase && !strings.HasPrefix(absFull, absBase+string(os.PathSeparator)) {
		return "", serr.New("object path escapes the storage dir", "path", path)
	}
	return absFull, nil
}
