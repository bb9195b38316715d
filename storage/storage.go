// Package storage provides the object stores handed to plugin tools for
// persisting generated files. A store takes bytes and returns a URL the
// chat UI can render.
package storage

import (
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"plugyard/plugin"
)

const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// Config selects and parameterizes a storage backend.
type Config struct {
	Backend string // local, memory, or s3
	Dir     string // local: directory for stored objects
	BaseURL string // local: server base used to build download URLs

	Bucket    string // s3: bucket name
	Region    string // s3: bucket region
	Endpoint  string // s3: optional custom endpoint (MinIO etc.)
	AccessKey string // s3: optional static credentials
	SecretKey string
	PublicURL string // s3: optional CDN or website prefix for URLs
}

// New builds the store named by cfg.Backend. An empty backend means local.
func New(cfg Config) (plugin.Store, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		store, err := NewLocal(cfg.Dir, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Storage initialized", "backend", BackendLocal, "dir", cfg.Dir)
		return store, nil
	case BackendMemory:
		logger.Info("Storage initialized", "backend", BackendMemory)
		return NewMemory(), nil
	case BackendS3:
		store, err := NewS3(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Storage initialized", "backend", BackendS3, "bucket", cfg.Bucket)
		return store, nil
	default:
		return nil, serr.New("unknown storage backend", "backend", cfg.Backend)
	}
}
