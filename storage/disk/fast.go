// Package disk provides a file-backed fast tier.
//
// The whole tier is one JSON object rewritten on every mutation, the way a
// browser persists its synchronous storage. Values survive restarts, which
// is what lets the schema version marker detect upgrades.
package disk

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmgilman/go/errors"

	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/storage/memory"
)

const defaultDirPerm = 0o700

// Fast is a fast tier persisted to a single file.
type Fast struct {
	path   string
	mem    *memory.Fast
	logger *slog.Logger

	// mu serializes mutation and file rewrite so the file always reflects
	// one consistent snapshot.
	mu sync.Mutex
}

var _ storage.FastTier = (*Fast)(nil)

// Option configures a disk fast tier.
type Option func(*Fast)

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fast) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Open loads the tier stored at path, creating parent directories as needed.
// A missing file starts empty. An unreadable or corrupt file is discarded
// and also starts empty: it only ever held cache data.
func Open(path string, quota int64, opts ...Option) (*Fast, error) {
	if path == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "fast tier path is required")
	}
	f := &Fast{path: filepath.Clean(path), logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(f)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), defaultDirPerm); err != nil {
		return nil, err
	}

	values := map[string]string{}
	data, err := os.ReadFile(f.path)
	switch {
	case err == nil:
		if jerr := json.Unmarshal(data, &values); jerr != nil {
			f.logger.Warn("discarding corrupt fast tier file",
				slog.String("path", f.path), slog.Any("err", jerr))
			values = map[string]string{}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	f.mem = memory.Seed(quota, values)
	return f, nil
}

func (f *Fast) Get(key string) (string, bool) { return f.mem.Get(key) }
func (f *Fast) Keys() []string                 { return f.mem.Keys() }
func (f *Fast) Size() int64                    { return f.mem.Size() }
func (f *Fast) Quota() int64                   { return f.mem.Quota() }

// Set stores value and rewrites the file. When the rewrite fails the
// previous value is restored so memory and disk agree.
func (f *Fast) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.mem.Get(key)
	if err := f.mem.Set(key, value); err != nil {
		return err
	}
	if err := f.flush(); err != nil {
		if had {
			_ = f.mem.Set(key, prev)
		} else {
			f.mem.Remove(key)
		}
		return err
	}
	return nil
}

func (f *Fast) Remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.mem.Get(key); !ok {
		return
	}
	f.mem.Remove(key)
	if err := f.flush(); err != nil {
		f.logger.Warn("persist fast tier removal failed",
			slog.String("key", key), slog.Any("err", err))
	}
}

// flush writes the snapshot to a temp file and renames it over path.
func (f *Fast) flush() error {
	data, err := json.Marshal(f.mem.Snapshot())
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "fast-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
