package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const fileExt = ".json"

var defaultLogger = zerolog.New(os.Stdout).With().Str("subsystem", "kv").Logger()

// FileStore keeps one file per key under a directory.
type FileStore struct {
	dir string
	log *zerolog.Logger

	mu      sync.Mutex
	written map[string][]byte
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string, logger *zerolog.Logger) (*FileStore, error) {
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{
		dir:     dir,
		log:     logger,
		written: make(map[string][]byte),
	}, nil
}

func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

func (f *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// Set replaces the value atomically by writing a temp file and renaming it.
func (f *FileStore) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}

	f.written[key] = append([]byte(nil), value...)
	return nil
}

// Watch calls onChange with the key of every entry modified by someone other
// than this store, until ctx is done.
func (f *FileStore) Watch(ctx context.Context, onChange func(key string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(f.dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", f.dir, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				key, ok := f.keyFor(ev.Name)
				if !ok || !f.external(key) {
					continue
				}
				f.log.Debug().Str("key", key).Str("op", ev.Op.String()).Msg("external change detected")
				onChange(key)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.log.Warn().Err(err).Msg("watcher error")
			}
		}
	}()
	return nil
}

func (f *FileStore) keyFor(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(base, fileExt), true
}

// external reports whether the file content differs from what this store last wrote.
func (f *FileStore) external(key string) bool {
	data, ok, err := f.Get(key)
	if err != nil || !ok {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return !bytes.Equal(data, f.written[key])
}
