package mapper

import (
	"context"

	"github.com/axiskey/mapper/internal/kv"
)

// watcher is implemented by backends that can report edits made by other
// processes.
type watcher interface {
	Watch(ctx context.Context, onChange func(key string)) error
}

// openStorage prefers the on-disk store under dir; else falls back to
// memory so the editor stays usable without a writable data directory.
func openStorage(dir string) kv.Store {
	if dir != "" {
		storeLogger.Info().Str("dir", dir).Msg("initializing file storage backend")
		fs, err := kv.NewFileStore(dir, storeLogger)
		if err == nil {
			return fs
		}
		storeLogger.Warn().Err(err).Msg("file storage init failed, falling back to memory backend")
	}

	storeLogger.Warn().Msg("initializing memory storage backend, changes will not survive a restart")
	return kv.NewMemory()
}

// watchStorage reloads the store whenever another process rewrites one of
// its entries.
func (a *App) watchStorage(ctx context.Context) {
	w, ok := a.backend.(watcher)
	if !ok {
		storeLogger.Debug().Msg("storage backend cannot be watched")
		return
	}

	err := w.Watch(ctx, func(key string) {
		storeLogger.Info().Str("key", key).Msg("storage changed on disk, reloading")
		a.store.Reload()
		a.metrics.reloads.Inc()
		a.metrics.observeProfile(a.store)
	})
	if err != nil {
		storeLogger.Warn().Err(err).Msg("failed to watch storage")
	}
}
