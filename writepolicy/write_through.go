package writepolicy

import (
	"context"
	"log/slog"

	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/types"
)

/*
WriteThroughPolicy persists every asset synchronously:

	CacheImage → PutAsset → done (cleanup)

CacheImage does not return until the bulk tier has answered, so a completed
call means the record is on disk and the cap has been enforced.
*/
type WriteThroughPolicy struct {
	store  storage.AssetStore
	logger *slog.Logger
}

// NewWriteThroughPolicy creates a write-through policy over store.
func NewWriteThroughPolicy(store storage.AssetStore, logger *slog.Logger) *WriteThroughPolicy {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &WriteThroughPolicy{store: store, logger: logger}
}

func (w *WriteThroughPolicy) OnWrite(ctx context.Context, asset types.CachedAsset, done func(context.Context)) {
	persist(ctx, w.store, w.logger, asset)
	if done != nil {
		done(ctx)
	}
}

// Close has nothing to flush.
func (w *WriteThroughPolicy) Close() {}

func persist(ctx context.Context, store storage.AssetStore, logger *slog.Logger, asset types.CachedAsset) {
	if err := store.PutAsset(ctx, asset); err != nil {
		logger.WarnContext(ctx, "persist asset failed",
			slog.String("url", asset.URL),
			slog.Int64("bytes", asset.Size),
			slog.String("code", storage.Code(err)),
			slog.Any("err", err),
		)
	}
}
