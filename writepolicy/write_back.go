package writepolicy

import (
	"context"
	"log/slog"
	"sync"

	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/types"
)

type writeReq struct {
	ctx   context.Context
	asset types.CachedAsset
	done  func(context.Context)
}

/*
WriteBackPolicy persists assets from a single background worker.

CacheImage returns as soon as the record is queued. When the queue is full
the write is dropped: the blob is still served from memory for this process,
it just does not survive a reload.
*/
type WriteBackPolicy struct {
	store  storage.AssetStore
	logger *slog.Logger

	ch chan writeReq
	wg sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWriteBackPolicy creates a write-back policy with a queue of buffer writes.
func NewWriteBackPolicy(store storage.AssetStore, buffer int, logger *slog.Logger) *WriteBackPolicy {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if buffer < 1 {
		buffer = 1
	}
	w := &WriteBackPolicy{
		store:  store,
		logger: logger,
		ch:     make(chan writeReq, buffer),
	}
	w.wg.Add(1)
	go w.worker()
	return w
}

// OnWrite queues asset. The request context's cancellation is detached so a
// finished caller does not abort its own pending write.
func (w *WriteBackPolicy) OnWrite(ctx context.Context, asset types.CachedAsset, done func(context.Context)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.ch <- writeReq{ctx: context.WithoutCancel(ctx), asset: asset, done: done}:
	default:
		w.logger.DebugContext(ctx, "asset write queue full, dropping",
			slog.String("url", asset.URL))
	}
}

func (w *WriteBackPolicy) worker() {
	defer w.wg.Done()
	for req := range w.ch {
		persist(req.ctx, w.store, w.logger, req.asset)
		if req.done != nil {
			req.done(req.ctx)
		}
	}
}

// Close stops accepting writes and waits for the queue to drain.
func (w *WriteBackPolicy) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.ch)
	w.mu.Unlock()
	w.wg.Wait()
}
