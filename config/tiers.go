package config

import (
	"context"
	"log/slog"

	"github.com/jmgilman/go/errors"

	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/storage/disk"
	"github.com/krisalay/tiered-cache/storage/memory"
	"github.com/krisalay/tiered-cache/storage/sqlite"
)

// Tiers are the storage tiers described by a Config.
type Tiers struct {
	Fast storage.FastTier
	Bulk storage.BulkTier
}

// Close releases the bulk tier.
func (t Tiers) Close() error {
	if t.Bulk == nil {
		return nil
	}
	return t.Bulk.Close()
}

/*
OpenTiers opens the fast and bulk tiers.

An empty FastPath or BulkPath selects the in-memory implementation. A bulk
database that cannot be opened is logged and replaced by nothing, so the
caches run fast-tier-only. A fast tier file that cannot be opened is an error.
*/
func (c Config) OpenTiers(ctx context.Context, logger *slog.Logger) (Tiers, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var t Tiers
	if c.FastPath == "" {
		t.Fast = memory.NewFast(c.FastQuota)
	} else {
		fast, err := disk.Open(c.FastPath, c.FastQuota, disk.WithLogger(logger))
		if err != nil {
			return Tiers{}, errors.WithContext(
				errors.Wrap(err, errors.CodeInvalidConfig, "open fast tier"), "path", c.FastPath)
		}
		t.Fast = fast
	}

	if c.BulkPath == "" {
		t.Bulk = memory.NewBulk()
		return t, nil
	}
	bulk, err := sqlite.Open(ctx, c.BulkPath)
	if err != nil {
		logger.WarnContext(ctx, "bulk tier unavailable, using fast tier only",
			slog.String("path", c.BulkPath),
			slog.String("code", storage.Code(err)),
			slog.Any("err", err))
		return t, nil
	}
	t.Bulk = bulk
	return t, nil
}
