// Package sqlite provides the bulk tier backed by SQLite.
//
// The store only holds derived cache state. Entries live in `records`,
// binary assets in `assets`; both can be dropped at any time.
package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmgilman/go/errors"
	_ "modernc.org/sqlite"

	"github.com/krisalay/tiered-cache/storage"
	"github.com/krisalay/tiered-cache/storage/sqlite/migrations"
	"github.com/krisalay/tiered-cache/types"
)

// Store is a SQLite-backed storage.BulkTier.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.BulkTier = (*Store)(nil)

// Open opens and migrates a bulk tier database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "bulk tier path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "open sqlite db")
	}
	// One writer at a time; the cache never needs parallel transactions.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, errors.CodeUnavailable, "ping sqlite db")
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, errors.CodeDatabase, "run migrations")
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) db() (*sql.DB, error) {
	if s == nil || s.sqlDB == nil {
		return nil, storage.ErrUnsupported
	}
	return s.sqlDB, nil
}

func (s *Store) Ping(ctx context.Context) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.CodeUnavailable, "ping sqlite db")
	}
	return nil
}

// GetRecord loads a serialized entry by composed key.
func (s *Store) GetRecord(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := s.db()
	if err != nil {
		return nil, false, err
	}
	if key == "" {
		return nil, false, storage.ErrEmptyKey
	}
	var record []byte
	err = db.QueryRowContext(ctx, `SELECT record FROM records WHERE cache_key = ?`, key).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.CodeDatabase, "get record")
	}
	return record, true, nil
}

// PutRecord upserts a serialized entry.
func (s *Store) PutRecord(ctx context.Context, key string, record []byte) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if key == "" {
		return storage.ErrEmptyKey
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO records (cache_key, record, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		    record = excluded.record,
		    updated_at = excluded.updated_at`,
		key, record, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "put record")
	}
	return nil
}

// DeleteRecord removes a serialized entry. Missing keys are not an error.
func (s *Store) DeleteRecord(ctx context.Context, key string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM records WHERE cache_key = ?`, key); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "delete record")
	}
	return nil
}

// RecordKeys lists record keys starting with prefix.
func (s *Store) RecordKeys(ctx context.Context, prefix string) ([]string, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT cache_key FROM records WHERE instr(cache_key, ?) = 1 OR ? = ''`,
		prefix, prefix,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "list record keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabase, "scan record key")
		}
		out = append(out, key)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "iterate record keys")
	}
	return out, nil
}

// GetAsset loads one asset record with its blob.
func (s *Store) GetAsset(ctx context.Context, url string) (types.CachedAsset, bool, error) {
	db, err := s.db()
	if err != nil {
		return types.CachedAsset{}, false, err
	}
	if url == "" {
		return types.CachedAsset{}, false, storage.ErrEmptyKey
	}
	asset := types.CachedAsset{URL: url}
	err = db.QueryRowContext(ctx,
		`SELECT blob, timestamp, size FROM assets WHERE url = ?`, url,
	).Scan(&asset.Blob, &asset.Timestamp, &asset.Size)
	if err == sql.ErrNoRows {
		return types.CachedAsset{}, false, nil
	}
	if err != nil {
		return types.CachedAsset{}, false, errors.Wrap(err, errors.CodeDatabase, "get asset")
	}
	return asset, true, nil
}

// PutAsset upserts one asset record.
func (s *Store) PutAsset(ctx context.Context, asset types.CachedAsset) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if asset.URL == "" {
		return storage.ErrEmptyKey
	}
	blob := asset.Blob
	if blob == nil {
		blob = []byte{}
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO assets (url, blob, timestamp, size) VALUES (?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
		    blob = excluded.blob,
		    timestamp = excluded.timestamp,
		    size = excluded.size`,
		asset.URL, blob, asset.Timestamp, asset.Size,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "put asset")
	}
	return nil
}

// DeleteAsset removes one asset record.
func (s *Store) DeleteAsset(ctx context.Context, url string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM assets WHERE url = ?`, url); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "delete asset")
	}
	return nil
}

// ListAssets returns asset metadata ordered oldest first.
func (s *Store) ListAssets(ctx context.Context) ([]types.AssetInfo, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT url, timestamp, size FROM assets ORDER BY timestamp, url`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "list assets")
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make([]types.AssetInfo, 0)
	for rows.Next() {
		var info types.AssetInfo
		if err := rows.Scan(&info.URL, &info.Timestamp, &info.Size); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabase, "scan asset")
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "iterate assets")
	}
	return out, nil
}

// ClearAssets deletes every asset record.
func (s *Store) ClearAssets(ctx context.Context) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM assets`); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "clear assets")
	}
	return nil
}
