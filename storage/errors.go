package storage

import (
	"github.com/jmgilman/go/errors"
)

const (
	// CodeQuotaExceeded marks a write rejected because the tier is full.
	CodeQuotaExceeded errors.ErrorCode = "STORAGE_QUOTA_EXCEEDED"

	// CodeCorrupt marks a record that failed its checksum or could not be decoded.
	CodeCorrupt errors.ErrorCode = "STORAGE_RECORD_CORRUPT"
)

var (
	// ErrUnsupported is returned by tiers that cannot operate in the current
	// environment, or that have been closed.
	ErrUnsupported = errors.New(errors.CodeUnavailable, "storage backend unsupported")

	// ErrEmptyKey is returned when a key or url is blank.
	ErrEmptyKey = errors.New(errors.CodeInvalidInput, "storage key is required")
)

// QuotaExceeded builds the error a fast tier returns when a write does not fit.
func QuotaExceeded(key string, need, quota int64) error {
	return errors.WithContextMap(
		errors.New(CodeQuotaExceeded, "storage quota exceeded"),
		map[string]interface{}{"key": key, "bytes": need, "quota": quota},
	)
}

// Corrupt wraps a decode or checksum failure for key.
func Corrupt(err error, key string) error {
	if err == nil {
		return nil
	}
	return errors.WithContext(errors.Wrap(err, CodeCorrupt, "corrupt record"), "key", key)
}

// IsQuotaExceeded reports whether err was caused by a full tier.
func IsQuotaExceeded(err error) bool {
	return errors.GetCode(err) == CodeQuotaExceeded
}

// IsCorrupt reports whether err marks an unreadable record.
func IsCorrupt(err error) bool {
	return errors.GetCode(err) == CodeCorrupt
}

// Code returns the error code of err for log attributes.
func Code(err error) string {
	return string(errors.GetCode(err))
}
