// Package codec is the payload encoding hook of the entry cache.
//
// The entry record carries a compressed flag; a Codec decides what that flag
// means. Identity is the default and leaves payloads untouched, so records
// written without a codec stay plain JSON.
package codec

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Codec transforms entry payloads before they are stored.
type Codec interface {
	// Name identifies the codec in configuration.
	Name() string

	// Encode returns the stored form of p.
	Encode(p []byte) ([]byte, error)

	// Decode reverses Encode.
	Decode(p []byte) ([]byte, error)

	// Compresses reports whether Encode changes its input. Entries written by
	// a codec that compresses are flagged so readers know to Decode.
	Compresses() bool
}

// Identity stores payloads as-is.
type Identity struct{}

func (Identity) Name() string                    { return "identity" }
func (Identity) Encode(p []byte) ([]byte, error) { return p, nil }
func (Identity) Decode(p []byte) ([]byte, error) { return p, nil }
func (Identity) Compresses() bool                { return false }

// ParseName returns the canonical name of a codec given in any case.
// Empty and "none" mean identity.
func ParseName(name string) (string, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", "identity", "none":
		return "identity", nil
	case "zstd":
		return n, nil
	default:
		return "", fmt.Errorf("unknown codec %q", name)
	}
}

// ByName returns the codec configured as name.
func ByName(name string) (Codec, error) {
	n, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	if n == "zstd" {
		z, err := NewZstd()
		if err != nil {
			return nil, err
		}
		return z, nil
	}
	return Identity{}, nil
}

const sealSize = 8

// Seal prefixes record with its xxhash64 so torn or foreign writes in the
// bulk tier are detected on read. This is corruption detection only.
func Seal(record []byte) []byte {
	out := make([]byte, sealSize+len(record))
	binary.BigEndian.PutUint64(out, xxhash.Sum64(record))
	copy(out[sealSize:], record)
	return out
}

// Open verifies and strips the checksum added by Seal.
func Open(sealed []byte) ([]byte, error) {
	if len(sealed) < sealSize {
		return nil, fmt.Errorf("sealed record too short: %d bytes", len(sealed))
	}
	record := sealed[sealSize:]
	if binary.BigEndian.Uint64(sealed) != xxhash.Sum64(record) {
		return nil, fmt.Errorf("sealed record checksum mismatch")
	}
	return record, nil
}
