// Package config loads the cache settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jmgilman/go/errors"

	cache "github.com/krisalay/tiered-cache"
	"github.com/krisalay/tiered-cache/asset"
	"github.com/krisalay/tiered-cache/codec"
	"github.com/krisalay/tiered-cache/eviction"
	"github.com/krisalay/tiered-cache/writepolicy"
)

// Config holds every tunable of the entry and asset caches.
type Config struct {
	Version       string `env:"CACHE_VERSION" envDefault:"1.0.0"`
	GlobalPrefix  string `env:"CACHE_GLOBAL_PREFIX" envDefault:"tc_"`
	BulkThreshold int    `env:"CACHE_BULK_THRESHOLD_BYTES" envDefault:"51200"`
	FastQuota     int64  `env:"CACHE_FAST_QUOTA_BYTES" envDefault:"5242880"`

	// CleanupProbability is the chance a write also sweeps expired entries.
	CleanupProbability float64 `env:"CACHE_CLEANUP_PROBABILITY" envDefault:"0.1"`

	// FastPath is the fast tier file. Empty keeps the fast tier in memory.
	FastPath string `env:"CACHE_FAST_PATH"`

	// BulkPath is the sqlite database. Empty keeps the bulk tier in memory.
	BulkPath string `env:"CACHE_BULK_PATH"`

	Codec string `env:"CACHE_CODEC" envDefault:"identity"`

	AssetMaxAge        time.Duration `env:"CACHE_ASSET_MAX_AGE" envDefault:"720h"`
	AssetMaxBytes      int64         `env:"CACHE_ASSET_MAX_BYTES" envDefault:"104857600"`
	AssetMemoryEntries int           `env:"CACHE_ASSET_MEMORY_ENTRIES" envDefault:"50"`
	AssetMemoryPolicy  string        `env:"CACHE_ASSET_MEMORY_POLICY" envDefault:"FIFO"`
	AssetWritePolicy   string        `env:"CACHE_ASSET_WRITE_POLICY" envDefault:"through"`
	AssetWriteBuffer   int           `env:"CACHE_ASSET_WRITE_BUFFER" envDefault:"64"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.CodeInvalidConfig, "load cache config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the caches cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Version == "":
		return invalid("CACHE_VERSION", c.Version, "must not be empty")
	case c.GlobalPrefix == "":
		return invalid("CACHE_GLOBAL_PREFIX", c.GlobalPrefix, "must not be empty")
	case c.BulkThreshold <= 0:
		return invalid("CACHE_BULK_THRESHOLD_BYTES", c.BulkThreshold, "must be positive")
	case c.FastQuota <= 0:
		return invalid("CACHE_FAST_QUOTA_BYTES", c.FastQuota, "must be positive")
	case c.CleanupProbability < 0 || c.CleanupProbability > 1:
		return invalid("CACHE_CLEANUP_PROBABILITY", c.CleanupProbability, "must be within [0, 1]")
	case c.AssetMaxAge <= 0:
		return invalid("CACHE_ASSET_MAX_AGE", c.AssetMaxAge, "must be positive")
	case c.AssetMaxBytes <= 0:
		return invalid("CACHE_ASSET_MAX_BYTES", c.AssetMaxBytes, "must be positive")
	case c.AssetMemoryEntries <= 0:
		return invalid("CACHE_ASSET_MEMORY_ENTRIES", c.AssetMemoryEntries, "must be positive")
	case c.AssetWriteBuffer <= 0:
		return invalid("CACHE_ASSET_WRITE_BUFFER", c.AssetWriteBuffer, "must be positive")
	}
	if _, err := eviction.ParsePolicyType(c.AssetMemoryPolicy); err != nil {
		return invalid("CACHE_ASSET_MEMORY_POLICY", c.AssetMemoryPolicy, err.Error())
	}
	if _, err := writepolicy.ParseType(c.AssetWritePolicy); err != nil {
		return invalid("CACHE_ASSET_WRITE_POLICY", c.AssetWritePolicy, err.Error())
	}
	if _, err := codec.ParseName(c.Codec); err != nil {
		return invalid("CACHE_CODEC", c.Codec, err.Error())
	}
	return nil
}

func invalid(field string, value any, reason string) error {
	return errors.WithContextMap(
		errors.Newf(errors.CodeInvalidConfig, "%s %s", field, reason),
		map[string]interface{}{"field": field, "value": value},
	)
}

// EntryOptions returns the entry cache options described by c. The caller
// owns the returned codec and should Close it when it is a *codec.Zstd.
func (c Config) EntryOptions() ([]cache.Option, codec.Codec, error) {
	cd, err := codec.ByName(c.Codec)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInvalidConfig, "build codec")
	}
	return []cache.Option{
		cache.WithVersion(c.Version),
		cache.WithGlobalPrefix(c.GlobalPrefix),
		cache.WithBulkThreshold(c.BulkThreshold),
		cache.WithCodec(cd),
	}, cd, nil
}

// AssetOptions returns the asset cache options described by c. Call Validate first.
func (c Config) AssetOptions() []asset.Option {
	memPolicy, _ := eviction.ParsePolicyType(c.AssetMemoryPolicy)
	writes, _ := writepolicy.ParseType(c.AssetWritePolicy)
	return []asset.Option{
		asset.WithMaxAge(c.AssetMaxAge),
		asset.WithMaxBytes(c.AssetMaxBytes),
		asset.WithMemoryEntries(c.AssetMemoryEntries),
		asset.WithMemoryPolicy(memPolicy),
		asset.WithWritePolicy(writes, c.AssetWriteBuffer),
	}
}
