// Package config loads the keys recognized by the core (spec.md §6) from a
// TOML file, applying the documented defaults to keys the file leaves
// unset. Environment variables are not read.
package config

import (
	"os"
	"strconv"

	"github.com/c2h5oh/datasize"
	"github.com/pelletier/go-toml/v2"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// BlobBackend selects the deploy-time blob store implementation (spec.md
// §4.1, §6).
type BlobBackend string

const (
	BlobBackendFS  BlobBackend = "fs"
	BlobBackendSQL BlobBackend = "sql"
	BlobBackendKV  BlobBackend = "kv"
)

// Compression is the Parquet page compression codec (spec.md §6).
type Compression string

const (
	CompressionSnappy Compression = "SNAPPY"
	CompressionGzip   Compression = "GZIP"
	CompressionNone   Compression = "NONE"
)

// Config mirrors every key in spec.md §6 "Configuration recognized by the
// core".
type Config struct {
	Store struct {
		BasePath string `toml:"basepath"`
		Backend  BlobBackend `toml:"backend"`
	} `toml:"store"`

	Parquet struct {
		Catalog struct {
			RecordsPerFile int `toml:"records-per-file"`
		} `toml:"catalog"`
		Validation struct {
			RecordsPerFile     int `toml:"records-per-file"`
			CacheMaxSnapshots  int `toml:"cache-max-snapshots"`
			CacheTTLMinutes    int `toml:"cache-ttl-minutes"`
		} `toml:"validation"`
		Compression Compression `toml:"compression"`
		Page        struct {
			SizeRaw string `toml:"size"`
		} `toml:"page"`
		Enable struct {
			Dictionary bool `toml:"dictionary"`
		} `toml:"enable"`
	} `toml:"parquet"`

	Catalog struct {
		Batch struct {
			Size int `toml:"size"`
		} `toml:"batch"`
	} `toml:"catalog"`
}

// PageSizeBytes parses Parquet.Page.SizeRaw as a humanized size
// (e.g. "1MiB") or a plain integer byte count, defaulting to 1048576.
func (c *Config) PageSizeBytes() int64 {
	raw := c.Parquet.Page.SizeRaw
	if raw == "" {
		return DefaultPageSize
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(raw)); err == nil {
		return int64(v.Bytes())
	}
	return DefaultPageSize
}

// Defaults from spec.md §6.
const (
	DefaultBasePath               = "/tmp/data"
	DefaultCatalogRecordsPerFile  = 100_000
	DefaultValidationRecordsPerFile = 100_000
	DefaultCacheMaxSnapshots      = 5
	DefaultCacheTTLMinutes        = 30
	DefaultCatalogBatchSize       = 5000
	DefaultPageSize               = 1_048_576
)

// Default returns a Config populated with every documented default.
func Default() *Config {
	c := &Config{}
	c.Store.BasePath = DefaultBasePath
	c.Store.Backend = BlobBackendFS
	c.Parquet.Catalog.RecordsPerFile = DefaultCatalogRecordsPerFile
	c.Parquet.Validation.RecordsPerFile = DefaultValidationRecordsPerFile
	c.Parquet.Validation.CacheMaxSnapshots = DefaultCacheMaxSnapshots
	c.Parquet.Validation.CacheTTLMinutes = DefaultCacheTTLMinutes
	c.Parquet.Compression = CompressionSnappy
	c.Parquet.Enable.Dictionary = true
	c.Catalog.Batch.Size = DefaultCatalogBatchSize
	return c
}

// Load reads a TOML file at path, merging it over Default(). A missing
// file is not an error: the defaults alone are a valid configuration.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, oai.StoreIOf("reading config %s: %v", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, oai.ParseErrorf("parsing config %s: %v", path, err)
	}
	if c.Parquet.Validation.CacheMaxSnapshots < 5 {
		c.Parquet.Validation.CacheMaxSnapshots = 5
	}
	return c, nil
}
