// Package blobstore implements the content-addressed metadata blob store
// of spec.md §4.1: put/get/delete/forEachHash/cleanAndOptimize over XML
// payloads keyed by a content fingerprint, deduplicated per network.
//
// Three back-end shapes are provided (fs.go, sql.go, kv.go), all
// implementing the same Store capability trait — composition over
// inheritance, per SPEC_FULL.md / spec.md §9 design notes.
package blobstore

import (
	"context"

	"github.com/lareferencia/lareferencia-core-lib-sub002/metrics"
)

// Store is the capability trait every blob backend implements.
type Store interface {
	// Put computes content's fingerprint via the store's Hasher and
	// writes it if not already present. Idempotent.
	Put(ctx context.Context, content []byte) (fingerprint string, err error)

	// Get returns the content for fingerprint, or an error wrapping
	// oai.ErrNotFound if absent.
	Get(ctx context.Context, fingerprint string) ([]byte, error)

	// Delete removes fingerprint if present, reporting whether a
	// deletion occurred.
	Delete(ctx context.Context, fingerprint string) (bool, error)

	// ForEachHash invokes consumer for every fingerprint in the
	// network's partition. No ordering guarantee.
	ForEachHash(ctx context.Context, consumer func(fingerprint string) error) error

	// CleanAndOptimize performs opportunistic compaction, reporting
	// success without guaranteeing byte-level reduction.
	CleanAndOptimize(ctx context.Context) (bool, error)

	// Close releases the store's per-network handle.
	Close() error
}

// Network identifies the owning network partition a Store operates
// within (the blob store is owned by the network, not the snapshot —
// spec.md §3 "Lifecycle ownership").
type Network struct {
	ID      int64
	Acronym string
}

// Options shared by every backend constructor.
type Options struct {
	BasePath string
	Hasher   Hasher
	Metrics  *metrics.Registry
}

func (o Options) hasherOrDefault() Hasher {
	if o.Hasher != nil {
		return o.Hasher
	}
	return SHA256Hasher{}
}

func (o Options) metricsOrNoop() *metrics.Registry {
	if o.Metrics != nil {
		return o.Metrics
	}
	return metrics.Noop()
}
