// Package metrics exposes the small set of prometheus collectors the core
// updates as it writes blobs, catalog rows, and serves cached queries.
// Scraping them is optional; components take a *Registry (or nil) so unit
// tests never need a real prometheus.Registerer.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every metric this module emits.
type Registry struct {
	BlobPuts         prometheus.Counter
	BlobPutDuplicates prometheus.Counter
	BlobGets         prometheus.Counter
	BlobGetMisses    prometheus.Counter

	CatalogRecordsWritten prometheus.Counter
	CatalogBatchesFlushed prometheus.Counter

	ValidationRecordsWritten prometheus.Counter
	ValidationIndexFlushes   prometheus.Counter

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheLoads  prometheus.Counter

	SnapshotSize            *prometheus.GaugeVec
	SnapshotValidSize       *prometheus.GaugeVec
	SnapshotTransformedSize *prometheus.GaugeVec
}

// New constructs a Registry and registers every collector with reg. Pass
// prometheus.NewRegistry() in production or nil in tests (New uses a fresh
// unregistered registry when reg is nil, so collectors are always usable).
func New(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := &Registry{
		BlobPuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_blobstore_puts_total", Help: "Total blob put calls.",
		}),
		BlobPutDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_blobstore_put_duplicates_total", Help: "Put calls that were no-ops because the fingerprint already existed.",
		}),
		BlobGets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_blobstore_gets_total", Help: "Total blob get calls.",
		}),
		BlobGetMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_blobstore_get_misses_total", Help: "Get calls for a fingerprint not present.",
		}),
		CatalogRecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_catalog_records_written_total", Help: "OAIRecords appended to the catalog.",
		}),
		CatalogBatchesFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_catalog_batches_flushed_total", Help: "Catalog batch files closed.",
		}),
		ValidationRecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_validation_records_written_total", Help: "RecordValidations appended.",
		}),
		ValidationIndexFlushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_validation_index_flushes_total", Help: "validation_index.parquet rewrites.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_records_cache_hits_total", Help: "Records LRU cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_records_cache_misses_total", Help: "Records LRU cache misses.",
		}),
		CacheLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oai_records_cache_loads_total", Help: "Records LRU cache loads from storage (post-singleflight).",
		}),
		SnapshotSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "oai_snapshot_size", Help: "Current size counter per snapshot.",
		}, []string{"snapshot_id"}),
		SnapshotValidSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "oai_snapshot_valid_size", Help: "Current validSize counter per snapshot.",
		}, []string{"snapshot_id"}),
		SnapshotTransformedSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "oai_snapshot_transformed_size", Help: "Current transformedSize counter per snapshot.",
		}, []string{"snapshot_id"}),
	}

	for _, c := range []prometheus.Collector{
		r.BlobPuts, r.BlobPutDuplicates, r.BlobGets, r.BlobGetMisses,
		r.CatalogRecordsWritten, r.CatalogBatchesFlushed,
		r.ValidationRecordsWritten, r.ValidationIndexFlushes,
		r.CacheHits, r.CacheMisses, r.CacheLoads,
		r.SnapshotSize, r.SnapshotValidSize, r.SnapshotTransformedSize,
	} {
		_ = reg.Register(c) // duplicate registration across tests is harmless to ignore
	}

	return r
}

// Noop returns a Registry whose collectors are never registered anywhere;
// safe default for components that don't take an explicit Registry.
func Noop() *Registry {
	return New(prometheus.NewRegistry())
}
