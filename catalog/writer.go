package catalog

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/gzip"
	"github.com/parquet-go/parquet-go/compress/snappy"
	"github.com/spf13/afero"

	"github.com/lareferencia/lareferencia-core-lib-sub002/blobstore"
	"github.com/lareferencia/lareferencia-core-lib-sub002/config"
	"github.com/lareferencia/lareferencia-core-lib-sub002/log"
	"github.com/lareferencia/lareferencia-core-lib-sub002/metrics"
	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

const catalogDirName = "catalog"
// Zero-padded so lexicographic and numeric ordering coincide past batch 9
// (spec.md §4.2, §5: the iterator orders files lexicographically, and that
// must equal write-insertion order at any catalog size).
const batchFilePattern = "oai_records_batch_%08d.parquet"

func compressionCodec(c config.Compression) parquet.Compression {
	switch c {
	case config.CompressionGzip:
		return &gzip.Codec{}
	case config.CompressionNone:
		return &parquet.Uncompressed
	default:
		return &snappy.Codec{}
	}
}

// Writer buffers OAIRecords and flushes them as batched Parquet files, one
// writer per snapshot, serialized internally (spec.md §4.2, §5).
type Writer struct {
	mu sync.Mutex

	fs      afero.Fs
	dir     string
	cfg     *config.Config
	metrics *metrics.Registry

	batchNum    int
	bufSize     int
	rows        []row
	initialized bool
	closed      bool
}

// Initialize creates the per-snapshot catalog directory and returns a ready
// Writer. recordsPerFile of 0 uses config.DefaultCatalogRecordsPerFile.
func Initialize(fs afero.Fs, basePath string, meta oai.SnapshotMeta, cfg *config.Config, reg *metrics.Registry) (*Writer, error) {
	dir := filepath.Join(oai.SnapshotBasePath(basePath, meta.Network.Acronym, meta.ID), catalogDirName)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, oai.StoreIOf("creating catalog dir %s: %v", dir, err)
	}
	if reg == nil {
		reg = metrics.Noop()
	}
	return &Writer{fs: fs, dir: dir, cfg: cfg, metrics: reg, initialized: true}, nil
}

func (w *Writer) recordsPerFile() int {
	if w.cfg != nil && w.cfg.Parquet.Catalog.RecordsPerFile > 0 {
		return w.cfg.Parquet.Catalog.RecordsPerFile
	}
	return config.DefaultCatalogRecordsPerFile
}

// WriteRecord buffers one record, validating required fields and
// auto-computing ID from Identifier via MD5 if missing (spec.md §4.2).
// Invalid records are skipped with a warning, not an error.
func (w *Writer) WriteRecord(r oai.OAIRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.initialized {
		log.Warn("catalog: writeRecord on uninitialized writer", "identifier", r.Identifier)
		return oai.StateErrorf("catalog writer not initialized")
	}
	if w.closed {
		return oai.StateErrorf("catalog writer closed")
	}

	if r.Identifier == "" {
		log.Warn("catalog: skipping record with empty identifier")
		return nil
	}
	r.Identifier = oai.TruncateIdentifier(r.Identifier)
	if r.ID == "" {
		r.ID = idOf(r.Identifier)
	}
	if r.OriginalMetadataHash == "" {
		log.Warn("catalog: skipping record missing original_metadata_hash", "identifier", r.Identifier)
		return nil
	}

	w.rows = append(w.rows, toRow(r))
	w.metrics.CatalogRecordsWritten.Inc()

	if len(w.rows) >= w.recordsPerFile() {
		return w.flushLocked()
	}
	return nil
}

// Flush closes the current file if non-empty; it does not preallocate a
// new writer (spec.md §4.2).
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if len(w.rows) == 0 {
		return nil
	}

	w.batchNum++
	name := fmt.Sprintf(batchFilePattern, w.batchNum)
	dest := filepath.Join(w.dir, name)
	tmp := dest + ".tmp"

	f, err := w.fs.Create(tmp)
	if err != nil {
		return oai.StoreIOf("creating batch file %s: %v", name, err)
	}

	pw := parquet.NewGenericWriter[row](f,
		parquet.Schema(catalogSchema),
		parquet.Compression(compressionCodec(w.compression())),
	)
	if _, err := pw.Write(w.rows); err != nil {
		_ = pw.Close()
		_ = f.Close()
		_ = w.fs.Remove(tmp)
		return oai.StoreIOf("writing batch %s: %v", name, err)
	}
	if err := pw.Close(); err != nil {
		_ = f.Close()
		_ = w.fs.Remove(tmp)
		return oai.StoreIOf("closing batch writer %s: %v", name, err)
	}
	if err := f.Close(); err != nil {
		_ = w.fs.Remove(tmp)
		return oai.StoreIOf("closing batch file %s: %v", name, err)
	}
	// Readers only ever see the final name, never a partially written
	// file (spec.md §4.2, §5).
	if err := w.fs.Rename(tmp, dest); err != nil {
		return oai.StoreIOf("publishing batch %s: %v", name, err)
	}

	w.metrics.CatalogBatchesFlushed.Inc()
	w.rows = w.rows[:0]
	return nil
}

func (w *Writer) compression() config.Compression {
	if w.cfg != nil {
		return w.cfg.Parquet.Compression
	}
	return config.CompressionSnappy
}

// Finalize flushes and closes the writer. Finalizing an uninitialized
// writer is a no-op (spec.md §7).
func (w *Writer) Finalize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.initialized {
		log.Warn("catalog: finalize on uninitialized writer, no-op")
		return nil
	}
	if w.closed {
		return nil
	}
	if err := w.flushLocked(); err != nil {
		return err
	}
	w.closed = true
	return nil
}

// Delete removes all catalog files for the snapshot; it does not touch
// validation files (spec.md §4.2).
func Delete(fs afero.Fs, basePath string, acronym string, snapshotID int64) error {
	dir := filepath.Join(oai.SnapshotBasePath(basePath, acronym, snapshotID), catalogDirName)
	if err := fs.RemoveAll(dir); err != nil {
		return oai.StoreIOf("deleting catalog dir %s: %v", dir, err)
	}
	return nil
}

func idOf(identifier string) string {
	return blobstore.RecordID(identifier)
}
