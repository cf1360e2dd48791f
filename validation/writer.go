package validation

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/gzip"
	"github.com/parquet-go/parquet-go/compress/snappy"
	"github.com/spf13/afero"

	"github.com/lareferencia/lareferencia-core-lib-sub002/config"
	"github.com/lareferencia/lareferencia-core-lib-sub002/log"
	"github.com/lareferencia/lareferencia-core-lib-sub002/metrics"
	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

const validationDirName = "validation"
// Zero-padded so lexicographic and numeric ordering coincide past batch 9
// (spec.md §4.3, §5: readers order batch files lexicographically, and that
// must equal write-insertion order at any validation set size).
const fullBatchFilePattern = "records_batch_%08d.parquet"
const indexFileName = "validation_index.parquet"

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

// Writer appends full RecordValidations to batched Parquet files while
// maintaining an in-memory lightweight projection that is rewritten whole
// on every flush (spec.md §4.3).
type Writer struct {
	mu sync.Mutex

	fs      afero.Fs
	dir     string
	cfg     *config.Config
	metrics *metrics.Registry

	batchNum    int
	fullRows    []fullRow
	indexRows   []indexRow
	initialized bool
	closed      bool
}

// Initialize creates the per-snapshot validation directory and returns a
// ready Writer.
func Initialize(fs afero.Fs, basePath string, meta oai.SnapshotMeta, cfg *config.Config, reg *metrics.Registry) (*Writer, error) {
	dir := filepath.Join(oai.SnapshotBasePath(basePath, meta.Network.Acronym, meta.ID), validationDirName)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, oai.StoreIOf("creating validation dir %s: %v", dir, err)
	}
	if reg == nil {
		reg = metrics.Noop()
	}
	return &Writer{fs: fs, dir: dir, cfg: cfg, metrics: reg, initialized: true}, nil
}

func (w *Writer) recordsPerFile() int {
	if w.cfg != nil && w.cfg.Parquet.Validation.RecordsPerFile > 0 {
		return w.cfg.Parquet.Validation.RecordsPerFile
	}
	return config.DefaultValidationRecordsPerFile
}

func (w *Writer) compression() config.Compression {
	if w.cfg != nil {
		return w.cfg.Parquet.Compression
	}
	return config.CompressionSnappy
}

// WriteRecord appends one RecordValidation to the full stream and buffers
// its lightweight projection. The batch flushes automatically once it
// reaches the configured threshold; the index is rewritten on every flush
// a batch triggers (spec.md §4.3).
func (w *Writer) WriteRecord(r oai.RecordValidation) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.initialized {
		return oai.StateErrorf("validation writer not initialized")
	}
	if w.closed {
		return oai.StateErrorf("validation writer closed")
	}
	if r.Identifier == "" {
		log.Warn("validation: skipping record with empty identifier")
		return nil
	}

	w.fullRows = append(w.fullRows, toFullRow(r))
	w.indexRows = append(w.indexRows, toIndexRow(r))
	w.metrics.ValidationRecordsWritten.Inc()

	if len(w.fullRows) >= w.recordsPerFile() {
		return w.flushLocked()
	}
	return nil
}

// Flush flushes the current full-stream batch (if non-empty) and always
// rewrites the index file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if len(w.fullRows) > 0 {
		if err := w.flushFullBatchLocked(); err != nil {
			return err
		}
	}
	if err := w.writeIndexLocked(); err != nil {
		return err
	}
	return w.writeStatsLocked()
}

func (w *Writer) flushFullBatchLocked() error {
	w.batchNum++
	name := fmt.Sprintf(fullBatchFilePattern, w.batchNum)
	dest := filepath.Join(w.dir, name)
	tmp := dest + ".tmp"

	f, err := w.fs.Create(tmp)
	if err != nil {
		return oai.StoreIOf("creating validation batch %s: %v", name, err)
	}

	pw := parquet.NewGenericWriter[fullRow](f,
		parquet.Schema(fullSchema),
		parquet.Compression(compressionCodec(w.compression())),
	)
	if _, err := pw.Write(w.fullRows); err != nil {
		_ = pw.Close()
		_ = f.Close()
		_ = w.fs.Remove(tmp)
		return oai.StoreIOf("writing validation batch %s: %v", name, err)
	}
	if err := pw.Close(); err != nil {
		_ = f.Close()
		_ = w.fs.Remove(tmp)
		return oai.StoreIOf("closing validation batch writer %s: %v", name, err)
	}
	if err := f.Close(); err != nil {
		_ = w.fs.Remove(tmp)
		return oai.StoreIOf("closing validation batch file %s: %v", name, err)
	}
	if err := w.fs.Rename(tmp, dest); err != nil {
		return oai.StoreIOf("publishing validation batch %s: %v", name, err)
	}

	w.fullRows = w.fullRows[:0]
	return nil
}

// writeIndexLocked rewrites validation_index.parquet from the full
// accumulated set of indexRows seen so far (overwrite mode, spec.md §4.3).
func (w *Writer) writeIndexLocked() error {
	dest := filepath.Join(w.dir, indexFileName)
	tmp := dest + ".tmp"

	f, err := w.fs.Create(tmp)
	if err != nil {
		return oai.StoreIOf("creating validation index: %v", err)
	}

	iw := parquet.NewGenericWriter[indexRow](f,
		parquet.Schema(indexSchema),
		parquet.Compression(compressionCodec(w.compression())),
	)
	if _, err := iw.Write(w.indexRows); err != nil {
		_ = iw.Close()
		_ = f.Close()
		_ = w.fs.Remove(tmp)
		return oai.StoreIOf("writing validation index: %v", err)
	}
	if err := iw.Close(); err != nil {
		_ = f.Close()
		_ = w.fs.Remove(tmp)
		return oai.StoreIOf("closing validation index writer: %v", err)
	}
	if err := f.Close(); err != nil {
		_ = w.fs.Remove(tmp)
		return oai.StoreIOf("closing validation index file: %v", err)
	}
	if err := w.fs.Rename(tmp, dest); err != nil {
		return oai.StoreIOf("publishing validation index: %v", err)
	}

	w.metrics.ValidationIndexFlushes.Inc()
	return nil
}

// Finalize flushes (batch + index) and closes the writer. Finalizing an
// uninitialized writer is a no-op.
func (w *Writer) Finalize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.initialized {
		log.Warn("validation: finalize on uninitialized writer, no-op")
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

// Delete removes all validation files (full batches, index, stats) for the
// snapshot.
func Delete(fs afero.Fs, basePath, acronym string, snapshotID int64) error {
	dir := filepath.Join(oai.SnapshotBasePath(basePath, acronym, snapshotID), validationDirName)
	if err := fs.RemoveAll(dir); err != nil {
		return oai.StoreIOf("deleting validation dir %s: %v", dir, err)
	}
	return nil
}
