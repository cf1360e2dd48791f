package validation

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/afero"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// FullIterator is a forward-only scan over every records_batch_*.parquet
// file of a snapshot's validation stream, rule facts included (spec.md
// §4.3, "used by analytics that need per-occurrence detail").
type FullIterator struct {
	fs    afero.Fs
	files []string

	fileIdx int
	buf     []oai.RecordValidation
	bufIdx  int
	err     error
}

// NewFullIterator discovers all full-stream batch files for a snapshot.
func NewFullIterator(fs afero.Fs, basePath, acronym string, snapshotID int64) (*FullIterator, error) {
	dir := filepath.Join(oai.SnapshotBasePath(basePath, acronym, snapshotID), validationDirName)
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return &FullIterator{fs: fs}, nil // no validation data yet: empty iterator
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !isFullBatchFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return &FullIterator{fs: fs, files: files}, nil
}

func isFullBatchFile(name string) bool {
	return len(name) > len("records_batch_") && name[:len("records_batch_")] == "records_batch_"
}

// Next advances the iterator, returning (record, true) or (zero, false) at
// end of stream.
func (it *FullIterator) Next() (oai.RecordValidation, bool) {
	for {
		if it.bufIdx < len(it.buf) {
			r := it.buf[it.bufIdx]
			it.bufIdx++
			return r, true
		}
		if it.fileIdx >= len(it.files) {
			return oai.RecordValidation{}, false
		}
		if err := it.loadFile(it.files[it.fileIdx]); err != nil {
			it.err = err
			return oai.RecordValidation{}, false
		}
		it.fileIdx++
		it.bufIdx = 0
	}
}

func (it *FullIterator) loadFile(path string) error {
	f, err := it.fs.Open(path)
	if err != nil {
		return oai.StoreIOf("opening validation batch %s: %v", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return oai.StoreIOf("stat validation batch %s: %v", path, err)
	}

	pf, err := parquet.OpenFile(readerAt{f}, info.Size())
	if err != nil {
		return oai.ParseErrorf("opening validation batch %s: %v", path, err)
	}

	reader := parquet.NewGenericReader[fullRow](pf)
	defer reader.Close()

	rows := make([]fullRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return oai.ParseErrorf("reading validation batch %s: %v", path, err)
	}

	it.buf = it.buf[:0]
	for i := 0; i < n; i++ {
		it.buf = append(it.buf, fromFullRow(rows[i]))
	}
	return nil
}

// Err returns the first error encountered during iteration, if any.
func (it *FullIterator) Err() error { return it.err }

// CollectFull drains a FullIterator into a slice.
func CollectFull(it *FullIterator) ([]oai.RecordValidation, error) {
	var out []oai.RecordValidation
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, r)
	}
	return out, it.Err()
}

// LoadLightweightIndex reads validation_index.parquet wholesale and filters
// in-memory by status (spec.md §4.3: "a projection load is offered as
// loadLightweightIndex(status) ... ~35 bytes per record"). Returns an empty
// slice, not an error, if no index has been flushed yet.
func LoadLightweightIndex(fs afero.Fs, basePath, acronym string, snapshotID int64, status oai.ValidationStatusFilter) ([]oai.LightweightRecord, error) {
	path := filepath.Join(oai.SnapshotBasePath(basePath, acronym, snapshotID), validationDirName, indexFileName)

	f, err := fs.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, oai.StoreIOf("stat validation index %s: %v", path, err)
	}

	pf, err := parquet.OpenFile(readerAt{f}, info.Size())
	if err != nil {
		return nil, oai.ParseErrorf("opening validation index %s: %v", path, err)
	}

	reader := parquet.NewGenericReader[indexRow](pf)
	defer reader.Close()

	rows := make([]indexRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, oai.ParseErrorf("reading validation index %s: %v", path, err)
	}

	out := make([]oai.LightweightRecord, 0, n)
	for i := 0; i < n; i++ {
		lr := fromIndexRow(rows[i])
		switch status {
		case oai.StatusValidOnly:
			if !lr.RecordIsValid {
				continue
			}
		case oai.StatusInvalidOnly:
			if lr.RecordIsValid {
				continue
			}
		}
		out = append(out, lr)
	}
	return out, nil
}

// readerAt adapts afero.File to io.ReaderAt for parquet.OpenFile's random
// access into row groups.
type readerAt struct {
	f afero.File
}

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	if _, err := r.f.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(r.f, p)
}
