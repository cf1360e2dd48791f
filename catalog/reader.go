package catalog

import (
	"context"
	"io"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// concurrentReadLimit bounds how many batch files CollectConcurrent opens
// at once, mirroring blobstore.FSStore.ForEachHash's fan-out cap.
const concurrentReadLimit = 8

// Iterator is a fresh, independent forward-only scan over every batch file
// of a snapshot's catalog (spec.md §4.2). Each batch is fully read into
// memory on demand and released before the next; no file handle is held
// across the boundary, and multiple Iterators over the same snapshot may
// run concurrently (spec.md §5).
type Iterator struct {
	fs    afero.Fs
	files []string

	fileIdx int
	buf     []oai.OAIRecord
	bufIdx  int
	err     error
}

// NewIterator discovers all oai_records_batch_*.parquet files for a
// snapshot, ordered lexicographically (which coincides with write order).
func NewIterator(fs afero.Fs, basePath, acronym string, snapshotID int64) (*Iterator, error) {
	dir := filepath.Join(oai.SnapshotBasePath(basePath, acronym, snapshotID), catalogDirName)

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if osIsNotExistLike(err) {
			return &Iterator{fs: fs}, nil // no catalog yet: empty iterator, not an error
		}
		return nil, oai.StoreIOf("reading catalog dir %s: %v", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	return &Iterator{fs: fs, files: files}, nil
}

func osIsNotExistLike(err error) bool {
	return err != nil // afero surfaces *PathError; any dir-open error here means "nothing written yet"
}

// Next advances the iterator, returning (record, true) or (zero, false) at
// end of stream. Check Err() after Next returns false.
func (it *Iterator) Next() (oai.OAIRecord, bool) {
	for {
		if it.bufIdx < len(it.buf) {
			r := it.buf[it.bufIdx]
			it.bufIdx++
			return r, true
		}
		if it.fileIdx >= len(it.files) {
			return oai.OAIRecord{}, false
		}
		if err := it.loadFile(it.files[it.fileIdx]); err != nil {
			it.err = err
			return oai.OAIRecord{}, false
		}
		it.fileIdx++
		it.bufIdx = 0
	}
}

func (it *Iterator) loadFile(path string) error {
	records, err := readBatchFile(it.fs, path)
	if err != nil {
		return err
	}
	it.buf = records
	return nil
}

// readBatchFile decodes one oai_records_batch_*.parquet file in full.
func readBatchFile(fs afero.Fs, path string) ([]oai.OAIRecord, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, oai.StoreIOf("opening batch %s: %v", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, oai.StoreIOf("stat batch %s: %v", path, err)
	}

	pf, err := parquet.OpenFile(readerAt{f}, info.Size())
	if err != nil {
		return nil, oai.ParseErrorf("opening parquet batch %s: %v", path, err)
	}

	reader := parquet.NewGenericReader[row](pf)
	defer reader.Close()

	rows := make([]row, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, oai.ParseErrorf("reading parquet batch %s: %v", path, err)
	}

	records := make([]oai.OAIRecord, n)
	for i := 0; i < n; i++ {
		records[i] = fromRow(rows[i])
	}
	return records, nil
}

// Err returns the first error encountered during iteration, if any.
func (it *Iterator) Err() error { return it.err }

// readerAt adapts afero.File (io.Reader + io.Seeker) to io.ReaderAt, which
// parquet.OpenFile requires for random access into row groups.
type readerAt struct {
	f afero.File
}

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	if _, err := r.f.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(r.f, p)
}

// Collect drains the iterator into a slice, for callers that want the full
// in-order set (mirrors the teacher-style "load everything, work in
// memory" pattern used by the validation lightweight index load).
func Collect(it *Iterator) ([]oai.OAIRecord, error) {
	var out []oai.OAIRecord
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, r)
	}
	return out, it.Err()
}

// CollectConcurrent loads every batch file of a snapshot's catalog with up
// to concurrentReadLimit files decoded in parallel (spec.md §5 allows
// concurrent readers over the same snapshot), reassembling the result in
// write order. Intended for bulk consumers like
// snapshotstore.CopyFromPrevious where per-record streaming isn't needed
// and decode time dominates.
func CollectConcurrent(ctx context.Context, fs afero.Fs, basePath, acronym string, snapshotID int64) ([]oai.OAIRecord, error) {
	dir := filepath.Join(oai.SnapshotBasePath(basePath, acronym, snapshotID), catalogDirName)
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if osIsNotExistLike(err) {
			return nil, nil
		}
		return nil, oai.StoreIOf("reading catalog dir %s: %v", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	batches := make([][]oai.OAIRecord, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrentReadLimit)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			records, err := readBatchFile(fs, path)
			if err != nil {
				return err
			}
			batches[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []oai.OAIRecord
	for _, b := range batches {
		out = append(out, b...)
	}
	return out, nil
}
