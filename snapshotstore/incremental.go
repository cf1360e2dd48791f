package snapshotstore

import (
	"context"

	"github.com/lareferencia/lareferencia-core-lib-sub002/catalog"
	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
	"github.com/lareferencia/lareferencia-core-lib-sub002/validation"
)

// CopyFromPrevious implements the incremental-harvest copy of spec.md
// §4.5: non-deleted catalog records (and their validation facts, if any)
// are copied from previousID into newID, and size/validSize/
// transformedSize on the new snapshot are recomputed from the copied set.
//
// If the previous snapshot was cleaned (its catalog/validation files
// physically removed by CleanSnapshotData), its iterator is empty and
// this copies zero records rather than erroring — the deleted-previous
// case is a logical tombstone, not a failure (SPEC_FULL.md §13 decision 3).
func (s *Store) CopyFromPrevious(newMeta, previousMeta oai.SnapshotMeta) error {
	acronym := newMeta.Network.Acronym

	// The previous snapshot's batch files are independent and
	// order-insensitive here (kept is an identifier set, not a sequence),
	// so a concurrent bulk load dominated by Parquet decode time pays off
	// over the plain sequential Iterator (spec.md §5 permits concurrent
	// readers over the same snapshot).
	srcRecords, err := catalog.CollectConcurrent(context.Background(), s.fs, s.basePath, acronym, previousMeta.ID)
	if err != nil {
		return err
	}

	kept := make(map[string]bool, len(srcRecords))
	dstWriter, err := catalog.Initialize(s.fs, s.basePath, newMeta, s.cfg, s.metrics)
	if err != nil {
		return err
	}
	var copied int64
	for _, r := range srcRecords {
		if r.Deleted {
			continue
		}
		if err := dstWriter.WriteRecord(r); err != nil {
			return err
		}
		kept[r.Identifier] = true
		copied++
	}
	if err := dstWriter.Finalize(); err != nil {
		return err
	}

	validIt, err := validation.NewFullIterator(s.fs, s.basePath, acronym, previousMeta.ID)
	if err != nil {
		return err
	}
	validRecords, err := validation.CollectFull(validIt)
	if err != nil {
		return err
	}

	validWriter, err := validation.Initialize(s.fs, s.basePath, newMeta, s.cfg, s.metrics)
	if err != nil {
		return err
	}
	var validCount, transformedCount int64
	for _, v := range validRecords {
		if !kept[v.Identifier] {
			continue
		}
		if err := validWriter.WriteRecord(v); err != nil {
			return err
		}
		if v.RecordIsValid {
			validCount++
		}
		if v.IsTransformed {
			transformedCount++
		}
	}
	if err := validWriter.Finalize(); err != nil {
		return err
	}

	if err := s.ResetSnapshotValidationCounts(newMeta.ID); err != nil {
		return err
	}
	if err := s.IncrementSnapshotSizeBy(newMeta.ID, copied); err != nil {
		return err
	}
	for i := int64(0); i < validCount; i++ {
		if err := s.IncrementValidSize(newMeta.ID); err != nil {
			return err
		}
	}
	for i := int64(0); i < transformedCount; i++ {
		if err := s.IncrementTransformedSize(newMeta.ID); err != nil {
			return err
		}
	}
	return s.SetPreviousSnapshotID(newMeta.ID, previousMeta.ID)
}

// CleanSnapshotData implements spec.md §4.5 `cleanSnapshotData`: if the
// snapshot is VALID or HARVESTING_FINISHED_VALID, it becomes a logical
// tombstone (deleted=true, row retained); otherwise the row is physically
// removed. In both cases catalog and validation data on disk are deleted.
func (s *Store) CleanSnapshotData(id int64) error {
	s.mu.Lock()
	m, err := s.get(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	acronym := m.Network.Acronym
	retain := m.Status == oai.StatusValid || m.Status == oai.StatusHarvestingFinishedValid
	s.mu.Unlock()

	if err := catalog.Delete(s.fs, s.basePath, acronym, id); err != nil {
		return err
	}
	if err := validation.Delete(s.fs, s.basePath, acronym, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, err = s.get(id)
	if err != nil {
		return err
	}
	if retain {
		m.Deleted = true
		return s.touchLocked(id, m)
	}
	delete(s.snapshots, id)
	delete(s.previous, id)
	delete(s.dirty, id)
	return nil
}
