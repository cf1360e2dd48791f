package snapshotstore

import "github.com/lareferencia/lareferencia-core-lib-sub002/oai"

// ListSnapshotIDs returns every snapshot id for networkID, optionally
// including deleted rows (spec.md §4.5 `listSnapshotsIds`).
func (s *Store) ListSnapshotIDs(networkID int64, includeDeleted bool) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for id, m := range s.snapshots {
		if m.Network.ID != networkID {
			continue
		}
		if m.Deleted && !includeDeleted {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// FindLastGoodKnownSnapshot returns the most recent non-deleted VALID
// snapshot for networkID by maximal endTime, or nil if none exists
// (spec.md §4.5, §8 invariant #8).
func (s *Store) FindLastGoodKnownSnapshot(networkID int64) *oai.SnapshotMeta {
	return s.findLatestMatching(networkID, func(m *oai.SnapshotMeta) bool {
		return !m.Deleted && m.Status == oai.StatusValid
	})
}

// FindLastHarvestingSnapshot returns the most recent non-deleted snapshot
// whose status is VALID or HARVESTING_FINISHED_VALID (spec.md §4.5).
func (s *Store) FindLastHarvestingSnapshot(networkID int64) *oai.SnapshotMeta {
	return s.findLatestMatching(networkID, func(m *oai.SnapshotMeta) bool {
		return !m.Deleted && (m.Status == oai.StatusValid || m.Status == oai.StatusHarvestingFinishedValid)
	})
}

func (s *Store) findLatestMatching(networkID int64, pred func(*oai.SnapshotMeta) bool) *oai.SnapshotMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *oai.SnapshotMeta
	for _, m := range s.snapshots {
		if m.Network.ID != networkID || !pred(m) {
			continue
		}
		if best == nil || m.EndTime.After(best.EndTime) {
			best = m
		}
	}
	if best == nil {
		return nil
	}
	return cloneMeta(best)
}

// GetPreviousSnapshotID returns the linked previous snapshot id, if any.
func (s *Store) GetPreviousSnapshotID(id int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.previous[id]
	return prev, ok
}

// SetPreviousSnapshotID records the advisory previousSnapshotId linkage
// (spec.md §4.5, §9: "advisory in the source").
func (s *Store) SetPreviousSnapshotID(id, previousID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.get(id)
	if err != nil {
		return err
	}
	s.previous[id] = previousID
	v := previousID
	m.PreviousSnapshotID = &v
	return s.touchLocked(id, m)
}
