// Package snapshotstore is the authoritative source of truth for snapshot
// state, counters, timestamps, and queries (spec.md §4.5). It holds the
// in-memory snapshot table and mirrors each row to metadata.json on
// flush/phase boundaries (SPEC_FULL.md §12).
package snapshotstore

import (
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/lareferencia/lareferencia-core-lib-sub002/config"
	"github.com/lareferencia/lareferencia-core-lib-sub002/log"
	"github.com/lareferencia/lareferencia-core-lib-sub002/metrics"
	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// autoflushThreshold is the "autoflush-after-N-updates" discipline of
// spec.md §4.5; an explicit Flush is still required at phase boundaries.
const autoflushThreshold = 100

// Store is a lock-protected owned map of snapshot rows, one per
// (networkId, snapshotId), mirroring the teacher's pattern for the global
// hash map of open writers (spec.md §9: "model as a lock-protected owned
// map").
type Store struct {
	mu sync.Mutex

	fs       afero.Fs
	basePath string
	cfg      *config.Config
	metrics  *metrics.Registry

	snapshots map[int64]*oai.SnapshotMeta
	previous  map[int64]int64 // snapshotId -> previousSnapshotId
	nextID    int64
	dirty     map[int64]int // pending update count since last flush, per snapshot
}

// New constructs an empty Store rooted at basePath.
func New(fs afero.Fs, basePath string, cfg *config.Config, reg *metrics.Registry) *Store {
	if reg == nil {
		reg = metrics.Noop()
	}
	return &Store{
		fs:        fs,
		basePath:  basePath,
		cfg:       cfg,
		metrics:   reg,
		snapshots: map[int64]*oai.SnapshotMeta{},
		previous:  map[int64]int64{},
		dirty:     map[int64]int{},
	}
}

func (s *Store) get(id int64) (*oai.SnapshotMeta, error) {
	m, ok := s.snapshots[id]
	if !ok {
		return nil, oai.NotFoundf("snapshot %d", id)
	}
	return m, nil
}

// CreateSnapshot inserts a new row with startTime=now and no status yet
// (the implicit pre-HARVESTING state of spec.md §4.5's transition table);
// the caller transitions it with StartHarvesting.
func (s *Store) CreateSnapshot(network oai.NetworkInfo) (*oai.SnapshotMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	meta := &oai.SnapshotMeta{
		ID:        id,
		Network:   network,
		StartTime: time.Now(),
	}
	s.snapshots[id] = meta
	if err := s.persistLocked(meta); err != nil {
		return nil, err
	}
	return cloneMeta(meta), nil
}

// StartHarvesting transitions any state to HARVESTING (spec.md §4.5).
func (s *Store) StartHarvesting(id int64) error {
	return s.transition(id, func(m *oai.SnapshotMeta) {
		m.Status = oai.StatusHarvesting
		m.StartTime = time.Now()
	})
}

// UpdateHarvesting checkpoints a HARVESTING snapshot's endTime without
// changing state (spec.md §4.5).
func (s *Store) UpdateHarvesting(id int64) error {
	return s.transitionFrom(id, oai.StatusHarvesting, func(m *oai.SnapshotMeta) {
		m.EndTime = time.Now()
	})
}

// FinishHarvesting transitions HARVESTING to HARVESTING_FINISHED_VALID.
func (s *Store) FinishHarvesting(id int64) error {
	return s.transitionFrom(id, oai.StatusHarvesting, func(m *oai.SnapshotMeta) {
		m.Status = oai.StatusHarvestingFinishedValid
		m.EndTime = time.Now()
	})
}

// StartValidation transitions HARVESTING_FINISHED_VALID to VALID; there is
// no separate VALIDATING state (spec.md §4.5 footnote 1).
func (s *Store) StartValidation(id int64) error {
	return s.transitionFrom(id, oai.StatusHarvestingFinishedValid, func(m *oai.SnapshotMeta) {
		m.Status = oai.StatusValid
	})
}

// FinishValidation checkpoints a VALID snapshot's endTime.
func (s *Store) FinishValidation(id int64) error {
	return s.transitionFrom(id, oai.StatusValid, func(m *oai.SnapshotMeta) {
		m.EndTime = time.Now()
	})
}

// MarkAsIndexed marks a VALID snapshot indexed, without changing status.
func (s *Store) MarkAsIndexed(id int64) error {
	return s.transitionFrom(id, oai.StatusValid, func(m *oai.SnapshotMeta) {
		m.IndexStatus = oai.IndexIndexed
	})
}

// MarkAsFailed transitions any state to HARVESTING_FINISHED_ERROR.
func (s *Store) MarkAsFailed(id int64) error {
	return s.transition(id, func(m *oai.SnapshotMeta) {
		m.Status = oai.StatusHarvestingFinishedError
		m.EndTime = time.Now()
	})
}

// MarkAsRetrying transitions any state to RETRYING.
func (s *Store) MarkAsRetrying(id int64) error {
	return s.transition(id, func(m *oai.SnapshotMeta) {
		m.Status = oai.StatusRetrying
	})
}

// MarkAsDeleted sets deleted=true without altering status (spec.md §4.5).
func (s *Store) MarkAsDeleted(id int64) error {
	return s.transition(id, func(m *oai.SnapshotMeta) {
		m.Deleted = true
	})
}

// transition applies mutate to any current state and autoflushes.
func (s *Store) transition(id int64, mutate func(*oai.SnapshotMeta)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.get(id)
	if err != nil {
		return err
	}
	mutate(m)
	return s.touchLocked(id, m)
}

// transitionFrom requires the current status to equal from before mutating.
func (s *Store) transitionFrom(id int64, from oai.SnapshotStatus, mutate func(*oai.SnapshotMeta)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.get(id)
	if err != nil {
		return err
	}
	if m.Status != from {
		return oai.StateErrorf("snapshot %d: expected status %s, got %s", id, from, m.Status)
	}
	mutate(m)
	return s.touchLocked(id, m)
}

// touchLocked counts a pending update toward the autoflush threshold and
// persists metadata.json once it's crossed (spec.md §4.5).
func (s *Store) touchLocked(id int64, m *oai.SnapshotMeta) error {
	s.dirty[id]++
	if s.dirty[id] < autoflushThreshold {
		return nil
	}
	return s.persistLocked(m)
}

// Flush persists a snapshot's row to metadata.json unconditionally; call
// at explicit phase boundaries (spec.md §4.5).
func (s *Store) Flush(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.get(id)
	if err != nil {
		return err
	}
	return s.persistLocked(m)
}

func (s *Store) persistLocked(m *oai.SnapshotMeta) error {
	s.dirty[m.ID] = 0
	if err := writeMetadataJSON(s.fs, s.basePath, m); err != nil {
		log.Warn("snapshotstore: failed to persist metadata.json", "snapshot_id", m.ID, "err", err)
		return err
	}
	return nil
}

// SeedNextID raises the next-assigned snapshot ID to at least id+1,
// allowing a long-lived process that restarts against an already
// populated basePath (e.g. the oaicore CLI, which builds a fresh Store
// per invocation) to avoid reissuing an ID already present on disk.
func (s *Store) SeedNextID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.nextID {
		s.nextID = id
	}
}

// Get returns a defensive copy of a snapshot's row.
func (s *Store) Get(id int64) (*oai.SnapshotMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return cloneMeta(m), nil
}

func cloneMeta(m *oai.SnapshotMeta) *oai.SnapshotMeta {
	cp := *m
	if m.PreviousSnapshotID != nil {
		v := *m.PreviousSnapshotID
		cp.PreviousSnapshotID = &v
	}
	return &cp
}
