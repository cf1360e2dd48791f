package snapshotstore

import (
	"strconv"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// IncrementSize increments a snapshot's size counter by 1 (spec.md §4.5
// `incrementSize`).
func (s *Store) IncrementSize(id int64) error {
	return s.adjustCounters(id, func(m *counterTarget) { m.Size++ })
}

// IncrementSnapshotSizeBy increments a snapshot's size counter by n.
func (s *Store) IncrementSnapshotSizeBy(id int64, n int64) error {
	return s.adjustCounters(id, func(m *counterTarget) { m.Size += n })
}

// IncrementValidSize increments validSize by 1.
func (s *Store) IncrementValidSize(id int64) error {
	return s.adjustCounters(id, func(m *counterTarget) { m.ValidSize++ })
}

// DecrementValidSize decrements validSize by 1, floored at 0.
func (s *Store) DecrementValidSize(id int64) error {
	return s.adjustCounters(id, func(m *counterTarget) {
		if m.ValidSize > 0 {
			m.ValidSize--
		}
	})
}

// IncrementTransformedSize increments transformedSize by 1.
func (s *Store) IncrementTransformedSize(id int64) error {
	return s.adjustCounters(id, func(m *counterTarget) { m.TransformedSize++ })
}

// DecrementTransformedSize decrements transformedSize by 1, floored at 0.
func (s *Store) DecrementTransformedSize(id int64) error {
	return s.adjustCounters(id, func(m *counterTarget) {
		if m.TransformedSize > 0 {
			m.TransformedSize--
		}
	})
}

// ResetSnapshotValidationCounts zeroes validSize and transformedSize and,
// per spec.md §3, forces status back to HARVESTING_FINISHED_VALID and
// indexStatus to UNKNOWN — a revalidation pass starts from a clean slate,
// so any prior VALID/INDEXED state it produced no longer applies. Unlike
// the other counters this mutates status directly through the lock rather
// than via adjustCounters/counterTarget, since that path exists precisely
// to keep counter bumps from flipping status.
func (s *Store) ResetSnapshotValidationCounts(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.get(id)
	if err != nil {
		return err
	}
	m.ValidSize = 0
	m.TransformedSize = 0
	m.Status = oai.StatusHarvestingFinishedValid
	m.IndexStatus = oai.IndexUnknown

	s.metrics.SnapshotValidSize.WithLabelValues(strconv.FormatInt(id, 10)).Set(0)
	s.metrics.SnapshotTransformedSize.WithLabelValues(strconv.FormatInt(id, 10)).Set(0)

	return s.touchLocked(id, m)
}

// counterTarget is the mutable subset of SnapshotMeta the counters API
// touches; kept distinct from the transition mutators above so counter
// updates never accidentally flip status (spec.md §4.5: counters are
// "safe under many concurrent writers through row-level locking").
type counterTarget struct {
	Size            int64
	ValidSize       int64
	TransformedSize int64
}

func (s *Store) adjustCounters(id int64, mutate func(*counterTarget)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.get(id)
	if err != nil {
		return err
	}
	ct := counterTarget{Size: m.Size, ValidSize: m.ValidSize, TransformedSize: m.TransformedSize}
	mutate(&ct)
	m.Size, m.ValidSize, m.TransformedSize = ct.Size, ct.ValidSize, ct.TransformedSize

	s.metrics.SnapshotSize.WithLabelValues(strconv.FormatInt(id, 10)).Set(float64(m.Size))
	s.metrics.SnapshotValidSize.WithLabelValues(strconv.FormatInt(id, 10)).Set(float64(m.ValidSize))
	s.metrics.SnapshotTransformedSize.WithLabelValues(strconv.FormatInt(id, 10)).Set(float64(m.TransformedSize))

	return s.touchLocked(id, m)
}
