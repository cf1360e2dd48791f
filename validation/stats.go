package validation

import (
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

const statsFileName = "validation_stats.json"

// Stats is the aggregate buildStats shape (spec.md §4.4), persisted as
// validation_stats.json on every flush (SPEC_FULL.md §12) so a cold process
// can report snapshot health without loading the full index.
type Stats struct {
	TotalRecords       int64           `json:"totalRecords"`
	ValidRecords       int64           `json:"validRecords"`
	TransformedRecords int64           `json:"transformedRecords"`
	PerRuleValid       map[int32]int64 `json:"perRuleValid"`
	PerRuleInvalid     map[int32]int64 `json:"perRuleInvalid"`
}

// BuildStats aggregates a slice of RecordValidations into a Stats value.
// Used by the query service over a cached, filtered list; the writer's
// persisted stats are computed separately by writeStatsLocked.
func BuildStats(records []oai.RecordValidation) Stats {
	s := Stats{PerRuleValid: map[int32]int64{}, PerRuleInvalid: map[int32]int64{}}
	for _, r := range records {
		s.TotalRecords++
		if r.RecordIsValid {
			s.ValidRecords++
		}
		if r.IsTransformed {
			s.TransformedRecords++
		}
		for _, f := range r.RuleFacts {
			if f.IsValid {
				s.PerRuleValid[f.RuleID]++
			} else {
				s.PerRuleInvalid[f.RuleID]++
			}
		}
	}
	return s
}

// writeStatsLocked mirrors the writer-lifetime lightweight buffer to
// validation_stats.json. Per-rule counts are left at zero here: the index
// buffer carries no rule facts, so only the full iterator (validation/)
// can produce those; the query service (spec.md §4.4) recomputes them
// from the cached full list when needed.
func (w *Writer) writeStatsLocked() error {
	s := Stats{PerRuleValid: map[int32]int64{}, PerRuleInvalid: map[int32]int64{}}
	for _, r := range w.indexRows {
		s.TotalRecords++
		if r.RecordIsValid {
			s.ValidRecords++
		}
		if r.IsTransformed {
			s.TransformedRecords++
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return oai.ParseErrorf("marshaling validation stats: %v", err)
	}

	dest := filepath.Join(w.dir, statsFileName)
	tmp := dest + ".tmp"
	if err := afero.WriteFile(w.fs, tmp, data, 0o644); err != nil {
		return oai.StoreIOf("writing validation stats: %v", err)
	}
	if err := w.fs.Rename(tmp, dest); err != nil {
		return oai.StoreIOf("publishing validation stats: %v", err)
	}
	return nil
}

// LoadStats reads a previously persisted validation_stats.json.
func LoadStats(fs afero.Fs, basePath, acronym string, snapshotID int64) (Stats, error) {
	path := filepath.Join(oai.SnapshotBasePath(basePath, acronym, snapshotID), validationDirName, statsFileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Stats{}, nil // not yet flushed: zero-value stats, not an error
	}
	var s Stats
	if err := json.Unmarshal(data, &s); err != nil {
		return Stats{}, oai.ParseErrorf("parsing validation stats %s: %v", path, err)
	}
	return s, nil
}
