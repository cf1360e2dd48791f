package query

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// RuleIndex precomputes, per rule ID, the set of record positions (within
// a given cached list) where that rule was satisfied/violated, as
// compressed bitmaps. It backs both the invalid_rules/valid_rules filter
// predicates and calculateRuleOccurrences without re-scanning every
// record's fact list per query.
type RuleIndex struct {
	validPositions   map[int32]*roaring.Bitmap
	invalidPositions map[int32]*roaring.Bitmap
}

// BuildRuleIndex scans records once and builds the per-rule position
// bitmaps.
func BuildRuleIndex(records []oai.RecordValidation) *RuleIndex {
	idx := &RuleIndex{
		validPositions:   map[int32]*roaring.Bitmap{},
		invalidPositions: map[int32]*roaring.Bitmap{},
	}
	for pos, r := range records {
		for _, f := range r.RuleFacts {
			if f.IsValid {
				idx.bitmapFor(idx.validPositions, f.RuleID).Add(uint32(pos))
			} else {
				idx.bitmapFor(idx.invalidPositions, f.RuleID).Add(uint32(pos))
			}
		}
	}
	return idx
}

func (idx *RuleIndex) bitmapFor(m map[int32]*roaring.Bitmap, ruleID int32) *roaring.Bitmap {
	bm, ok := m[ruleID]
	if !ok {
		bm = roaring.New()
		m[ruleID] = bm
	}
	return bm
}

// matchesAny reports whether position pos is set in the union of the
// bitmaps for any of ruleIDs within the given side (valid or invalid).
func (idx *RuleIndex) matchesAny(side map[int32]*roaring.Bitmap, ruleIDs []int32, pos int) bool {
	for _, id := range ruleIDs {
		if bm, ok := side[id]; ok && bm.Contains(uint32(pos)) {
			return true
		}
	}
	return false
}

// RuleOccurrences is the {valid, invalid} histogram shape of
// calculateRuleOccurrences (spec.md §4.4).
type RuleOccurrences struct {
	Valid   map[string]int
	Invalid map[string]int
}

// CalculateRuleOccurrences histograms the occurrence strings recorded for
// ruleID across records, restricted to the positions that also satisfy
// filter (spec.md §4.4 scenario S5).
func CalculateRuleOccurrences(records []oai.RecordValidation, ruleID int32, filter Filter) RuleOccurrences {
	out := RuleOccurrences{Valid: map[string]int{}, Invalid: map[string]int{}}
	idx := BuildRuleIndex(records)
	for pos, r := range records {
		if !Matches(r, pos, idx, filter) {
			continue
		}
		for _, f := range r.RuleFacts {
			if f.RuleID != ruleID {
				continue
			}
			if f.IsValid {
				for _, v := range f.ValidOccurrences {
					out.Valid[v]++
				}
			} else {
				for _, v := range f.InvalidOccurrences {
					out.Invalid[v]++
				}
			}
		}
	}
	return out
}
