package query

import "github.com/lareferencia/lareferencia-core-lib-sub002/oai"

// Matches reports whether record at position pos satisfies every
// constraint set on filter (conjunction, spec.md §4.4). idx may be nil if
// filter sets no rule constraints.
func Matches(r oai.RecordValidation, pos int, idx *RuleIndex, filter Filter) bool {
	if filter.RecordIsValid != nil && r.RecordIsValid != *filter.RecordIsValid {
		return false
	}
	if filter.RecordIsTransformed != nil && r.IsTransformed != *filter.RecordIsTransformed {
		return false
	}
	if filter.InvalidRules != nil && filter.InvalidRules.Cardinality() > 0 {
		if idx == nil || !idx.matchesAny(idx.invalidPositions, filter.InvalidRules.ToSlice(), pos) {
			return false
		}
	}
	if filter.ValidRules != nil && filter.ValidRules.Cardinality() > 0 {
		if idx == nil || !idx.matchesAny(idx.validPositions, filter.ValidRules.ToSlice(), pos) {
			return false
		}
	}
	return true
}

// FilterRecords returns the subset of records (with original positions
// preserved via a parallel index build) matching filter.
func FilterRecords(records []oai.RecordValidation, filter Filter) []oai.RecordValidation {
	idx := BuildRuleIndex(records)
	out := make([]oai.RecordValidation, 0, len(records))
	for pos, r := range records {
		if Matches(r, pos, idx, filter) {
			out = append(out, r)
		}
	}
	return out
}
