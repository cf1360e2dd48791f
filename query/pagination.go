package query

import (
	"github.com/tidwall/btree"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// item is the ordering key for the pagination index: identifier-ascending,
// matching the catalog's own identifier-keyed addressing and giving
// pagination a deterministic order independent of cache-list iteration
// order (spec.md §8 invariant #5: repeated calls with no intervening
// writes return byte-identical pages).
type item struct {
	pos        int
	identifier string
}

// Page is the return shape of queryObservationsWithPagination (spec.md
// §4.4).
type Page struct {
	Records       []oai.RecordValidation
	TotalFiltered int
}

// QueryObservationsWithPagination filters records, orders the result
// identifier-ascending via an in-memory btree index, and slices out
// [offset, offset+limit). A non-positive limit returns every remaining
// record after offset.
func QueryObservationsWithPagination(records []oai.RecordValidation, filter Filter, offset, limit int) Page {
	filtered := FilterRecords(records, filter)

	tr := btree.NewBTreeG(func(a, b item) bool { return a.identifier < b.identifier })
	for i, r := range filtered {
		tr.Set(item{pos: i, identifier: r.Identifier})
	}

	ordered := make([]oai.RecordValidation, 0, len(filtered))
	tr.Scan(func(it item) bool {
		ordered = append(ordered, filtered[it.pos])
		return true
	})

	total := len(ordered)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return Page{Records: nil, TotalFiltered: total}
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return Page{Records: ordered[offset:end], TotalFiltered: total}
}

// ListByStatus streams the lightweight projection filtered by status
// (spec.md §4.4 `listByStatus`) — a thin filter over an already-loaded
// lightweight slice (validation.LoadLightweightIndex), not the full list.
func ListByStatus(records []oai.LightweightRecord, status oai.ValidationStatusFilter) []oai.LightweightRecord {
	if status == oai.StatusUntested {
		out := make([]oai.LightweightRecord, len(records))
		copy(out, records)
		return out
	}
	out := make([]oai.LightweightRecord, 0, len(records))
	for _, r := range records {
		if status == oai.StatusValidOnly && !r.RecordIsValid {
			continue
		}
		if status == oai.StatusInvalidOnly && r.RecordIsValid {
			continue
		}
		out = append(out, r)
	}
	return out
}
