package query

import (
	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
	"github.com/lareferencia/lareferencia-core-lib-sub002/validation"
)

// BuildStats aggregates the filtered subset of records into the same
// Stats shape validation/ persists on flush (spec.md §4.4 `buildStats`).
func BuildStats(records []oai.RecordValidation, filter Filter) validation.Stats {
	return validation.BuildStats(FilterRecords(records, filter))
}
