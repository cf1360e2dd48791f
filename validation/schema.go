// Package validation implements the per-record validation fact stream and
// its lightweight projection (spec.md §4.3): a full Parquet stream with
// nested rule facts, plus a small overwrite-mode index used for fast
// status-filtered scans.
package validation

import (
	"github.com/parquet-go/parquet-go"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// factRow mirrors the nested rule_facts_list group of spec.md §6.
type factRow struct {
	RuleID            int32    `parquet:"rule_id"`
	ValidOccurrences   []string `parquet:"valid_occurrences,optional,list"`
	InvalidOccurrences []string `parquet:"invalid_occurrences,optional,list"`
	IsValid           bool     `parquet:"is_valid"`
}

// fullRow is the Parquet schema for validation/records_batch_{N}.parquet.
type fullRow struct {
	Identifier             string    `parquet:"identifier"`
	Datestamp              int64     `parquet:"datestamp"`
	RecordIsValid          bool      `parquet:"record_is_valid"`
	IsTransformed          bool      `parquet:"is_transformed"`
	PublishedMetadataHash  *string   `parquet:"published_metadata_hash,optional"`
	RuleFacts              []factRow `parquet:"rule_facts_list,optional,list"`
}

// indexRow is the Parquet schema for validation/validation_index.parquet —
// the rule-fact-free projection (spec.md §4.3, §6).
type indexRow struct {
	Identifier            string  `parquet:"identifier"`
	Datestamp             int64   `parquet:"datestamp"`
	RecordIsValid         bool    `parquet:"record_is_valid"`
	IsTransformed         bool    `parquet:"is_transformed"`
	PublishedMetadataHash *string `parquet:"published_metadata_hash,optional"`
}

func toFullRow(r oai.RecordValidation) fullRow {
	facts := make([]factRow, 0, len(r.RuleFacts))
	for _, f := range r.RuleFacts {
		facts = append(facts, factRow{
			RuleID:             f.RuleID,
			ValidOccurrences:   f.ValidOccurrences,
			InvalidOccurrences: f.InvalidOccurrences,
			IsValid:            f.IsValid,
		})
	}
	return fullRow{
		Identifier:            r.Identifier,
		Datestamp:             r.Datestamp,
		RecordIsValid:         r.RecordIsValid,
		IsTransformed:         r.IsTransformed,
		PublishedMetadataHash: r.PublishedMetadataHash,
		RuleFacts:             facts,
	}
}

func fromFullRow(r fullRow) oai.RecordValidation {
	facts := make([]oai.RuleFact, 0, len(r.RuleFacts))
	for _, f := range r.RuleFacts {
		facts = append(facts, oai.RuleFact{
			RuleID:             f.RuleID,
			ValidOccurrences:   f.ValidOccurrences,
			InvalidOccurrences: f.InvalidOccurrences,
			IsValid:            f.IsValid,
		})
	}
	return oai.RecordValidation{
		Identifier:            r.Identifier,
		Datestamp:             r.Datestamp,
		RecordIsValid:         r.RecordIsValid,
		IsTransformed:         r.IsTransformed,
		PublishedMetadataHash: r.PublishedMetadataHash,
		RuleFacts:             facts,
	}
}

func toIndexRow(r oai.RecordValidation) indexRow {
	return indexRow{
		Identifier:            r.Identifier,
		Datestamp:             r.Datestamp,
		RecordIsValid:         r.RecordIsValid,
		IsTransformed:         r.IsTransformed,
		PublishedMetadataHash: r.PublishedMetadataHash,
	}
}

func fromIndexRow(r indexRow) oai.LightweightRecord {
	return oai.LightweightRecord{
		Identifier:            r.Identifier,
		Datestamp:             r.Datestamp,
		RecordIsValid:         r.RecordIsValid,
		IsTransformed:         r.IsTransformed,
		PublishedMetadataHash: r.PublishedMetadataHash,
	}
}

var fullSchema = parquet.SchemaOf(fullRow{})
var indexSchema = parquet.SchemaOf(indexRow{})
