// Package catalog implements the append-only, batched, columnar OAI record
// catalog of spec.md §4.2: one Parquet stream per snapshot, written once
// and read forward-only.
package catalog

import (
	"github.com/parquet-go/parquet-go"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

// row is the Parquet schema for a catalog entry (spec.md §6):
//
//	id: UTF8
//	identifier: UTF8
//	datestamp: INT64
//	original_metadata_hash: UTF8
//	deleted: BOOLEAN
type row struct {
	ID                   string `parquet:"id"`
	Identifier           string `parquet:"identifier"`
	Datestamp            int64  `parquet:"datestamp"`
	OriginalMetadataHash string `parquet:"original_metadata_hash"`
	Deleted              bool   `parquet:"deleted"`
}

func toRow(r oai.OAIRecord) row {
	return row{
		ID:                   r.ID,
		Identifier:           r.Identifier,
		Datestamp:            r.Datestamp,
		OriginalMetadataHash: r.OriginalMetadataHash,
		Deleted:              r.Deleted,
	}
}

func fromRow(r row) oai.OAIRecord {
	return oai.OAIRecord{
		ID:                   r.ID,
		Identifier:           r.Identifier,
		Datestamp:            r.Datestamp,
		OriginalMetadataHash: r.OriginalMetadataHash,
		Deleted:              r.Deleted,
	}
}

var catalogSchema = parquet.SchemaOf(row{})
