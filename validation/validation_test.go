package validation_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/lareferencia/lareferencia-core-lib-sub002/config"
	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
	"github.com/lareferencia/lareferencia-core-lib-sub002/validation"
)

func testMeta() oai.SnapshotMeta {
	return oai.SnapshotMeta{ID: 9, Network: oai.NetworkInfo{ID: 1, Acronym: "demo"}}
}

func strp(s string) *string { return &s }

func TestValidationWriteFullAndLightweightRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.Default()
	meta := testMeta()

	w, err := validation.Initialize(fs, "/data", meta, cfg, nil)
	require.NoError(t, err)

	records := []oai.RecordValidation{
		{
			Identifier: "oai:x:1", Datestamp: 1, RecordIsValid: true, IsTransformed: true,
			PublishedMetadataHash: strp("h1"),
			RuleFacts: []oai.RuleFact{
				{RuleID: 1, ValidOccurrences: []string{"a"}, IsValid: true},
			},
		},
		{
			Identifier: "oai:x:2", Datestamp: 2, RecordIsValid: false, IsTransformed: false,
			RuleFacts: []oai.RuleFact{
				{RuleID: 1, InvalidOccurrences: []string{"b"}, IsValid: false},
			},
		},
	}
	for _, r := range records {
		require.NoError(t, w.WriteRecord(r))
	}
	require.NoError(t, w.Finalize())

	full, err := validation.NewFullIterator(fs, "/data", meta.Network.Acronym, meta.ID)
	require.NoError(t, err)
	got, err := validation.CollectFull(full)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "oai:x:1", got[0].Identifier)
	require.True(t, got[0].RecordIsValid)
	require.Len(t, got[0].RuleFacts, 1)
	require.Equal(t, int32(1), got[0].RuleFacts[0].RuleID)

	lw, err := validation.LoadLightweightIndex(fs, "/data", meta.Network.Acronym, meta.ID, oai.StatusUntested)
	require.NoError(t, err)
	require.Len(t, lw, 2)

	validOnly, err := validation.LoadLightweightIndex(fs, "/data", meta.Network.Acronym, meta.ID, oai.StatusValidOnly)
	require.NoError(t, err)
	require.Len(t, validOnly, 1)
	require.Equal(t, "oai:x:1", validOnly[0].Identifier)

	invalidOnly, err := validation.LoadLightweightIndex(fs, "/data", meta.Network.Acronym, meta.ID, oai.StatusInvalidOnly)
	require.NoError(t, err)
	require.Len(t, invalidOnly, 1)
	require.Equal(t, "oai:x:2", invalidOnly[0].Identifier)
}

func TestValidationIndexOverwritesNotAppends(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.Default()
	cfg.Parquet.Validation.RecordsPerFile = 1 // force a batch flush per record
	meta := testMeta()

	w, err := validation.Initialize(fs, "/data", meta, cfg, nil)
	require.NoError(t, err)

	require.NoError(t, w.WriteRecord(oai.RecordValidation{Identifier: "oai:x:1", RecordIsValid: true}))
	require.NoError(t, w.WriteRecord(oai.RecordValidation{Identifier: "oai:x:2", RecordIsValid: true}))
	require.NoError(t, w.Finalize())

	// Two batch flushes happened, but the index must reflect both records
	// exactly once each, not accumulate duplicate rows per flush.
	lw, err := validation.LoadLightweightIndex(fs, "/data", meta.Network.Acronym, meta.ID, oai.StatusUntested)
	require.NoError(t, err)
	require.Len(t, lw, 2)

	dir := "/data/DEMO/snapshots/snapshot_9/validation"
	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)

	batchFiles := 0
	for _, e := range entries {
		if e.Name() == "validation_index.parquet" || e.Name() == "validation_stats.json" {
			continue
		}
		batchFiles++
	}
	require.Equal(t, 2, batchFiles)
}

func TestValidationStatsPersistedOnFlush(t *testing.T) {
	fs := afero.NewMemMapFs()
	meta := testMeta()
	w, err := validation.Initialize(fs, "/data", meta, config.Default(), nil)
	require.NoError(t, err)

	require.NoError(t, w.WriteRecord(oai.RecordValidation{Identifier: "oai:x:1", RecordIsValid: true, IsTransformed: true}))
	require.NoError(t, w.WriteRecord(oai.RecordValidation{Identifier: "oai:x:2", RecordIsValid: false}))
	require.NoError(t, w.Finalize())

	stats, err := validation.LoadStats(fs, "/data", meta.Network.Acronym, meta.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalRecords)
	require.Equal(t, int64(1), stats.ValidRecords)
	require.Equal(t, int64(1), stats.TransformedRecords)
}

func TestValidationFinalizeUninitializedIsNoop(t *testing.T) {
	w := &validation.Writer{}
	require.NoError(t, w.Finalize())
}

func TestValidationDeleteRemovesFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	meta := testMeta()
	w, err := validation.Initialize(fs, "/data", meta, config.Default(), nil)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(oai.RecordValidation{Identifier: "oai:x:1", RecordIsValid: true}))
	require.NoError(t, w.Finalize())

	require.NoError(t, validation.Delete(fs, "/data", meta.Network.Acronym, meta.ID))

	lw, err := validation.LoadLightweightIndex(fs, "/data", meta.Network.Acronym, meta.ID, oai.StatusUntested)
	require.NoError(t, err)
	require.Empty(t, lw)
}

// TestFullIteratorOrdersBatchesPastTenNumerically writes enough
// single-record batches to cross the 9/10 boundary where an unpadded "%d"
// batch number would sort lexicographically out of numeric write order,
// confirming the zero-padded filename keeps FullIterator in write order.
func TestFullIteratorOrdersBatchesPastTenNumerically(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.Default()
	cfg.Parquet.Validation.RecordsPerFile = 1
	meta := testMeta()

	const n = 12
	w, err := validation.Initialize(fs, "/data", meta, cfg, nil)
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		require.NoError(t, w.WriteRecord(oai.RecordValidation{
			Identifier: "oai:x:" + string(rune('a'+i)), Datestamp: int64(i), RecordIsValid: true,
		}))
	}
	require.NoError(t, w.Finalize())

	full, err := validation.NewFullIterator(fs, "/data", meta.Network.Acronym, meta.ID)
	require.NoError(t, err)
	got, err := validation.CollectFull(full)
	require.NoError(t, err)
	require.Len(t, got, n)
	for i, r := range got {
		require.Equal(t, int64(i+1), r.Datestamp)
	}
}

func TestBuildStatsAggregatesPerRuleCounts(t *testing.T) {
	records := []oai.RecordValidation{
		{Identifier: "oai:x:1", RecordIsValid: true, RuleFacts: []oai.RuleFact{{RuleID: 1, IsValid: true}, {RuleID: 2, IsValid: false}}},
		{Identifier: "oai:x:2", RecordIsValid: false, RuleFacts: []oai.RuleFact{{RuleID: 1, IsValid: false}}},
	}
	s := validation.BuildStats(records)
	require.Equal(t, int64(2), s.TotalRecords)
	require.Equal(t, int64(1), s.ValidRecords)
	require.Equal(t, int64(1), s.PerRuleValid[1])
	require.Equal(t, int64(1), s.PerRuleInvalid[1])
	require.Equal(t, int64(1), s.PerRuleInvalid[2])
}
