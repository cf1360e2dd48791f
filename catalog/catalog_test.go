package catalog_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/lareferencia/lareferencia-core-lib-sub002/catalog"
	"github.com/lareferencia/lareferencia-core-lib-sub002/config"
	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

func testMeta() oai.SnapshotMeta {
	return oai.SnapshotMeta{ID: 7, Network: oai.NetworkInfo{ID: 1, Acronym: "demo"}}
}

// TestCatalogWriteIterateInsertionOrder covers scenario S2 of spec.md §8:
// three records written in order are read back in the same order.
func TestCatalogWriteIterateInsertionOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.Default()
	meta := testMeta()

	w, err := catalog.Initialize(fs, "/data", meta, cfg, nil)
	require.NoError(t, err)

	records := []oai.OAIRecord{
		{Identifier: "oai:x:1", Datestamp: 1, OriginalMetadataHash: "h1", Deleted: false},
		{Identifier: "oai:x:2", Datestamp: 2, OriginalMetadataHash: "h2", Deleted: false},
		{Identifier: "oai:x:3", Datestamp: 3, OriginalMetadataHash: "h3", Deleted: true},
	}
	for _, r := range records {
		require.NoError(t, w.WriteRecord(r))
	}
	require.NoError(t, w.Finalize())

	it, err := catalog.NewIterator(fs, "/data", meta.Network.Acronym, meta.ID)
	require.NoError(t, err)
	got, err := catalog.Collect(it)
	require.NoError(t, err)

	require.Len(t, got, 3)
	for i, r := range records {
		require.Equal(t, r.Identifier, got[i].Identifier)
		require.Equal(t, r.Datestamp, got[i].Datestamp)
		require.Equal(t, r.Deleted, got[i].Deleted)
		require.NotEmpty(t, got[i].ID)
	}
}

func TestCatalogWriteRecordSkipsInvalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	w, err := catalog.Initialize(fs, "/data", testMeta(), config.Default(), nil)
	require.NoError(t, err)

	require.NoError(t, w.WriteRecord(oai.OAIRecord{Identifier: "", OriginalMetadataHash: "h"}))
	require.NoError(t, w.WriteRecord(oai.OAIRecord{Identifier: "oai:x:1", OriginalMetadataHash: ""}))
	require.NoError(t, w.Finalize())

	it, err := catalog.NewIterator(fs, "/data", "demo", 7)
	require.NoError(t, err)
	got, err := catalog.Collect(it)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCatalogFinalizeUninitializedIsNoop(t *testing.T) {
	w := &catalog.Writer{}
	require.NoError(t, w.Finalize())
}

func TestCatalogBatchRollover(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.Default()
	cfg.Parquet.Catalog.RecordsPerFile = 2
	meta := testMeta()

	w, err := catalog.Initialize(fs, "/data", meta, cfg, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, w.WriteRecord(oai.OAIRecord{
			Identifier: "oai:x:" + string(rune('1'+i)), OriginalMetadataHash: "h",
		}))
	}
	require.NoError(t, w.Finalize())

	dir := "/data/DEMO/snapshots/snapshot_7/catalog"
	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	require.Len(t, entries, 3) // 2 + 2 + 1

	it, err := catalog.NewIterator(fs, "/data", meta.Network.Acronym, meta.ID)
	require.NoError(t, err)
	got, err := catalog.Collect(it)
	require.NoError(t, err)
	require.Len(t, got, 5)
}

func TestCatalogDeleteRemovesFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	meta := testMeta()
	w, err := catalog.Initialize(fs, "/data", meta, config.Default(), nil)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(oai.OAIRecord{Identifier: "oai:x:1", OriginalMetadataHash: "h"}))
	require.NoError(t, w.Finalize())

	require.NoError(t, catalog.Delete(fs, "/data", meta.Network.Acronym, meta.ID))

	it, err := catalog.NewIterator(fs, "/data", meta.Network.Acronym, meta.ID)
	require.NoError(t, err)
	got, err := catalog.Collect(it)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReferencedHashes(t *testing.T) {
	fs := afero.NewMemMapFs()
	meta := testMeta()
	w, err := catalog.Initialize(fs, "/data", meta, config.Default(), nil)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(oai.OAIRecord{Identifier: "oai:x:1", OriginalMetadataHash: "h1"}))
	require.NoError(t, w.WriteRecord(oai.OAIRecord{Identifier: "oai:x:2", OriginalMetadataHash: "h2"}))
	require.NoError(t, w.Finalize())

	refs, err := catalog.ReferencedHashes(fs, "/data", meta.Network.Acronym, meta.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]struct{}{"h1": {}, "h2": {}}, refs)
}

func TestCollectConcurrentPreservesWriteOrderAcrossBatches(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.Default()
	cfg.Parquet.Catalog.RecordsPerFile = 1 // force one record per batch file
	meta := testMeta()

	w, err := catalog.Initialize(fs, "/data", meta, cfg, nil)
	require.NoError(t, err)
	for i := 1; i <= 5; i++ {
		require.NoError(t, w.WriteRecord(oai.OAIRecord{
			Identifier:           "oai:x:" + string(rune('0'+i)),
			Datestamp:            int64(i),
			OriginalMetadataHash: "h",
		}))
	}
	require.NoError(t, w.Finalize())

	got, err := catalog.CollectConcurrent(context.Background(), fs, "/data", meta.Network.Acronym, meta.ID)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, r := range got {
		require.Equal(t, int64(i+1), r.Datestamp)
	}
}

// TestIteratorOrdersBatchesPastTenNumerically writes enough single-record
// batches to cross the 9/10 boundary where an unpadded "%d" batch number
// would sort lexicographically out of numeric write order (batch_10 before
// batch_2), confirming the zero-padded filename keeps Iterator and
// CollectConcurrent in write-insertion order at realistic catalog sizes.
func TestIteratorOrdersBatchesPastTenNumerically(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.Default()
	cfg.Parquet.Catalog.RecordsPerFile = 1
	meta := testMeta()

	const n = 12
	w, err := catalog.Initialize(fs, "/data", meta, cfg, nil)
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		require.NoError(t, w.WriteRecord(oai.OAIRecord{
			Identifier:           "oai:x:" + string(rune('a'+i)),
			Datestamp:            int64(i),
			OriginalMetadataHash: "h",
		}))
	}
	require.NoError(t, w.Finalize())

	it, err := catalog.NewIterator(fs, "/data", meta.Network.Acronym, meta.ID)
	require.NoError(t, err)
	got, err := catalog.Collect(it)
	require.NoError(t, err)
	require.Len(t, got, n)
	for i, r := range got {
		require.Equal(t, int64(i+1), r.Datestamp)
	}

	concurrent, err := catalog.CollectConcurrent(context.Background(), fs, "/data", meta.Network.Acronym, meta.ID)
	require.NoError(t, err)
	require.Len(t, concurrent, n)
	for i, r := range concurrent {
		require.Equal(t, int64(i+1), r.Datestamp)
	}
}

func TestCollectConcurrentEmptyCatalogReturnsNoRecords(t *testing.T) {
	fs := afero.NewMemMapFs()
	got, err := catalog.CollectConcurrent(context.Background(), fs, "/data", "demo", 999)
	require.NoError(t, err)
	require.Empty(t, got)
}
