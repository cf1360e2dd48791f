package catalog

import (
	"github.com/spf13/afero"
)

// ReferencedHashes scans a snapshot's catalog and returns the set of
// original_metadata_hash values it references — the building block an
// external GC job needs to find orphaned blobs (SPEC_FULL.md §12). The
// core does not schedule or run GC itself.
func ReferencedHashes(fs afero.Fs, basePath, acronym string, snapshotID int64) (map[string]struct{}, error) {
	it, err := NewIterator(fs, basePath, acronym, snapshotID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{})
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		if r.OriginalMetadataHash != "" {
			out[r.OriginalMetadataHash] = struct{}{}
		}
	}
	return out, it.Err()
}
