package snapshotstore

import (
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

const metadataFileName = "metadata.json"

// metadataDTO is the JSON shape mirrored to metadata.json — a flattened
// view of oai.SnapshotMeta (SPEC_FULL.md §12).
type metadataDTO struct {
	ID                  int64              `json:"id"`
	NetworkID           int64              `json:"networkId"`
	NetworkAcronym      string             `json:"networkAcronym"`
	PreviousSnapshotID  *int64             `json:"previousSnapshotId,omitempty"`
	Status              oai.SnapshotStatus `json:"status"`
	IndexStatus         oai.IndexStatus    `json:"indexStatus"`
	StartTime           int64              `json:"startTime"`
	EndTime             int64              `json:"endTime"`
	LastIncrementalTime int64              `json:"lastIncrementalTime"`
	Size                int64              `json:"size"`
	ValidSize           int64              `json:"validSize"`
	TransformedSize     int64              `json:"transformedSize"`
	Deleted             bool               `json:"deleted"`
}

func millisOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return oai.NowMillis(t)
}

func toMetadataDTO(m *oai.SnapshotMeta) metadataDTO {
	return metadataDTO{
		ID:                  m.ID,
		NetworkID:           m.Network.ID,
		NetworkAcronym:      m.Network.Acronym,
		PreviousSnapshotID:  m.PreviousSnapshotID,
		Status:              m.Status,
		IndexStatus:         m.IndexStatus,
		StartTime:           millisOrZero(m.StartTime),
		EndTime:             millisOrZero(m.EndTime),
		LastIncrementalTime: millisOrZero(m.LastIncrementalTime),
		Size:                m.Size,
		ValidSize:           m.ValidSize,
		TransformedSize:     m.TransformedSize,
		Deleted:             m.Deleted,
	}
}

// writeMetadataJSON mirrors m to {basePath}/{acronym}/snapshots/snapshot_{id}/metadata.json,
// atomically (tmp + rename).
func writeMetadataJSON(fs afero.Fs, basePath string, m *oai.SnapshotMeta) error {
	dir := oai.SnapshotBasePath(basePath, m.Network.Acronym, m.ID)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return oai.StoreIOf("creating snapshot dir %s: %v", dir, err)
	}

	data, err := json.MarshalIndent(toMetadataDTO(m), "", "  ")
	if err != nil {
		return oai.ParseErrorf("marshaling metadata.json: %v", err)
	}

	dest := filepath.Join(dir, metadataFileName)
	tmp := dest + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o644); err != nil {
		return oai.StoreIOf("writing metadata.json: %v", err)
	}
	if err := fs.Rename(tmp, dest); err != nil {
		return oai.StoreIOf("publishing metadata.json: %v", err)
	}
	return nil
}

// ReadMetadataJSON loads a previously persisted metadata.json, for
// recovering a snapshot row from disk without the in-memory store.
func ReadMetadataJSON(fs afero.Fs, basePath, acronym string, snapshotID int64) (*oai.SnapshotMeta, error) {
	path := filepath.Join(oai.SnapshotBasePath(basePath, acronym, snapshotID), metadataFileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, oai.NotFoundf("metadata.json for snapshot %d", snapshotID)
	}
	var dto metadataDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, oai.ParseErrorf("parsing metadata.json %s: %v", path, err)
	}
	fromMillis := func(ms int64) time.Time {
		if ms == 0 {
			return time.Time{}
		}
		return time.UnixMilli(ms)
	}
	return &oai.SnapshotMeta{
		ID:                  dto.ID,
		Network:             oai.NetworkInfo{ID: dto.NetworkID, Acronym: dto.NetworkAcronym},
		PreviousSnapshotID:  dto.PreviousSnapshotID,
		Status:              dto.Status,
		IndexStatus:         dto.IndexStatus,
		StartTime:           fromMillis(dto.StartTime),
		EndTime:             fromMillis(dto.EndTime),
		LastIncrementalTime: fromMillis(dto.LastIncrementalTime),
		Size:                dto.Size,
		ValidSize:           dto.ValidSize,
		TransformedSize:     dto.TransformedSize,
		Deleted:             dto.Deleted,
	}, nil
}
