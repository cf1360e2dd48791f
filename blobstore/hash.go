package blobstore

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hasher computes a stable string fingerprint from canonical byte content.
// Equal inputs yield equal fingerprints (spec.md §3); which algorithm is
// used is a deploy-time choice (SPEC_FULL.md §12 "Hasher pluggability").
type Hasher interface {
	Sum(content []byte) string
}

// MD5Hasher fingerprints with MD5, kept for interoperability with
// catalog.RecordID, which pins MD5(identifier) regardless of the blob
// store's hasher choice (spec.md §3).
type MD5Hasher struct{}

func (MD5Hasher) Sum(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// SHA256Hasher fingerprints with SHA-256; default hasher for new stores.
type SHA256Hasher struct{}

func (SHA256Hasher) Sum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Blake2bHasher fingerprints with BLAKE2b-256, a higher-throughput
// alternative for large-volume deployments.
type Blake2bHasher struct{}

func (Blake2bHasher) Sum(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// RecordID computes the catalog's id = MD5(identifier), independent of
// whatever Hasher a particular blob Store was constructed with.
func RecordID(identifier string) string {
	return MD5Hasher{}.Sum([]byte(identifier))
}
