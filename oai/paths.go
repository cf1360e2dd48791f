package oai

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

// SanitizeAcronym uppercases acronym and replaces runs of non-alphanumeric
// characters with "_", per spec.md §6.
func SanitizeAcronym(acronym string) string {
	upper := strings.ToUpper(acronym)
	return nonAlphanumeric.ReplaceAllString(upper, "_")
}

// HexNibblePartition returns the three-level {H1}/{H2}/{H3} directory
// partition derived from the leading hex characters of an uppercase
// fingerprint, per spec.md §6.
func HexNibblePartition(fingerprint string) (h1, h2, h3 string) {
	upper := strings.ToUpper(fingerprint)
	for len(upper) < 3 {
		upper += "0"
	}
	return upper[0:1], upper[1:2], upper[2:3]
}

// NetworkBasePath returns {basePath}/{SANITIZED_ACRONYM}.
func NetworkBasePath(basePath, acronym string) string {
	return filepath.Join(basePath, SanitizeAcronym(acronym))
}

// SnapshotBasePath returns {basePath}/{SANITIZED_ACRONYM}/snapshots/snapshot_{id}.
func SnapshotBasePath(basePath, acronym string, snapshotID int64) string {
	return filepath.Join(NetworkBasePath(basePath, acronym), "snapshots", fmt.Sprintf("snapshot_%d", snapshotID))
}

// TruncateIdentifier caps identifier at MaxIdentifierLength runes, per
// spec.md §6.
func TruncateIdentifier(identifier string) string {
	r := []rune(identifier)
	if len(r) <= MaxIdentifierLength {
		return identifier
	}
	return string(r[:MaxIdentifierLength])
}
