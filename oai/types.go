// Copyright 2024 The LA Referencia Authors
// This file is part of lareferencia-core-lib-sub002.
//
// lareferencia-core-lib-sub002 is free software: you can redistribute it
// and/or modify it under the terms of the GNU Lesser General Public License
// as published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// Package oai holds the core data model shared by every storage and query
// component: networks, snapshots, catalog records and their derived
// validation state.
package oai

import "time"

// SnapshotStatus is the lifecycle state of a Snapshot (spec.md §3, §4.5).
type SnapshotStatus string

const (
	StatusHarvesting             SnapshotStatus = "HARVESTING"
	StatusHarvestingFinishedValid SnapshotStatus = "HARVESTING_FINISHED_VALID"
	StatusHarvestingFinishedError SnapshotStatus = "HARVESTING_FINISHED_ERROR"
	StatusRetrying                SnapshotStatus = "RETRYING"
	StatusValid                   SnapshotStatus = "VALID"
	StatusDeleted                 SnapshotStatus = "DELETED"
)

// IndexStatus tracks whether a snapshot's records have been handed to the
// (out-of-scope) full-text indexer.
type IndexStatus string

const (
	IndexUnknown  IndexStatus = "UNKNOWN"
	IndexIndexed  IndexStatus = "INDEXED"
)

// NetworkInfo is the flattened DTO the core persists and keys caches on —
// see SPEC_FULL.md §13.2 (Open Question: canonical SnapshotMetadata shape).
type NetworkInfo struct {
	ID      int64
	Acronym string
}

// SnapshotMeta is the authoritative, flattened snapshot row (spec.md §3).
type SnapshotMeta struct {
	ID                 int64
	Network            NetworkInfo
	PreviousSnapshotID  *int64
	Status             SnapshotStatus
	IndexStatus        IndexStatus
	StartTime          time.Time
	EndTime            time.Time
	LastIncrementalTime time.Time
	Size               int64
	ValidSize          int64
	TransformedSize    int64
	Deleted            bool
}

// OAIRecord is the immutable catalog entry (spec.md §3).
type OAIRecord struct {
	ID                   string // MD5(identifier), hex
	Identifier           string // bounded to 255 chars, see MaxIdentifierLength
	Datestamp            int64  // epoch milliseconds, UTC
	OriginalMetadataHash string
	Deleted              bool
}

// MaxIdentifierLength is the identifier truncation cap from spec.md §6.
const MaxIdentifierLength = 255

// RuleFact is a single validation-rule outcome attached to a record
// (spec.md §3).
type RuleFact struct {
	RuleID            int32
	ValidOccurrences   []string
	InvalidOccurrences []string
	IsValid           bool
}

// RecordValidation is the full per-record derived state (spec.md §3).
type RecordValidation struct {
	Identifier             string
	Datestamp              int64
	RecordIsValid          bool
	IsTransformed          bool
	PublishedMetadataHash  *string
	RuleFacts              []RuleFact
}

// LightweightRecord is the rule-fact-free projection persisted in
// validation_index.parquet (spec.md §4.3).
type LightweightRecord struct {
	Identifier            string
	Datestamp             int64
	RecordIsValid         bool
	IsTransformed         bool
	PublishedMetadataHash *string
}

// ValidationStatusFilter selects which lightweight records to return from
// the lightweight iterator (spec.md §4.3).
type ValidationStatusFilter int

const (
	StatusUntested ValidationStatusFilter = iota // no filter
	StatusValidOnly
	StatusInvalidOnly
)

// NowMillis is the canonical ms-precision epoch timestamp helper used when
// stamping datestamps; kept here so call sites never reach for time.Now()
// directly inside storage internals (keeps flush/pagination logic free of
// hidden clock reads).
func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}
