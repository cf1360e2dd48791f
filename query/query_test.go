package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
	"github.com/lareferencia/lareferencia-core-lib-sub002/query"
)

func strp(s string) *string { return &s }

// scenario S3/S4/S5 records from spec.md §8.
func s3Records() []oai.RecordValidation {
	return []oai.RecordValidation{
		{Identifier: "oai:x:1", RecordIsValid: true},
		{
			Identifier: "oai:x:2", RecordIsValid: false,
			RuleFacts: []oai.RuleFact{{RuleID: 42, InvalidOccurrences: []string{"2022"}, IsValid: false}},
		},
		{Identifier: "oai:x:3", RecordIsValid: false},
	}
}

func TestParseFiltersGrammar(t *testing.T) {
	f := query.ParseFilters([]string{`record_is_valid:"true"`, "invalid_rules@@42,7", "unknown_key:xyz"})
	require.NotNil(t, f.RecordIsValid)
	require.True(t, *f.RecordIsValid)
	require.True(t, f.InvalidRules.Contains(int32(42)))
	require.True(t, f.InvalidRules.Contains(int32(7)))
}

// S4: filter invalid_rules:42 on S3 yields exactly oai:x:2; adding
// record_is_valid:true on top yields zero records.
func TestFilterScenarioS4(t *testing.T) {
	records := s3Records()

	f1 := query.ParseFilters([]string{"invalid_rules:42"})
	got := query.FilterRecords(records, f1)
	require.Len(t, got, 1)
	require.Equal(t, "oai:x:2", got[0].Identifier)

	f2 := query.ParseFilters([]string{"invalid_rules:42", "record_is_valid:true"})
	got2 := query.FilterRecords(records, f2)
	require.Empty(t, got2)
}

// S5: calculateRuleOccurrences(7, 42, []) on S3 expects
// {valid:{}, invalid:{"2022":1}}.
func TestCalculateRuleOccurrencesScenarioS5(t *testing.T) {
	records := s3Records()
	occ := query.CalculateRuleOccurrences(records, 42, query.Filter{})
	require.Empty(t, occ.Valid)
	require.Equal(t, 1, occ.Invalid["2022"])
}

// S3: buildStats returns validRecords=1, per-rule[42].invalid=1.
func TestBuildStatsScenarioS3(t *testing.T) {
	records := s3Records()
	stats := query.BuildStats(records, query.Filter{})
	require.EqualValues(t, 1, stats.ValidRecords)
	require.EqualValues(t, 1, stats.PerRuleInvalid[42])
}

func TestPaginationIsStable(t *testing.T) {
	records := []oai.RecordValidation{
		{Identifier: "oai:x:3"},
		{Identifier: "oai:x:1"},
		{Identifier: "oai:x:2"},
	}
	p1 := query.QueryObservationsWithPagination(records, query.Filter{}, 0, 2)
	p2 := query.QueryObservationsWithPagination(records, query.Filter{}, 0, 2)
	require.Equal(t, p1, p2)
	require.Equal(t, 3, p1.TotalFiltered)
	require.Len(t, p1.Records, 2)
	require.Equal(t, "oai:x:1", p1.Records[0].Identifier)
	require.Equal(t, "oai:x:2", p1.Records[1].Identifier)

	p3 := query.QueryObservationsWithPagination(records, query.Filter{}, 2, 2)
	require.Len(t, p3.Records, 1)
	require.Equal(t, "oai:x:3", p3.Records[0].Identifier)
}

func TestListByStatus(t *testing.T) {
	lw := []oai.LightweightRecord{
		{Identifier: "a", RecordIsValid: true, PublishedMetadataHash: strp("h")},
		{Identifier: "b", RecordIsValid: false},
	}
	valid := query.ListByStatus(lw, oai.StatusValidOnly)
	require.Len(t, valid, 1)
	require.Equal(t, "a", valid[0].Identifier)

	invalid := query.ListByStatus(lw, oai.StatusInvalidOnly)
	require.Len(t, invalid, 1)
	require.Equal(t, "b", invalid[0].Identifier)

	all := query.ListByStatus(lw, oai.StatusUntested)
	require.Len(t, all, 2)
}
