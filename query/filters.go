// Package query implements the read-side operations over a cached
// snapshot's full RecordValidation list (spec.md §4.4): filter parsing,
// stats aggregation, rule-occurrence histograms, and stable pagination.
package query

import (
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/lareferencia/lareferencia-core-lib-sub002/log"
)

// Filter is the parsed, pre-compiled form of a request's filter
// expressions (spec.md §4.4). A nil pointer/set field means "no
// constraint on that dimension."
type Filter struct {
	RecordIsValid       *bool
	RecordIsTransformed *bool
	InvalidRules        mapset.Set[int32]
	ValidRules          mapset.Set[int32]
}

// ParseFilters compiles raw filter expressions of the form
// `key:value`/`key@@value` into a Filter, combining by conjunction.
// Unknown keys are ignored with a warning (spec.md §4.4).
func ParseFilters(exprs []string) Filter {
	var f Filter
	for _, expr := range exprs {
		key, val, ok := splitFilterExpr(expr)
		if !ok {
			continue
		}
		val = unquote(val)
		switch key {
		case "record_is_valid":
			b := parseBool(val)
			f.RecordIsValid = &b
		case "record_is_transformed":
			b := parseBool(val)
			f.RecordIsTransformed = &b
		case "invalid_rules":
			f.InvalidRules = parseRuleIDs(val)
		case "valid_rules":
			f.ValidRules = parseRuleIDs(val)
		default:
			log.Warn("query: unknown filter key ignored", "key", key)
		}
	}
	return f
}

func splitFilterExpr(expr string) (key, value string, ok bool) {
	if i := strings.Index(expr, "@@"); i >= 0 {
		return expr[:i], expr[i+2:], true
	}
	if i := strings.Index(expr, ":"); i >= 0 {
		return expr[:i], expr[i+1:], true
	}
	return "", "", false
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func parseRuleIDs(s string) mapset.Set[int32] {
	set := mapset.NewThreadUnsafeSet[int32]()
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			log.Warn("query: ignoring unparseable rule id in filter", "value", part)
			continue
		}
		set.Add(int32(n))
	}
	return set
}
