package cube

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode selects how Top-N members are ranked within an axis.
type SortMode string

// Sort mode constants.
const (
	// SortByTotals ranks members by aggregate value descending, ties broken
	// by ascending key comparison.
	SortByTotals SortMode = "totals"
	// SortByKeyAsc ranks members by natural key order ascending; numeric
	// substrings compare numerically, so "Item 2" orders before "Item 10".
	SortByKeyAsc SortMode = "keyAsc"
)

// Top-N bounds. Out-of-range configuration is clamped, never rejected:
// the limit is a rendering-cardinality control, not a validation surface.
const (
	MinTopN     = 1
	MaxTopN     = 50
	DefaultTopN = 10
)

// ClampTopN forces a configured per-axis member limit into [MinTopN, MaxTopN].
func ClampTopN(limit int) int {
	if limit < MinTopN {
		return MinTopN
	}

	if limit > MaxTopN {
		return MaxTopN
	}

	return limit
}

// NormalizeSortMode maps unknown sort mode strings to the default.
func NormalizeSortMode(mode SortMode) SortMode {
	if mode == SortByKeyAsc {
		return SortByKeyAsc
	}

	return SortByTotals
}

// TopNReducer deterministically selects an ordered subset of at most Limit
// members per axis. Ordering is reproducible regardless of input map
// iteration order.
type TopNReducer struct {
	limit    int
	mode     SortMode
	collator *collate.Collator
}

// NewTopNReducer creates a reducer with the clamped limit and normalized
// sort mode.
func NewTopNReducer(limit int, mode SortMode) *TopNReducer {
	return &TopNReducer{
		limit:    ClampTopN(limit),
		mode:     NormalizeSortMode(mode),
		collator: collate.New(language.Und, collate.Numeric),
	}
}

// Limit returns the effective per-axis member limit.
func (r *TopNReducer) Limit() int {
	return r.limit
}

// Mode returns the effective sort mode.
func (r *TopNReducer) Mode() SortMode {
	return r.mode
}

// Select returns the ordered member list for one axis, at most Limit long,
// ranked from the per-member aggregate totals.
func (r *TopNReducer) Select(totals map[string]float64) []string {
	members := make([]string, 0, len(totals))
	for member := range totals {
		members = append(members, member)
	}

	if r.mode == SortByKeyAsc {
		sort.Slice(members, func(i, j int) bool {
			return r.collator.CompareString(members[i], members[j]) < 0
		})
	} else {
		sort.Slice(members, func(i, j int) bool {
			ti, tj := totals[members[i]], totals[members[j]]
			if ti != tj {
				return ti > tj
			}

			return strings.Compare(members[i], members[j]) < 0
		})
	}

	if len(members) > r.limit {
		members = members[:r.limit]
	}

	return members
}
