package services

import (
	"sort"

	"github.com/westminster-data/parlsync/internal/core/domain"
)

// PartyCount is one row of the state-of-the-parties summary.
type PartyCount struct {
	Party   string
	Members int
}

// PartyCounts tallies sitting members per party from the active-members
// archive, counting each member once by their newest row. Sorted by size
// descending, then party name.
func PartyCounts(records []domain.Record) []PartyCount {
	counts := make(map[string]int)
	for _, rec := range latestByID(records) {
		counts[rec["latestPartyname"]]++
	}

	out := make([]PartyCount, 0, len(counts))
	for party, n := range counts {
		out = append(out, PartyCount{Party: party, Members: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Members != out[j].Members {
			return out[i].Members > out[j].Members
		}
		return out[i].Party < out[j].Party
	})
	return out
}
