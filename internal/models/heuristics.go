package models

const (
	// DefaultLongNameThreshold is the query length above which a DNS name counts as long.
	DefaultLongNameThreshold = 50

	// DefaultHeuristicTopN caps each DNS heuristic's output.
	DefaultHeuristicTopN = 10

	// DefaultFrequentTopN caps the most-queried domains table.
	DefaultFrequentTopN = 20

	// DefaultRankingTopN caps the cross-source ranking.
	DefaultRankingTopN = 10
)

var defaultSuspiciousEventIDs = []string{"4624", "4625", "4672", "4688", "4689", "4698", "4703", "4656"}

// "download" has no leading dot and matches any name ending in that text.
var defaultSuspiciousTLDs = []string{".xyz", ".top", ".bid", "download", ".science", ".win"}

// DefaultSuspiciousEventIDs returns a copy of the Windows event ID allowlist.
func DefaultSuspiciousEventIDs() []string {
	return append([]string(nil), defaultSuspiciousEventIDs...)
}

// DefaultSuspiciousTLDs returns a copy of the suspicious suffix list, in match order.
func DefaultSuspiciousTLDs() []string {
	return append([]string(nil), defaultSuspiciousTLDs...)
}
