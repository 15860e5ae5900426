// Package ranking merges per-source findings into one cross-source top-N list.
package ranking

import (
	"sort"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// Aggregator ranks findings by count.
type Aggregator struct {
	topN int
}

// NewAggregator creates an aggregator keeping at most topN entries.
func NewAggregator(topN int) *Aggregator {
	return &Aggregator{topN: topN}
}

// TopN returns the configured ranking size.
func (a *Aggregator) TopN() int {
	return a.topN
}

// Rank concatenates windows before dns, sorts by count descending and truncates.
// Equal counts keep the order in which the analyzers emitted them. An empty dns
// slice yields a Windows-only ranking.
func (a *Aggregator) Rank(windows, dns []models.EventCount) []models.RankedEntry {
	combined := make([]models.EventCount, 0, len(windows)+len(dns))
	combined = append(combined, windows...)
	combined = append(combined, dns...)

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Count > combined[j].Count
	})

	n := a.topN
	if n < 0 {
		n = 0
	}
	if len(combined) < n {
		n = len(combined)
	}

	ranked := make([]models.RankedEntry, n)
	for i, c := range combined[:n] {
		ranked[i] = models.RankedEntry{Rank: i + 1, Key: c.Key, Count: c.Count, Source: c.Source}
	}
	return ranked
}
