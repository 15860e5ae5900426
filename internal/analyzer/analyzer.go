// Package analyzer applies the suspicion heuristics to normalized records.
//
// Every analyzer works on a frequency table of one field: distinct values ordered by
// count, highest first, with ties kept in first-seen order so that the same input
// always produces the same output.
package analyzer

import (
	"context"
	"sort"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// Analyzer produces suspicious EventCounts from one source's records.
type Analyzer interface {
	// Name identifies the analyzer in logs and metrics.
	Name() string
	// Analyze never fails on missing fields or empty input; it returns an empty slice.
	Analyze(ctx context.Context, records []models.NormalizedRecord) []models.EventCount
}

// CountValues builds a frequency table from values in input order.
func CountValues(values []string) []models.Frequency {
	index := make(map[string]int, len(values))
	table := make([]models.Frequency, 0)
	for _, v := range values {
		if i, ok := index[v]; ok {
			table[i].Count++
			continue
		}
		index[v] = len(table)
		table = append(table, models.Frequency{Value: v, Count: 1})
	}
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Count > table[j].Count
	})
	return table
}

// Top returns at most n leading rows of table. n <= 0 returns nothing.
func Top(table []models.Frequency, n int) []models.Frequency {
	if n <= 0 {
		return []models.Frequency{}
	}
	if len(table) > n {
		return table[:n]
	}
	return table
}

func toEventCounts(table []models.Frequency, source string) []models.EventCount {
	out := make([]models.EventCount, len(table))
	for i, row := range table {
		out[i] = models.EventCount{Key: row.Value, Count: row.Count, Source: source}
	}
	return out
}

// fieldValues collects the text of field from every record that has it.
func fieldValues(records []models.NormalizedRecord, field string) []string {
	values := make([]string, 0, len(records))
	for _, rec := range records {
		if v, ok := rec.Text(field); ok {
			values = append(values, v)
		}
	}
	return values
}
