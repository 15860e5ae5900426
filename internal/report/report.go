// Package report renders analysis results as console tables, JSON/YAML documents and a bar chart.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/telhawk-systems/telhawk-triage/internal/analyzer"
	"github.com/telhawk-systems/telhawk-triage/internal/models"
	"github.com/telhawk-systems/telhawk-triage/pkg/output"
)

// SourceSummary describes how one input source was consumed.
type SourceSummary struct {
	Name        string   `json:"name" yaml:"name"`
	Path        string   `json:"path,omitempty" yaml:"path,omitempty"`
	Format      string   `json:"format,omitempty" yaml:"format,omitempty"`
	Present     bool     `json:"present" yaml:"present"`
	Reason      string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	Records     int      `json:"records" yaml:"records"`
	JoinColumns []string `json:"join_columns,omitempty" yaml:"join_columns,omitempty"`
}

// Report is the outcome of one analysis run.
type Report struct {
	RunID       string               `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time            `json:"generated_at" yaml:"generated_at"`
	Sources     []SourceSummary      `json:"sources" yaml:"sources"`
	Windows     []models.EventCount  `json:"windows" yaml:"windows"`
	DNS         analyzer.Findings    `json:"dns" yaml:"dns"`
	Top         []models.RankedEntry `json:"top" yaml:"top"`
}

// Format selects how a report is printed.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Print writes r to stdout in the requested format.
func Print(r *Report, format Format) error {
	switch format {
	case FormatJSON:
		return output.JSON(r)
	case FormatYAML:
		return output.YAML(r)
	case FormatTable, "":
		PrintTable(output.Stdout, r)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// PrintTable writes the human-readable report: per-source findings followed by the ranking.
func PrintTable(w io.Writer, r *Report) {
	for _, s := range r.Sources {
		if s.Present {
			output.Info("%s: %d records from %s", s.Name, s.Records, s.Path)
		} else {
			output.Warn("%s: skipped (%s)", s.Name, s.Reason)
		}
	}
	fmt.Fprintln(w)

	output.Info("Suspicious Windows events (by EventID):")
	countTable(r.Windows).RenderTo(w)
	fmt.Fprintln(w)

	if len(r.DNS.Frequent) > 0 {
		output.Info("Most queried domains:")
		t := output.NewTable([]string{"DOMAIN", "COUNT"})
		for _, f := range r.DNS.Frequent {
			t.AddRow([]string{f.Value, strconv.Itoa(f.Count)})
		}
		t.RenderTo(w)
		fmt.Fprintln(w)
	}

	if !r.DNS.Empty() {
		output.Info("Suspicious DNS queries:")
		countTable(r.DNS.Combined()).RenderTo(w)
		fmt.Fprintln(w)
	}

	top := RankingTable(r.Top)
	output.Success("Top %d suspicious events:", top.Len())
	top.RenderTo(w)
}

// RankingTable builds the top-N table.
func RankingTable(entries []models.RankedEntry) *output.Table {
	t := output.NewTable([]string{"RANK", "EVENT / DOMAIN", "COUNT", "SOURCE"})
	for _, e := range entries {
		t.AddRow([]string{strconv.Itoa(e.Rank), e.Key, strconv.Itoa(e.Count), e.Source})
	}
	return t
}

func countTable(counts []models.EventCount) *output.Table {
	t := output.NewTable([]string{"EVENT / DOMAIN", "COUNT", "SOURCE"})
	for _, c := range counts {
		t.AddRow([]string{c.Key, strconv.Itoa(c.Count), c.Source})
	}
	return t
}
