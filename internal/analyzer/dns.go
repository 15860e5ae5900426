package analyzer

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// DNSOptions configures a DNSAnalyzer.
type DNSOptions struct {
	// Field holds the queried domain name, e.g. "query".
	Field string
	// SuspiciousTLDs are matched as plain suffixes of the lower-cased name.
	SuspiciousTLDs []string
	// LongNameThreshold is the length a name must exceed to count as long.
	LongNameThreshold int
	// TopN caps each heuristic's output.
	TopN int
	// FrequentTopN caps the most-queried names table.
	FrequentTopN int
}

// Findings holds the independent DNS heuristic outputs.
type Findings struct {
	SuspiciousTLD []models.EventCount `json:"suspicious_tld" yaml:"suspicious_tld"`
	LongName      []models.EventCount `json:"long_name" yaml:"long_name"`
	Frequent      []models.Frequency  `json:"frequent" yaml:"frequent"`
	Queries       int                 `json:"queries" yaml:"queries"`
}

// Combined returns the TLD findings followed by the long-name findings. An entry
// matching both heuristics appears once under each label.
func (f Findings) Combined() []models.EventCount {
	out := make([]models.EventCount, 0, len(f.SuspiciousTLD)+len(f.LongName))
	out = append(out, f.SuspiciousTLD...)
	return append(out, f.LongName...)
}

// Empty reports whether neither heuristic matched.
func (f Findings) Empty() bool {
	return len(f.SuspiciousTLD) == 0 && len(f.LongName) == 0
}

// DNSAnalyzer flags unusual top-level domains and unusually long query names.
type DNSAnalyzer struct {
	opts DNSOptions
}

// NewDNSAnalyzer copies opts into a new analyzer.
func NewDNSAnalyzer(opts DNSOptions) *DNSAnalyzer {
	tlds := make([]string, len(opts.SuspiciousTLDs))
	for i, suffix := range opts.SuspiciousTLDs {
		tlds[i] = strings.ToLower(suffix)
	}
	opts.SuspiciousTLDs = tlds
	return &DNSAnalyzer{opts: opts}
}

func (a *DNSAnalyzer) Name() string { return "dns" }

// Analyze returns the combined heuristic output.
func (a *DNSAnalyzer) Analyze(ctx context.Context, records []models.NormalizedRecord) []models.EventCount {
	return a.Inspect(ctx, records).Combined()
}

// Inspect runs both heuristics over the query frequency table. Records without a
// query are dropped; names are compared lower-cased.
func (a *DNSAnalyzer) Inspect(ctx context.Context, records []models.NormalizedRecord) Findings {
	queries := make([]string, 0, len(records))
	for _, q := range fieldValues(records, a.opts.Field) {
		if q == "" {
			continue
		}
		queries = append(queries, strings.ToLower(q))
	}

	table := CountValues(queries)

	tld := make([]models.Frequency, 0)
	long := make([]models.Frequency, 0)
	for _, row := range table {
		if a.hasSuspiciousTLD(row.Value) {
			tld = append(tld, row)
		}
		if utf8.RuneCountInString(row.Value) > a.opts.LongNameThreshold {
			long = append(long, row)
		}
	}

	frequent := Top(table, a.opts.FrequentTopN)
	return Findings{
		SuspiciousTLD: toEventCounts(Top(tld, a.opts.TopN), models.SourceDNSTLD),
		LongName:      toEventCounts(Top(long, a.opts.TopN), models.SourceDNSLongName),
		Frequent:      append([]models.Frequency{}, frequent...),
		Queries:       len(queries),
	}
}

func (a *DNSAnalyzer) hasSuspiciousTLD(name string) bool {
	for _, suffix := range a.opts.SuspiciousTLDs {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
