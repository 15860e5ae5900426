package analyzer_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telhawk-systems/telhawk-triage/internal/analyzer"
	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

func windowsRecords(codes ...interface{}) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, len(codes))
	for i, c := range codes {
		out[i] = models.NormalizedRecord{"EventCode": c}
	}
	return out
}

func dnsRecords(queries ...string) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, len(queries))
	for i, q := range queries {
		out[i] = models.NormalizedRecord{"query": q}
	}
	return out
}

func defaultWindows() *analyzer.WindowsAnalyzer {
	return analyzer.NewWindowsAnalyzer(analyzer.WindowsOptions{
		Field:         "EventCode",
		SuspiciousIDs: models.DefaultSuspiciousEventIDs(),
	})
}

func defaultDNS() *analyzer.DNSAnalyzer {
	return analyzer.NewDNSAnalyzer(analyzer.DNSOptions{
		Field:             "query",
		SuspiciousTLDs:    models.DefaultSuspiciousTLDs(),
		LongNameThreshold: models.DefaultLongNameThreshold,
		TopN:              models.DefaultHeuristicTopN,
		FrequentTopN:      models.DefaultFrequentTopN,
	})
}

func TestCountValues_OrdersByCountThenFirstSeen(t *testing.T) {
	table := analyzer.CountValues([]string{"b", "a", "c", "a", "b", "d"})

	assert.Equal(t, []models.Frequency{
		{Value: "b", Count: 2},
		{Value: "a", Count: 2},
		{Value: "c", Count: 1},
		{Value: "d", Count: 1},
	}, table)
}

func TestTop(t *testing.T) {
	table := analyzer.CountValues([]string{"a", "b", "c"})

	assert.Len(t, analyzer.Top(table, 2), 2)
	assert.Len(t, analyzer.Top(table, 10), 3)
	assert.Empty(t, analyzer.Top(table, 0))
}

func TestWindowsAnalyzer_AllowlistScenario(t *testing.T) {
	got := defaultWindows().Analyze(context.Background(), windowsRecords("4624", "4624", "9999"))

	assert.Equal(t, []models.EventCount{
		{Key: "4624", Count: 2, Source: models.SourceWindows},
	}, got)
}

func TestWindowsAnalyzer_PreservesFrequencyOrder(t *testing.T) {
	records := windowsRecords("4688", "4624", "4624", "4672", "4688", "4624", "1102", "1102", "1102", "1102")

	got := defaultWindows().Analyze(context.Background(), records)

	assert.Equal(t, []models.EventCount{
		{Key: "4624", Count: 3, Source: models.SourceWindows},
		{Key: "4688", Count: 2, Source: models.SourceWindows},
		{Key: "4672", Count: 1, Source: models.SourceWindows},
	}, got)
}

func TestWindowsAnalyzer_NumericIdentifiers(t *testing.T) {
	got := defaultWindows().Analyze(context.Background(), windowsRecords(json.Number("4625"), float64(4625), "4625"))

	require.Len(t, got, 1)
	assert.Equal(t, "4625", got[0].Key)
	assert.Equal(t, 3, got[0].Count)
}

func TestWindowsAnalyzer_QuietSource(t *testing.T) {
	tests := []struct {
		name    string
		records []models.NormalizedRecord
	}{
		{"no records", nil},
		{"field absent", []models.NormalizedRecord{{"host": "a"}, {"host": "b"}}},
		{"field null", []models.NormalizedRecord{{"EventCode": nil}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaultWindows().Analyze(context.Background(), tt.records)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestWindowsAnalyzer_InjectedAllowlist(t *testing.T) {
	a := analyzer.NewWindowsAnalyzer(analyzer.WindowsOptions{Field: "id", SuspiciousIDs: []string{"1102"}})

	got := a.Analyze(context.Background(), []models.NormalizedRecord{{"id": "1102"}, {"id": "4624"}})

	assert.Equal(t, []models.EventCount{{Key: "1102", Count: 1, Source: models.SourceWindows}}, got)
	assert.Equal(t, "windows", a.Name())
}

func TestDNSAnalyzer_TLDScenario(t *testing.T) {
	findings := defaultDNS().Inspect(context.Background(), dnsRecords("evil.xyz", "evil.xyz", "short.com"))

	assert.Equal(t, []models.EventCount{
		{Key: "evil.xyz", Count: 2, Source: models.SourceDNSTLD},
	}, findings.SuspiciousTLD)
	assert.Empty(t, findings.LongName)
	assert.Equal(t, 3, findings.Queries)
}

func TestDNSAnalyzer_HeuristicsAreIndependent(t *testing.T) {
	long := strings.Repeat("a", 56) + ".xyz"
	require.Len(t, long, 60)

	findings := defaultDNS().Inspect(context.Background(), dnsRecords(long, long, long, "ok.com"))

	require.Len(t, findings.SuspiciousTLD, 1)
	require.Len(t, findings.LongName, 1)
	assert.Equal(t, long, findings.SuspiciousTLD[0].Key)
	assert.Equal(t, long, findings.LongName[0].Key)
	assert.Equal(t, findings.SuspiciousTLD[0].Count, findings.LongName[0].Count)
	assert.Equal(t, models.SourceDNSLongName, findings.LongName[0].Source)

	combined := findings.Combined()
	require.Len(t, combined, 2)
	assert.Equal(t, models.SourceDNSTLD, combined[0].Source)
	assert.Equal(t, models.SourceDNSLongName, combined[1].Source)
}

func TestDNSAnalyzer_LengthThresholdIsExclusive(t *testing.T) {
	exactly50 := strings.Repeat("b", 46) + ".com"
	fiftyOne := strings.Repeat("c", 47) + ".com"

	findings := defaultDNS().Inspect(context.Background(), dnsRecords(exactly50, fiftyOne))

	require.Len(t, findings.LongName, 1)
	assert.Equal(t, fiftyOne, findings.LongName[0].Key)
}

func TestDNSAnalyzer_CaseInsensitiveAndDropsEmpty(t *testing.T) {
	records := []models.NormalizedRecord{
		{"query": "EVIL.XYZ"},
		{"query": "evil.xyz"},
		{"query": ""},
		{"query": nil},
		{"other": "x.top"},
	}

	findings := defaultDNS().Inspect(context.Background(), records)

	assert.Equal(t, []models.EventCount{{Key: "evil.xyz", Count: 2, Source: models.SourceDNSTLD}}, findings.SuspiciousTLD)
	assert.Equal(t, 2, findings.Queries)
}

func TestDNSAnalyzer_DotlessDownloadSuffix(t *testing.T) {
	findings := defaultDNS().Inspect(context.Background(), dnsRecords("fastdownload", "files.download", "download.com"))

	keys := make([]string, 0)
	for _, f := range findings.SuspiciousTLD {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"fastdownload", "files.download"}, keys)
}

func TestDNSAnalyzer_TopNPerHeuristic(t *testing.T) {
	queries := make([]string, 0)
	for i := 0; i < 15; i++ {
		name := strings.Repeat(string(rune('a'+i)), 3) + ".top"
		for j := 0; j <= i; j++ {
			queries = append(queries, name)
		}
	}

	findings := defaultDNS().Inspect(context.Background(), dnsRecords(queries...))

	require.Len(t, findings.SuspiciousTLD, 10)
	assert.Equal(t, "ooo.top", findings.SuspiciousTLD[0].Key)
	assert.Equal(t, 15, findings.SuspiciousTLD[0].Count)
	for i := 1; i < len(findings.SuspiciousTLD); i++ {
		assert.GreaterOrEqual(t, findings.SuspiciousTLD[i-1].Count, findings.SuspiciousTLD[i].Count)
	}
	assert.Len(t, findings.Frequent, 15)
}

func TestDNSAnalyzer_FieldAbsent(t *testing.T) {
	a := defaultDNS()
	records := []models.NormalizedRecord{{"EventCode": "4624"}}

	findings := a.Inspect(context.Background(), records)

	assert.True(t, findings.Empty())
	assert.Empty(t, findings.Frequent)
	assert.Empty(t, a.Analyze(context.Background(), records))
	assert.Empty(t, a.Analyze(context.Background(), nil))
}

func TestDNSAnalyzer_InjectedOptions(t *testing.T) {
	a := analyzer.NewDNSAnalyzer(analyzer.DNSOptions{
		Field:             "name",
		SuspiciousTLDs:    []string{".RU"},
		LongNameThreshold: 10,
		TopN:              1,
	})

	findings := a.Inspect(context.Background(), []models.NormalizedRecord{
		{"name": "a.ru"}, {"name": "b.ru"}, {"name": "b.ru"}, {"name": "averyverylongname.com"},
	})

	assert.Equal(t, []models.EventCount{{Key: "b.ru", Count: 2, Source: models.SourceDNSTLD}}, findings.SuspiciousTLD)
	assert.Equal(t, []models.EventCount{{Key: "averyverylongname.com", Count: 1, Source: models.SourceDNSLongName}}, findings.LongName)
	assert.Empty(t, findings.Frequent)
	assert.Equal(t, "dns", a.Name())
}

var (
	_ analyzer.Analyzer = (*analyzer.WindowsAnalyzer)(nil)
	_ analyzer.Analyzer = (*analyzer.DNSAnalyzer)(nil)
)
