package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/telhawk-systems/telhawk-triage/internal/config"
	"github.com/telhawk-systems/telhawk-triage/internal/models"
	"github.com/telhawk-systems/telhawk-triage/pkg/output"
)

// Test command initialization and registration
func TestCommandsRegistered(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should not be nil")
	}

	expectedCommands := map[string]bool{
		"analyze":    false,
		"generate":   false,
		"heuristics": false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := expectedCommands[cmd.Name()]; ok {
			expectedCommands[cmd.Name()] = true
		}
	}

	for cmdName, found := range expectedCommands {
		if !found {
			t.Errorf("expected command '%s' to be registered with root command", cmdName)
		}
	}
}

func TestAnalyzeFlags(t *testing.T) {
	for _, name := range []string{"windows", "dns", "windows-field", "dns-field", "top", "output", "chart", "metrics-file"} {
		if analyzeCmd.Flags().Lookup(name) == nil {
			t.Errorf("analyze should have --%s flag", name)
		}
	}
	for _, name := range []string{"config", "log-level", "log-format"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("root should have persistent --%s flag", name)
		}
	}
}

func TestSourceSpecs(t *testing.T) {
	c := config.Default()
	c.DNS.Path = "dns.csv"

	windows, dns := sourceSpecs(c)

	if windows.Name != "windows" || windows.Path != "botsv1.json" || !windows.Required {
		t.Errorf("unexpected windows spec: %+v", windows)
	}
	if dns.Name != "dns" || dns.Path != "dns.csv" || dns.Required {
		t.Errorf("unexpected dns spec: %+v", dns)
	}
}

func TestWriterFor(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"dns.csv", false},
		{"DNS.CSV", false},
		{"dns.json", false},
		{"dns.jsonl", false},
		{"dns.parquet", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, err := writerFor(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil || w == nil {
				t.Errorf("expected writer, got err=%v", err)
			}
		})
	}
}

func TestWriterForNDJSON(t *testing.T) {
	for _, path := range []string{"dns.jsonl", "dns.ndjson"} {
		w, err := writerFor(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		var buf bytes.Buffer
		records := []models.RawRecord{{"query": "evil.xyz"}, {"query": "a.com"}}
		if err := w(&buf, records); err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if got, want := buf.String(), "{\"query\":\"evil.xyz\"}\n{\"query\":\"a.com\"}\n"; got != want {
			t.Errorf("%s: got %q, want %q", path, got, want)
		}
	}
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevErr, prevNoColor := output.Stdout, output.Stderr, color.NoColor
	output.Stdout, output.Stderr, color.NoColor = &buf, &buf, true
	t.Cleanup(func() {
		output.Stdout, output.Stderr, color.NoColor = prevOut, prevErr, prevNoColor
	})
	return &buf
}

func TestGenerateThenAnalyze(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	prevWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWd) })
	buf := captureOutput(t)

	windowsPath := filepath.Join(dir, "botsv1.json")
	dnsPath := filepath.Join(dir, "dns.csv")
	chartPath := filepath.Join(dir, "chart.png")
	metricsPath := filepath.Join(dir, "triage.prom")

	rootCmd.SetArgs([]string{"generate",
		"--windows-out", windowsPath, "--dns-out", dnsPath,
		"--windows-count", "200", "--dns-count", "100", "--seed", "7"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Wrote 200 Windows events") {
		t.Errorf("unexpected generate output: %s", buf.String())
	}
	buf.Reset()

	rootCmd.SetArgs([]string{"analyze", "--log-level", "error",
		"--windows", windowsPath, "--dns", dnsPath,
		"--output", "json", "--chart", chartPath, "--metrics-file", metricsPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var rep struct {
		RunID string `json:"run_id"`
		Top   []struct {
			Rank  int    `json:"rank"`
			Count int    `json:"count"`
			Key   string `json:"key"`
		} `json:"top"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatalf("analyze output is not JSON: %v\n%s", err, buf.String())
	}
	if rep.RunID == "" {
		t.Error("report should carry a run id")
	}
	if len(rep.Top) == 0 || len(rep.Top) > 10 {
		t.Fatalf("expected 1..10 ranked entries, got %d", len(rep.Top))
	}
	for i := 1; i < len(rep.Top); i++ {
		if rep.Top[i].Count > rep.Top[i-1].Count {
			t.Errorf("ranking not sorted at %d", i)
		}
	}

	if info, err := os.Stat(chartPath); err != nil || info.Size() == 0 {
		t.Errorf("chart not written: %v", err)
	}
	metrics, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics not written: %v", err)
	}
	if !strings.Contains(string(metrics), "telhawk_triage_last_run_success 1") {
		t.Errorf("metrics should record a successful run:\n%s", metrics)
	}

	buf.Reset()
	rootCmd.SetArgs([]string{"analyze", "--windows", filepath.Join(dir, "missing.json"), "--dns", "", "--chart", ""})
	if err := rootCmd.Execute(); err == nil {
		t.Error("analyze should fail when the Windows log is missing")
	}
}
