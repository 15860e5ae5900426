package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-triage/internal/generator"
	"github.com/telhawk-systems/telhawk-triage/internal/models"
	"github.com/telhawk-systems/telhawk-triage/pkg/output"
)

var (
	generateWindowsOut   string
	generateDNSOut       string
	generateWindowsCount int
	generateDNSCount     int
	generateTLDRatio     float64
	generateLongRatio    float64
	generateSeed         int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write synthetic Windows and DNS logs",
	Long: `Generate a Splunk-style Windows event export and a DNS query log with a
configurable share of suspicious names, for demos and testing.

The DNS file format follows its extension (.csv, .json, .jsonl).

Examples:
  triage generate
  triage generate --windows-count 2000 --dns-out dns.json --seed 42`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateWindowsOut, "windows-out", "botsv1.json", "Windows event output file")
	generateCmd.Flags().StringVar(&generateDNSOut, "dns-out", "dns.csv", "DNS query output file")
	generateCmd.Flags().IntVar(&generateWindowsCount, "windows-count", 0, "number of Windows events")
	generateCmd.Flags().IntVar(&generateDNSCount, "dns-count", 0, "number of DNS queries")
	generateCmd.Flags().Float64Var(&generateTLDRatio, "suspicious-tld-ratio", 0, "share of DNS queries using a suspicious TLD")
	generateCmd.Flags().Float64Var(&generateLongRatio, "long-name-ratio", 0, "share of DNS queries with long names")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "random seed (0 = random)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	c, err := loadedConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	g := c.Generator
	if cmd.Flags().Changed("windows-count") {
		g.WindowsCount = generateWindowsCount
	}
	if cmd.Flags().Changed("dns-count") {
		g.DNSCount = generateDNSCount
	}
	if cmd.Flags().Changed("suspicious-tld-ratio") {
		g.SuspiciousTLD = generateTLDRatio
	}
	if cmd.Flags().Changed("long-name-ratio") {
		g.LongName = generateLongRatio
	}
	if cmd.Flags().Changed("seed") {
		g.Seed = generateSeed
	}
	c.Generator = g
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gen := generator.New(generator.Options{
		WindowsCount:       g.WindowsCount,
		DNSCount:           g.DNSCount,
		SuspiciousTLDRatio: g.SuspiciousTLD,
		LongNameRatio:      g.LongName,
		Seed:               g.Seed,
	})

	windows := gen.WindowsEvents()
	if err := writeRecords(generateWindowsOut, windows, generator.WriteSplunkJSON); err != nil {
		return err
	}
	output.Success("Wrote %d Windows events to %s", len(windows), generateWindowsOut)

	dnsWriter, err := writerFor(generateDNSOut)
	if err != nil {
		return err
	}
	queries := gen.DNSQueries()
	if err := writeRecords(generateDNSOut, queries, dnsWriter); err != nil {
		return err
	}
	output.Success("Wrote %d DNS queries to %s", len(queries), generateDNSOut)
	return nil
}

type recordWriter func(io.Writer, []models.RawRecord) error

func writerFor(path string) (recordWriter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return generator.WriteCSV, nil
	case ".json":
		return generator.WriteJSON, nil
	case ".jsonl", ".ndjson":
		return generator.WriteNDJSON, nil
	default:
		return nil, fmt.Errorf("unsupported output format for %s (want .csv or .json)", path)
	}
}

func writeRecords(path string, records []models.RawRecord, write recordWriter) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
