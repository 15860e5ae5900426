package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-triage/internal/analyzer"
	"github.com/telhawk-systems/telhawk-triage/internal/config"
	"github.com/telhawk-systems/telhawk-triage/internal/loader"
	"github.com/telhawk-systems/telhawk-triage/internal/logging"
	"github.com/telhawk-systems/telhawk-triage/internal/metrics"
	"github.com/telhawk-systems/telhawk-triage/internal/pipeline"
	"github.com/telhawk-systems/telhawk-triage/internal/ranking"
	"github.com/telhawk-systems/telhawk-triage/internal/report"
	"github.com/telhawk-systems/telhawk-triage/pkg/output"
)

var (
	analyzeWindows      string
	analyzeDNS          string
	analyzeWindowsField string
	analyzeDNSField     string
	analyzeTop          int
	analyzeOutput       string
	analyzeChart        string
	analyzeMetricsFile  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank suspicious Windows events and DNS queries",
	Long: `Load the Windows event log and the optional DNS query log, apply the
suspicion heuristics and print the top-N ranking.

Configuration cascade (priority order):
  1. Command-line flags
  2. TRIAGE_* environment variables
  3. ./triage.yaml (project directory)
  4. ~/.triage/triage.yaml (user directory)
  5. Built-in defaults

Examples:
  # Windows log only
  triage analyze --windows botsv1.json

  # Both sources, JSON report, no chart
  triage analyze --windows botsv1.json --dns dns.csv --output json --chart ""

  # Export run metrics for the node_exporter textfile collector
  triage analyze --metrics-file /var/lib/node_exporter/triage.prom`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeWindows, "windows", "w", "", "Windows event log (.json, .jsonl, .csv)")
	analyzeCmd.Flags().StringVarP(&analyzeDNS, "dns", "d", "", "DNS query log (.json, .jsonl, .csv); skipped when absent")
	analyzeCmd.Flags().StringVar(&analyzeWindowsField, "windows-field", "", "field holding the Windows event ID")
	analyzeCmd.Flags().StringVar(&analyzeDNSField, "dns-field", "", "field holding the DNS query name")
	analyzeCmd.Flags().IntVarP(&analyzeTop, "top", "n", 0, "number of entries in the final ranking")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "output format: table, json, yaml")
	analyzeCmd.Flags().StringVar(&analyzeChart, "chart", "", `PNG bar chart path ("" disables)`)
	analyzeCmd.Flags().StringVar(&analyzeMetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	c, err := loadedConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with flags if provided
	if cmd.Flags().Changed("windows") {
		c.Windows.Path = analyzeWindows
	}
	if cmd.Flags().Changed("dns") {
		c.DNS.Path = analyzeDNS
	}
	if cmd.Flags().Changed("windows-field") {
		c.Windows.Field = analyzeWindowsField
	}
	if cmd.Flags().Changed("dns-field") {
		c.DNS.Field = analyzeDNSField
	}
	if cmd.Flags().Changed("top") {
		c.Ranking.TopN = analyzeTop
	}
	if cmd.Flags().Changed("output") {
		c.Report.Output = analyzeOutput
	}
	if cmd.Flags().Changed("chart") {
		c.Report.ChartPath = analyzeChart
	}
	if cmd.Flags().Changed("metrics-file") {
		c.Metrics.Textfile = analyzeMetricsFile
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(c)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithRunID(ctx, logging.NewRunID())

	for _, w := range c.Warnings() {
		logger.WarnContext(ctx, w)
	}

	m := metrics.New()
	pipe := newPipeline(c, m, logger)
	windowsSpec, dnsSpec := sourceSpecs(c)

	rep, runErr := pipe.Run(ctx, windowsSpec, dnsSpec)
	if runErr == nil {
		runErr = publish(ctx, c, rep, logger)
	}
	if c.Metrics.Textfile != "" {
		if err := m.WriteTextfile(c.Metrics.Textfile); err != nil {
			logger.ErrorContext(ctx, "failed to write metrics", logging.Path(c.Metrics.Textfile), logging.Error(err))
		}
	}
	return runErr
}

// publish prints the report and writes the chart.
func publish(ctx context.Context, c *config.Config, rep *report.Report, logger *logging.Logger) error {
	if err := report.Print(rep, report.Format(c.Report.Output)); err != nil {
		return err
	}

	if c.Report.ChartPath == "" {
		return nil
	}
	opts := report.DefaultChartOptions()
	opts.Title = c.Report.Title
	opts.DPI = c.Report.ChartDPI
	if err := report.WriteChart(c.Report.ChartPath, rep.Top, opts); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}

	logger.InfoContext(ctx, "chart written", logging.Path(c.Report.ChartPath))
	if report.Format(c.Report.Output) == report.FormatTable {
		output.Success("Chart saved to %s", c.Report.ChartPath)
	}
	return nil
}

func newPipeline(c *config.Config, m *metrics.Metrics, logger *logging.Logger) *pipeline.Pipeline {
	h := c.Heuristics
	return pipeline.New(pipeline.Options{
		Loader: loader.New(loader.DefaultRegistry()),
		Windows: analyzer.NewWindowsAnalyzer(analyzer.WindowsOptions{
			Field:         c.Windows.Field,
			SuspiciousIDs: h.SuspiciousEventIDs,
		}),
		DNS: analyzer.NewDNSAnalyzer(analyzer.DNSOptions{
			Field:             c.DNS.Field,
			SuspiciousTLDs:    h.SuspiciousTLDs,
			LongNameThreshold: h.LongNameThreshold,
			TopN:              h.TopN,
			FrequentTopN:      h.FrequentTopN,
		}),
		Ranker:  ranking.NewAggregator(c.Ranking.TopN),
		Metrics: m,
		Logger:  logger,
	})
}

func sourceSpecs(c *config.Config) (windows, dns loader.SourceSpec) {
	windows = loader.SourceSpec{Name: "windows", Path: c.Windows.Path, Required: c.Windows.Required}
	dns = loader.SourceSpec{Name: "dns", Path: c.DNS.Path, Required: c.DNS.Required}
	return windows, dns
}
