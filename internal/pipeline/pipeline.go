package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/telhawk-systems/telhawk-triage/internal/analyzer"
	"github.com/telhawk-systems/telhawk-triage/internal/loader"
	"github.com/telhawk-systems/telhawk-triage/internal/logging"
	"github.com/telhawk-systems/telhawk-triage/internal/metrics"
	"github.com/telhawk-systems/telhawk-triage/internal/models"
	"github.com/telhawk-systems/telhawk-triage/internal/normalizer"
	"github.com/telhawk-systems/telhawk-triage/internal/ranking"
	"github.com/telhawk-systems/telhawk-triage/internal/report"
)

// Pipeline orchestrates loading, normalization, detection and ranking.
type Pipeline struct {
	loader  *loader.Loader
	windows analyzer.Analyzer
	dns     *analyzer.DNSAnalyzer
	ranker  *ranking.Aggregator
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// Options wires the collaborators. Nil fields fall back to defaults.
type Options struct {
	Loader  *loader.Loader
	Windows analyzer.Analyzer
	DNS     *analyzer.DNSAnalyzer
	Ranker  *ranking.Aggregator
	Metrics *metrics.Metrics
	Logger  *logging.Logger
}

// New creates a pipeline instance.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		loader:  opts.Loader,
		windows: opts.Windows,
		dns:     opts.DNS,
		ranker:  opts.Ranker,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	if p.loader == nil {
		p.loader = loader.New(nil)
	}
	if p.windows == nil {
		p.windows = analyzer.NewWindowsAnalyzer(analyzer.WindowsOptions{
			Field:         "EventCode",
			SuspiciousIDs: models.DefaultSuspiciousEventIDs(),
		})
	}
	if p.dns == nil {
		p.dns = analyzer.NewDNSAnalyzer(analyzer.DNSOptions{
			Field:             "query",
			SuspiciousTLDs:    models.DefaultSuspiciousTLDs(),
			LongNameThreshold: models.DefaultLongNameThreshold,
			TopN:              models.DefaultHeuristicTopN,
			FrequentTopN:      models.DefaultFrequentTopN,
		})
	}
	if p.ranker == nil {
		p.ranker = ranking.NewAggregator(models.DefaultRankingTopN)
	}
	if p.metrics == nil {
		p.metrics = metrics.New()
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	return p
}

// Metrics returns the collectors updated by Run.
func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}

// Run loads both sources and analyzes them.
func (p *Pipeline) Run(ctx context.Context, windowsSpec, dnsSpec loader.SourceSpec) (*report.Report, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline not configured")
	}
	ctx = ensureRunID(ctx)
	p.metrics.LastRunSuccess.Set(0)

	start := time.Now()
	windowsSrc, err := p.load(ctx, windowsSpec)
	if err != nil {
		return nil, err
	}
	dnsSrc, err := p.load(ctx, dnsSpec)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveStage("load", start)

	return p.Analyze(ctx, windowsSrc, dnsSrc)
}

// Analyze runs detection and ranking over already loaded sources.
// An absent DNS source contributes nothing to the ranking.
func (p *Pipeline) Analyze(ctx context.Context, windowsSrc, dnsSrc loader.Source) (*report.Report, error) {
	ctx = ensureRunID(ctx)
	log := p.logger

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	start := time.Now()
	windowsSummary, windowsRecords := p.normalize(ctx, windowsSrc)
	dnsSummary, dnsRecords := p.normalize(ctx, dnsSrc)
	p.metrics.ObserveStage("normalize", start)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	start = time.Now()
	var windowsFindings []models.EventCount
	if windowsSrc.Present() {
		windowsFindings = p.windows.Analyze(ctx, windowsRecords)
	}
	var dnsFindings analyzer.Findings
	if dnsSrc.Present() {
		dnsFindings = p.dns.Inspect(ctx, dnsRecords)
	}
	p.metrics.ObserveStage("analyze", start)

	p.countFindings(windowsFindings)
	p.countFindings(dnsFindings.Combined())
	log.InfoContext(ctx, "heuristics applied",
		logging.Source(p.windows.Name()), logging.Findings(len(windowsFindings)))
	if dnsSrc.Present() {
		log.InfoContext(ctx, "heuristics applied",
			logging.Source(p.dns.Name()), logging.Findings(len(dnsFindings.Combined())))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	start = time.Now()
	top := p.ranker.Rank(windowsFindings, dnsFindings.Combined())
	p.metrics.ObserveStage("rank", start)
	p.metrics.RankedEntries.Set(float64(len(top)))
	log.InfoContext(ctx, "ranking built", "top_n", p.ranker.TopN(), "entries", len(top))
	p.metrics.LastRunSuccess.Set(1)

	if windowsFindings == nil {
		windowsFindings = []models.EventCount{}
	}

	return &report.Report{
		RunID:       logging.GetRunID(ctx),
		GeneratedAt: time.Now().UTC(),
		Sources:     []report.SourceSummary{windowsSummary, dnsSummary},
		Windows:     windowsFindings,
		DNS:         dnsFindings,
		Top:         top,
	}, nil
}

func (p *Pipeline) load(ctx context.Context, spec loader.SourceSpec) (loader.Source, error) {
	start := time.Now()
	src, err := p.loader.Load(ctx, spec)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to load source",
			logging.Source(spec.Name), logging.Path(spec.Path), logging.Error(err))
		return loader.Source{}, fmt.Errorf("load %s: %w", spec.Name, err)
	}

	if !src.Present() {
		p.metrics.SourcesAbsent.WithLabelValues(spec.Name).Inc()
		p.logger.WarnContext(ctx, "optional source skipped",
			logging.Source(spec.Name), logging.Path(spec.Path), logging.Reason(src.Reason()))
		return src, nil
	}

	p.metrics.RecordsLoaded.WithLabelValues(spec.Name).Add(float64(len(src.Records())))
	p.logger.InfoContext(ctx, "source loaded",
		logging.Source(spec.Name),
		logging.Path(spec.Path),
		logging.Format(src.Format()),
		logging.Records(len(src.Records())),
		logging.Duration(time.Since(start).Milliseconds()))
	return src, nil
}

func (p *Pipeline) normalize(ctx context.Context, src loader.Source) (report.SourceSummary, []models.NormalizedRecord) {
	summary := report.SourceSummary{
		Name:    src.Name(),
		Path:    src.Path(),
		Format:  src.Format(),
		Present: src.Present(),
		Reason:  src.Reason(),
	}
	if !src.Present() {
		return summary, nil
	}

	schema := normalizer.Infer(src.Records())
	records := schema.Apply(src.Records())
	summary.Records = len(records)
	summary.JoinColumns = schema.JoinColumns()

	p.metrics.JoinColumns.WithLabelValues(src.Name()).Set(float64(len(summary.JoinColumns)))
	if len(summary.JoinColumns) > 0 {
		p.logger.DebugContext(ctx, "joined sequence columns",
			logging.Source(src.Name()), "columns", summary.JoinColumns)
	}
	return summary, records
}

func (p *Pipeline) countFindings(findings []models.EventCount) {
	for _, f := range findings {
		p.metrics.Findings.WithLabelValues(f.Source).Inc()
	}
}

func ensureRunID(ctx context.Context) context.Context {
	if logging.GetRunID(ctx) != "" {
		return ctx
	}
	return logging.ContextWithRunID(ctx, logging.NewRunID())
}
