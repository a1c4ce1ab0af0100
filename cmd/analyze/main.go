// Package main runs the end-to-end rate comparison: load observations,
// normalize, dedupe, detect outliers, aggregate with adjustments, and
// write the records CSV, grouped summary CSV and Excel workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"ratecompare/internal/adjust"
	"ratecompare/internal/aggregate"
	"ratecompare/internal/analysis"
	"ratecompare/internal/config"
	"ratecompare/internal/csvio"
	"ratecompare/internal/dedup"
	"ratecompare/internal/domain"
	"ratecompare/internal/observability"
	"ratecompare/internal/outlier"
	"ratecompare/internal/session"
	"ratecompare/internal/storage/bootstrap"
)

func main() {
	subject := flag.String("subject", "", "Subject store id (required)")
	sizes := flag.String("sizes", "", "Comma-separated unit sizes to compare, e.g. 5x5,10x10 (required)")
	input := flag.String("input", "", "Records CSV to analyze instead of the databases")
	sessionPath := flag.String("session", "", "Session snapshot file; accumulates records and settings across runs")
	outputDir := flag.String("output-dir", "", "Output directory (default from OUTPUT_DIR)")
	anchorStr := flag.String("anchor", "", "Trailing-window anchor date YYYY-MM-DD (default: most recent observation)")
	captive := flag.Float64("captive-pct", 0, "Captive market premium, percent")
	lossToLease := flag.Float64("loss-to-lease-pct", 0, "Loss to lease, percent")
	climate := flag.Float64("climate-pct", 0, "Climate control adjustment, percent")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *subject == "" || *sizes == "" {
		logger.Fatal("both -subject and -sizes are required")
	}

	cfg := config.Load()
	if *outputDir == "" {
		*outputDir = cfg.OutputDir
	}

	var anchor time.Time
	if *anchorStr != "" {
		anchor, err = time.Parse("2006-01-02", *anchorStr)
		if err != nil {
			logger.Fatal("parse -anchor", zap.Error(err))
		}
	}

	factors := domain.AdjustmentFactors{
		CaptiveMarketPct:  *captive,
		LossToLeasePct:    *lossToLease,
		ClimateControlPct: *climate,
	}
	selectedSizes := splitList(*sizes)

	ctx := context.Background()
	metrics := observability.NewMetrics("ratecompare")
	started := time.Now()

	var result *analysis.Result
	if *input != "" {
		result, err = analyzeCSV(*input, *subject, selectedSizes, factors, anchor)
	} else {
		result, err = analyzeDatabases(ctx, cfg, *subject, selectedSizes, factors, anchor)
	}
	if err != nil {
		metrics.AnalysisRuns.WithLabelValues("error").Inc()
		logger.Fatal("analysis failed", zap.Error(err))
	}

	if *sessionPath != "" {
		result, err = foldIntoSession(*sessionPath, *subject, selectedSizes, factors, anchor, result)
		if err != nil {
			metrics.AnalysisRuns.WithLabelValues("error").Inc()
			logger.Fatal("session", zap.Error(err))
		}
	}

	metrics.AnalysisRuns.WithLabelValues("success").Inc()
	metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
	metrics.RecordsNormalized.Add(float64(len(result.Records)))
	metrics.OutliersDetected.Add(float64(len(result.Outliers)))

	logger.Info("analysis complete",
		zap.Int("records", len(result.Records)),
		zap.Int("groups", len(result.Groups)),
		zap.Int("outlier_candidates", len(result.Outliers)),
	)
	for _, o := range result.Outliers {
		logger.Warn("outlier candidate",
			zap.String("store_id", o.Record.StoreID),
			zap.String("size", o.Record.Size),
			zap.Time("date", o.Record.Date),
			zap.Float64("deviation", o.Deviation),
			zap.String("reason", o.Reason),
		)
	}

	if err := writeOutputs(*outputDir, result); err != nil {
		logger.Fatal("write outputs", zap.Error(err))
	}
	logger.Info("outputs written",
		zap.String("records", filepath.Join(*outputDir, "records.csv")),
		zap.String("summary", filepath.Join(*outputDir, "summary.csv")),
		zap.String("workbook", filepath.Join(*outputDir, "summary.xlsx")),
	)
}

// analyzeCSV runs the pipeline over a previously exported records CSV,
// skipping the storage layer entirely.
func analyzeCSV(path, subject string, sizes []string, factors domain.AdjustmentFactors, anchor time.Time) (*analysis.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	records, err := csvio.ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	merged := dedup.Merge(nil, records)
	return computeFromRecords(merged, subject, sizes, nil, factors, anchor), nil
}

// computeFromRecords runs outlier detection and aggregation over an
// already-merged record set.
func computeFromRecords(records []domain.RateRecord, subject string, sizes []string, rankings map[string]domain.StoreRankings, factors domain.AdjustmentFactors, anchor time.Time) *analysis.Result {
	outliers := outlier.Detect(records)
	calc := adjust.NewCalculator(subject, rankings, factors)
	groups := aggregate.Run(records, aggregate.Params{
		SelectedSizes:  sizes,
		SubjectStoreID: subject,
		AdjustmentFor:  calc.For,
		Anchor:         anchor,
	})
	return &analysis.Result{Records: records, Outliers: outliers, Groups: groups}
}

// foldIntoSession merges this run's records and settings into the
// session snapshot at path, recomputes the outputs over the
// accumulated working set, and writes the snapshot back. The session's
// explicit rankings drive the adjustments on subsequent runs.
func foldIntoSession(path, subject string, sizes []string, factors domain.AdjustmentFactors, anchor time.Time, result *analysis.Result) (*analysis.Result, error) {
	now := time.Now().UTC()

	state, err := loadSession(path, subject, now)
	if err != nil {
		return nil, err
	}

	state = state.WithMerged(now, result.Records)
	state = state.WithSelectedSizes(now, sizes)
	state = state.WithFactors(now, factors)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create session file: %w", err)
	}
	if err := session.Snapshot(f, state); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close session file: %w", err)
	}

	return computeFromRecords(state.Records, subject, sizes, state.Rankings, state.Factors, anchor), nil
}

// loadSession restores the snapshot at path, or starts a fresh session
// when the file does not exist yet.
func loadSession(path, subject string, now time.Time) (session.State, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return session.New(subject, now), nil
	}
	if err != nil {
		return session.State{}, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	state, err := session.Restore(f)
	if err != nil {
		return session.State{}, err
	}
	if state.SubjectStoreID != subject {
		return session.State{}, fmt.Errorf("session subject is %q, not %q", state.SubjectStoreID, subject)
	}
	return state, nil
}

// analyzeDatabases runs the pipeline against Postgres and ClickHouse.
func analyzeDatabases(ctx context.Context, cfg config.Config, subject string, sizes []string, factors domain.AdjustmentFactors, anchor time.Time) (*analysis.Result, error) {
	if err := cfg.RequireDatabases(); err != nil {
		return nil, err
	}

	stores, cleanup, err := bootstrap.Connect(ctx, cfg.PostgresDSN, cfg.ClickhouseDSN)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	runner := analysis.New(analysis.Options{
		Catalog:        stores.Catalog,
		Observations:   stores.Observations,
		SubjectStoreID: subject,
		SelectedSizes:  sizes,
		Factors:        factors,
		Anchor:         anchor,
	})
	return runner.Run(ctx)
}

// writeOutputs writes the three export artifacts to dir.
func writeOutputs(dir string, result *analysis.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	writers := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"records.csv", func(f *os.File) error { return csvio.WriteRecords(f, result.Records) }},
		{"summary.csv", func(f *os.File) error { return csvio.WriteSummary(f, result.Groups) }},
		{"summary.xlsx", func(f *os.File) error { return csvio.WriteWorkbook(f, result.Groups) }},
	}

	for _, w := range writers {
		f, err := os.Create(filepath.Join(dir, w.name))
		if err != nil {
			return fmt.Errorf("create %s: %w", w.name, err)
		}
		if err := w.write(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", w.name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", w.name, err)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
