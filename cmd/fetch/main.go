// Package main audits observation coverage and backfills missing date
// ranges from the vendor rate feed: gap analysis, API cost estimate,
// then optional fetch-and-persist per missing range.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ratecompare/internal/config"
	"ratecompare/internal/gaps"
	"ratecompare/internal/observability"
	"ratecompare/internal/ratefeed"
	"ratecompare/internal/storage"
	"ratecompare/internal/storage/bootstrap"
)

func main() {
	fromStr := flag.String("from", "", "Coverage range start YYYY-MM-DD (required)")
	toStr := flag.String("to", "", "Coverage range end YYYY-MM-DD (default today)")
	storeList := flag.String("stores", "", "Comma-separated store ids (default: all catalog stores)")
	backfill := flag.Bool("backfill", false, "Fetch missing ranges from the vendor API and persist them")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *fromStr == "" {
		logger.Fatal("-from is required")
	}
	from, err := time.Parse("2006-01-02", *fromStr)
	if err != nil {
		logger.Fatal("parse -from", zap.Error(err))
	}
	to := time.Now().UTC()
	if *toStr != "" {
		to, err = time.Parse("2006-01-02", *toStr)
		if err != nil {
			logger.Fatal("parse -to", zap.Error(err))
		}
	}

	cfg := config.Load()
	if err := cfg.RequireDatabases(); err != nil {
		logger.Fatal("configuration", zap.Error(err))
	}
	if *backfill {
		if err := cfg.RequireRateFeed(); err != nil {
			logger.Fatal("configuration", zap.Error(err))
		}
	}

	ctx := context.Background()

	stores, cleanup, err := bootstrap.Connect(ctx, cfg.PostgresDSN, cfg.ClickhouseDSN)
	if err != nil {
		logger.Fatal("connect storage", zap.Error(err))
	}
	defer cleanup()

	storeIDs, err := resolveStoreIDs(ctx, stores.Catalog, *storeList)
	if err != nil {
		logger.Fatal("resolve stores", zap.Error(err))
	}
	if len(storeIDs) == 0 {
		logger.Fatal("no stores to audit")
	}

	report, err := coverageReport(ctx, stores.Observations, storeIDs, from, to)
	if err != nil {
		logger.Fatal("coverage analysis", zap.Error(err))
	}
	logReport(logger, report)

	if !*backfill {
		return
	}

	client := ratefeed.NewClient(cfg.RateFeedBaseURL, cfg.RateFeedUser, cfg.RateFeedPassword,
		ratefeed.WithHourlyLimit(cfg.RateFeedHourlyLimit),
		ratefeed.WithMaxRetries(cfg.RateFeedMaxRetries),
		ratefeed.WithLogger(logger),
	)

	metrics := observability.NewMetrics("ratecompare")
	if err := backfillGaps(ctx, logger, metrics, client, stores.Observations, report); err != nil {
		logger.Fatal("backfill", zap.Error(err))
	}
}

// resolveStoreIDs returns the explicit list when given, otherwise every
// store in the catalog.
func resolveStoreIDs(ctx context.Context, catalog storage.StoreCatalog, list string) ([]string, error) {
	if list != "" {
		var ids []string
		for _, id := range strings.Split(list, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	all, err := catalog.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	ids := make([]string, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.StoreID)
	}
	return ids, nil
}

func coverageReport(ctx context.Context, obs storage.RateObservationStore, storeIDs []string, from, to time.Time) (gaps.Report, error) {
	datesByStore, err := obs.DatesWithData(ctx, storeIDs, from, to)
	if err != nil {
		return gaps.Report{}, fmt.Errorf("query coverage: %w", err)
	}
	return gaps.Analyze(storeIDs, datesByStore, from, to), nil
}

func logReport(logger *zap.Logger, report gaps.Report) {
	for _, cov := range report.Stores {
		if cov.Complete() {
			logger.Info("coverage complete", zap.String("store_id", cov.StoreID))
			continue
		}
		fields := []zap.Field{
			zap.String("store_id", cov.StoreID),
			zap.Int("missing_days", cov.MissingDays()),
			zap.Float64("coverage_pct", cov.CoveragePct()),
		}
		for _, rng := range cov.Missing {
			fields = append(fields, zap.String("gap",
				fmt.Sprintf("%s..%s", rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))))
		}
		logger.Warn("coverage gaps", fields...)
	}

	logger.Info("coverage summary",
		zap.Int("stores_audited", len(report.Stores)),
		zap.Int("stores_with_gaps", len(report.StoresWithGaps())),
		zap.Ints("years_needed", report.YearsNeeded),
		zap.Float64("estimated_cost_usd", report.EstimatedCost),
	)
}

// backfillGaps fetches each store's missing ranges and persists them.
// Duplicate batches can happen when a range was partially covered by a
// unit size the coverage query did not see; those are logged and
// skipped, not fatal.
func backfillGaps(ctx context.Context, logger *zap.Logger, metrics *observability.Metrics, client *ratefeed.Client, obs storage.RateObservationStore, report gaps.Report) error {
	for _, cov := range report.Stores {
		if cov.Complete() {
			continue
		}

		vendorID, err := strconv.Atoi(cov.StoreID)
		if err != nil {
			logger.Warn("store id is not a vendor id, skipping",
				zap.String("store_id", cov.StoreID))
			continue
		}

		for _, rng := range cov.Missing {
			start := time.Now()
			payloads, err := client.HistoricalRates(ctx, vendorID, rng.Start, rng.End)
			metrics.RateFeedCallLatency.Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.RateFeedRequests.WithLabelValues("error").Inc()
				return fmt.Errorf("fetch store %s range %s..%s: %w",
					cov.StoreID, rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"), err)
			}
			metrics.RateFeedRequests.WithLabelValues("ok").Inc()

			rows := ratefeed.ToObservations(payloads)
			if len(rows) == 0 {
				logger.Info("vendor returned no rows",
					zap.String("store_id", cov.StoreID),
					zap.String("range", fmt.Sprintf("%s..%s", rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))))
				continue
			}

			if err := obs.InsertBulk(ctx, rows); err != nil {
				if errors.Is(err, storage.ErrDuplicateKey) {
					metrics.BatchesRejected.WithLabelValues("duplicate").Inc()
					logger.Warn("batch overlaps existing rows, skipped",
						zap.String("store_id", cov.StoreID))
					continue
				}
				return fmt.Errorf("persist store %s: %w", cov.StoreID, err)
			}
			metrics.ObservationsInserted.Add(float64(len(rows)))

			logger.Info("backfilled range",
				zap.String("store_id", cov.StoreID),
				zap.Int("rows", len(rows)),
				zap.String("range", fmt.Sprintf("%s..%s", rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))))
		}
	}
	return nil
}
