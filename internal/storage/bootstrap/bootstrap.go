// Package bootstrap connects the storage backends and applies the
// embedded migrations, giving binaries one call to stand up the
// catalog and observation stores.
package bootstrap

import (
	"context"
	"fmt"

	"ratecompare/internal/storage"
	chstore "ratecompare/internal/storage/clickhouse"
	"ratecompare/internal/storage/migrations"
	pgstore "ratecompare/internal/storage/postgres"
)

// Stores bundles the two storage interfaces the pipeline needs.
type Stores struct {
	Catalog      storage.StoreCatalog
	Observations storage.RateObservationStore
}

// Connect opens Postgres and ClickHouse, runs migrations on both, and
// returns the stores plus a cleanup function that closes the
// connections.
func Connect(ctx context.Context, postgresDSN, clickhouseDSN string) (*Stores, func(), error) {
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	stores := &Stores{
		Catalog:      pgstore.NewStoreCatalog(pool),
		Observations: chstore.NewObservationStore(conn),
	}

	cleanup := func() {
		conn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}
