package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ratecompare/internal/domain"
	"ratecompare/internal/storage"
)

// StoreCatalog implements storage.StoreCatalog using PostgreSQL.
type StoreCatalog struct {
	pool *Pool
}

// NewStoreCatalog creates a new StoreCatalog.
func NewStoreCatalog(pool *Pool) *StoreCatalog {
	return &StoreCatalog{pool: pool}
}

// Compile-time interface check.
var _ storage.StoreCatalog = (*StoreCatalog)(nil)

// InsertStore adds a new store. Returns ErrDuplicateKey if store_id exists.
func (s *StoreCatalog) InsertStore(ctx context.Context, info *domain.StoreInfo) error {
	query := `
		INSERT INTO stores (
			store_id, name, address, city, state, zip, distance, year_built, square_footage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		info.StoreID,
		info.Name,
		info.Address,
		info.City,
		info.State,
		info.Zip,
		info.Distance,
		info.YearBuilt,
		info.SquareFootage,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

// GetStore retrieves a store by its ID. Returns ErrNotFound if not exists.
func (s *StoreCatalog) GetStore(ctx context.Context, storeID string) (*domain.StoreInfo, error) {
	query := `
		SELECT store_id, name, address, city, state, zip, distance, year_built, square_footage
		FROM stores
		WHERE store_id = $1
	`

	row := s.pool.QueryRow(ctx, query, storeID)
	info, err := scanStore(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get store by id: %w", err)
	}
	return info, nil
}

// ListStores retrieves all stores, ordered by distance ASC, store_id ASC.
func (s *StoreCatalog) ListStores(ctx context.Context) ([]*domain.StoreInfo, error) {
	query := `
		SELECT store_id, name, address, city, state, zip, distance, year_built, square_footage
		FROM stores
		ORDER BY distance ASC, store_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	return scanStores(rows)
}

// UpdateStoreMetadata sets year_built and square_footage for a store.
// Returns ErrNotFound if the store does not exist.
func (s *StoreCatalog) UpdateStoreMetadata(ctx context.Context, storeID string, yearBuilt *int, squareFootage *float64) error {
	query := `
		UPDATE stores
		SET year_built = $2, square_footage = $3
		WHERE store_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, storeID, yearBuilt, squareFootage)
	if err != nil {
		return fmt.Errorf("update store metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// InsertFacilities adds CRM facility rows in bulk. Fails the entire batch
// on a duplicate name.
func (s *StoreCatalog) InsertFacilities(ctx context.Context, records []*domain.FacilityRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin facilities tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO facility_records (name, shipping_street, square_footage, year_built)
		VALUES ($1, $2, $3, $4)
	`

	for _, r := range records {
		if r == nil || r.Name == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query, r.Name, r.ShippingStreet, r.SquareFootage, r.YearBuilt)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert facility %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit facilities tx: %w", err)
	}
	return nil
}

// ListFacilities retrieves all CRM facility rows, ordered by name ASC.
func (s *StoreCatalog) ListFacilities(ctx context.Context) ([]*domain.FacilityRecord, error) {
	query := `
		SELECT name, shipping_street, square_footage, year_built
		FROM facility_records
		ORDER BY name ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	defer rows.Close()

	return scanFacilities(rows)
}

// GetFacilityByName retrieves one CRM facility row by its exact listing name.
func (s *StoreCatalog) GetFacilityByName(ctx context.Context, name string) (*domain.FacilityRecord, error) {
	query := `
		SELECT name, shipping_street, square_footage, year_built
		FROM facility_records
		WHERE name = $1
	`

	row := s.pool.QueryRow(ctx, query, name)
	r, err := scanFacility(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get facility by name: %w", err)
	}
	return r, nil
}

// scanStore scans a single row into a StoreInfo.
func scanStore(row pgx.Row) (*domain.StoreInfo, error) {
	var info domain.StoreInfo

	err := row.Scan(
		&info.StoreID,
		&info.Name,
		&info.Address,
		&info.City,
		&info.State,
		&info.Zip,
		&info.Distance,
		&info.YearBuilt,
		&info.SquareFootage,
	)
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// scanStores scans multiple rows into a slice of StoreInfo.
func scanStores(rows pgx.Rows) ([]*domain.StoreInfo, error) {
	var stores []*domain.StoreInfo

	for rows.Next() {
		var info domain.StoreInfo

		err := rows.Scan(
			&info.StoreID,
			&info.Name,
			&info.Address,
			&info.City,
			&info.State,
			&info.Zip,
			&info.Distance,
			&info.YearBuilt,
			&info.SquareFootage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan store row: %w", err)
		}

		stores = append(stores, &info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store rows: %w", err)
	}

	return stores, nil
}

// scanFacility scans a single row into a FacilityRecord.
func scanFacility(row pgx.Row) (*domain.FacilityRecord, error) {
	var r domain.FacilityRecord

	err := row.Scan(
		&r.Name,
		&r.ShippingStreet,
		&r.SquareFootage,
		&r.YearBuilt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// scanFacilities scans multiple rows into a slice of FacilityRecord.
func scanFacilities(rows pgx.Rows) ([]*domain.FacilityRecord, error) {
	var records []*domain.FacilityRecord

	for rows.Next() {
		var r domain.FacilityRecord

		err := rows.Scan(
			&r.Name,
			&r.ShippingStreet,
			&r.SquareFootage,
			&r.YearBuilt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan facility row: %w", err)
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facility rows: %w", err)
	}

	return records, nil
}
