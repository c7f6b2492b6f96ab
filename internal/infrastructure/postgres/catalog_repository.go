package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/outboardpro/catalog/internal/domain"
	"github.com/rs/zerolog/log"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS catalog_products (
	handle         TEXT PRIMARY KEY,
	payload        JSONB NOT NULL,
	power_category TEXT NOT NULL,
	brand          TEXT NOT NULL,
	in_stock       BOOLEAN NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertSQL = `
INSERT INTO catalog_products (handle, payload, power_category, brand, in_stock, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (handle) DO UPDATE SET
	payload = EXCLUDED.payload,
	power_category = EXCLUDED.power_category,
	brand = EXCLUDED.brand,
	in_stock = EXCLUDED.in_stock,
	updated_at = now()`

// CatalogRepository stores catalog snapshots in PostgreSQL
type CatalogRepository struct {
	DB *pgxpool.Pool
}

// NewCatalogRepository opens a pool and makes sure the snapshot table exists
func NewCatalogRepository(ctx context.Context, databaseURL string) (*CatalogRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create catalog table: %w", err)
	}
	return &CatalogRepository{DB: pool}, nil
}

// SaveCatalog upserts every product in a single transaction
func (r *CatalogRepository) SaveCatalog(ctx context.Context, products []domain.Product) error {
	rows, err := snapshotRows(products)
	if err != nil {
		return err
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertSQL, row.Handle, row.Payload, row.PowerCategory, row.Brand, row.InStock)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert catalog: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	log.Info().Int("products", len(rows)).Msg("catalog snapshot saved")
	return nil
}

// Close releases the pool
func (r *CatalogRepository) Close() {
	r.DB.Close()
}

type snapshotRow struct {
	Handle        string
	Payload       []byte
	PowerCategory string
	Brand         string
	InStock       bool
}

func snapshotRows(products []domain.Product) ([]snapshotRow, error) {
	rows := make([]snapshotRow, 0, len(products))
	for i := range products {
		p := &products[i]
		payload, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", p.Handle, err)
		}
		rows = append(rows, snapshotRow{
			Handle:        p.Handle,
			Payload:       payload,
			PowerCategory: string(p.PowerCategory),
			Brand:         p.Brand,
			InStock:       p.InStock,
		})
	}
	return rows, nil
}
