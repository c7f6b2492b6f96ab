package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/outboardpro/catalog/internal/observability"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// BuildReport summarizes one catalog build
type BuildReport struct {
	Groups    int               `json:"groups"`
	Built     int               `json:"built"`
	Rejected  []string          `json:"rejected"`
	Skipped   []domain.RowError `json:"-"`
	SkipCount int               `json:"skipped"`
}

// CatalogBuilderConfig holds configuration for the catalog builder
type CatalogBuilderConfig struct {
	Workers int
}

// CatalogBuilder drives decoding and assembly over a whole export
type CatalogBuilder struct {
	decoder domain.ExportDecoder
	workers int
}

// NewCatalogBuilder creates a catalog builder
func NewCatalogBuilder(decoder domain.ExportDecoder, config CatalogBuilderConfig) *CatalogBuilder {
	workers := config.Workers
	if workers <= 0 {
		workers = 1
	}
	return &CatalogBuilder{decoder: decoder, workers: workers}
}

// BuildFromReader decodes the export and builds its products.
// Decoder errors (unreadable input) are returned as-is.
func (b *CatalogBuilder) BuildFromReader(ctx context.Context, r io.Reader) ([]domain.Product, BuildReport, error) {
	raws, skipped, err := b.decoder.Decode(r)
	if err != nil {
		return nil, BuildReport{}, fmt.Errorf("decode export: %w", err)
	}
	observability.RowsSkipped.WithLabelValues(string(domain.SourceCSV)).Add(float64(len(skipped)))

	products, report, err := b.Build(ctx, raws)
	report.Skipped = append(skipped, report.Skipped...)
	report.SkipCount = len(report.Skipped)
	return products, report, err
}

// Build assembles each handle group, in parallel across groups. Output keeps
// first-seen handle order and each handle appears once. Records failing
// validation are dropped and listed in the report. Cancelling ctx stops
// further groups from being started.
func (b *CatalogBuilder) Build(ctx context.Context, raws []domain.RawProduct) ([]domain.Product, BuildReport, error) {
	report := BuildReport{Groups: len(raws), Rejected: []string{}}
	results := make([]*AssembleResult, len(raws))
	failures := make([]error, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	seen := make(map[string]bool, len(raws))
	for i := range raws {
		if gctx.Err() != nil {
			break
		}
		// Decoders group by handle already; a repeated handle is dropped here
		if h := raws[i].Handle; h != "" {
			if seen[h] {
				failures[i] = fmt.Errorf("%w: duplicate handle %q", domain.ErrValidation, h)
				continue
			}
			seen[h] = true
		}

		i := i
		g.Go(func() error {
			res, err := BuildProduct(&raws[i])
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	products := make([]domain.Product, 0, len(raws))
	for i, res := range results {
		if err := failures[i]; err != nil {
			if !errors.Is(err, domain.ErrValidation) {
				return nil, report, err
			}
			report.Rejected = append(report.Rejected, err.Error())
			observability.ProductsRejected.WithLabelValues(string(raws[i].Source)).Inc()
			log.Warn().Err(err).Str("handle", raws[i].Handle).Msg("product dropped")
			continue
		}
		if res == nil {
			continue
		}
		products = append(products, res.Product)
		report.Skipped = append(report.Skipped, res.Skipped...)
		observability.ProductsBuilt.WithLabelValues(string(raws[i].Source)).Inc()
	}

	report.Built = len(products)
	report.SkipCount = len(report.Skipped)
	return products, report, nil
}
