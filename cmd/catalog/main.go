package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/outboardpro/catalog/config"
	"github.com/outboardpro/catalog/internal/infrastructure/artifact"
	"github.com/outboardpro/catalog/internal/infrastructure/postgres"
	"github.com/outboardpro/catalog/internal/infrastructure/shopify"
	"github.com/outboardpro/catalog/internal/observability"
	"github.com/outboardpro/catalog/internal/usecase"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "catalog build failed: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	observability.SetupConsoleLogger(os.Stderr, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	fmt.Fprintf(out, "Reading %s\n", cfg.Catalog.Input)

	f, err := os.Open(cfg.Catalog.Input)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	builder := usecase.NewCatalogBuilder(shopify.NewCSVDecoder(), usecase.CatalogBuilderConfig{
		Workers: cfg.Catalog.Workers,
	})
	products, report, err := builder.BuildFromReader(ctx, f)
	if err != nil {
		return err
	}

	if err := artifact.Write(cfg.Catalog.Output, products); err != nil {
		return err
	}

	if cfg.Catalog.DatabaseURL != "" {
		repo, err := postgres.NewCatalogRepository(ctx, cfg.Catalog.DatabaseURL)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.SaveCatalog(ctx, products); err != nil {
			return err
		}
		fmt.Fprintf(out, "Snapshot stored in catalog_products\n")
	}

	printSummary(out, cfg.Catalog.Output, report, time.Since(start))
	return nil
}

func printSummary(out io.Writer, path string, report usecase.BuildReport, elapsed time.Duration) {
	fmt.Fprintf(out, "Wrote %d products to %s (%d handles, %s)\n",
		report.Built, path, report.Groups, elapsed.Round(time.Millisecond))

	if n := len(report.Rejected); n > 0 {
		fmt.Fprintf(out, "Rejected %d products:\n", n)
		for _, reason := range report.Rejected {
			fmt.Fprintf(out, "  - %s\n", reason)
		}
	}
	if report.SkipCount > 0 {
		fmt.Fprintf(out, "Skipped %d rows\n", report.SkipCount)
		for _, skipped := range report.Skipped {
			log.Debug().Str("handle", skipped.Handle).Int("row", skipped.Row).Str("reason", skipped.Reason).Msg("row skipped")
		}
	}
}
