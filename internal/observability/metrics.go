package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsBuilt counts canonical products assembled, by input path
	ProductsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_products_built_total",
			Help: "Total canonical products assembled",
		},
		[]string{"source"},
	)

	// ProductsRejected counts records dropped for missing handle or title
	ProductsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_products_rejected_total",
			Help: "Total product records rejected by validation",
		},
		[]string{"source"},
	)

	// RowsSkipped counts CSV rows or GraphQL edges excluded from output
	RowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_rows_skipped_total",
			Help: "Total rows or edges skipped during decoding and aggregation",
		},
		[]string{"source"},
	)

	// UpstreamShapeErrors counts fields with an unexpected upstream JSON shape
	UpstreamShapeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_upstream_shape_errors_total",
			Help: "Total upstream fields degraded because of an unexpected shape",
		},
	)

	// CacheLookups counts product cache lookups by result (hit, miss)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Product cache lookups by result",
		},
		[]string{"result"},
	)

	// UpstreamRequestDuration observes storefront GraphQL request latency
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_upstream_request_duration_seconds",
			Help:    "Storefront GraphQL request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)
)
