package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EstimateRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "estimate_requests_total",
		Help: "Total number of estimate requests received",
	})

	PromotionOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_promotion_outcomes_total",
		Help: "Extracted item promotions by outcome",
	}, []string{"outcome"})

	PromotionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_promotion_latency_seconds",
		Help:    "Latency of a promotion batch",
		Buckets: prometheus.DefBuckets,
	})

	ItemsVerifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "extracted_items_verification_total",
		Help: "Verification flag changes on extracted items",
	}, []string{"verified"})

	VersionsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "versions_created_total",
		Help: "Total number of version snapshots created",
	}, []string{"kind"})

	VersionItemCopyFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_version_item_copy_failed_total",
		Help: "Quote versions persisted without their item copies",
	})

	ContractsSignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contracts_signed_total",
		Help: "Total number of contracts signed",
	})

	SignatureUploadFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signature_upload_fallback_total",
		Help: "Signatures stored inline because the object storage upload failed",
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Notification dispatch attempts by kind and result",
	}, []string{"kind", "result"})

	CatalogCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_total",
		Help: "Catalog cache lookups by result",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
