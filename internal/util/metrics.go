package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders captured at checkout",
	}, []string{"payment_type"})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of rejected order creations",
	}, []string{"reason"})

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Total number of order status transitions applied",
	}, []string{"from", "to"})

	OrderTransitionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_rejected_total",
		Help: "Total number of illegal order status transitions rejected",
	}, []string{"from", "to"})

	PayoutsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payouts_created_total",
		Help: "Total number of payout runs that produced a payout",
	})

	PayoutsEmptyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payouts_empty_total",
		Help: "Total number of payout runs rejected for an empty window",
	})

	PayoutAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payout_amount_minor_units",
		Help:    "Distribution of payout totals in minor currency units",
		Buckets: prometheus.ExponentialBuckets(100, 10, 8),
	})

	PayoutOrdersClaimed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payout_orders_claimed",
		Help:    "Number of orders consumed per payout",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	BurnsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "burns_recorded_total",
		Help: "Total number of burn milestones recorded",
	})

	TransfersRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transfers_recorded_total",
		Help: "Total number of transfer milestones recorded",
	})

	ConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "processor_confirmations_total",
		Help: "Total number of processor confirmation events handled",
	}, []string{"result"})

	CatalogCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_price_cache_total",
		Help: "Catalog price cache lookups",
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
