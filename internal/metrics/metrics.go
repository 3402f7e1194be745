package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Swap metrics
	SwapRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_swap_requests_total",
			Help: "Total number of swap executions by entry point and status",
		},
		[]string{"entry", "status"},
	)

	SwapDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dexrouter_swap_duration_seconds",
			Help:    "Swap execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entry"},
	)

	SwapAborts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_swap_aborts_total",
			Help: "Total number of aborted swap executions by reason",
		},
		[]string{"reason"},
	)

	// Execution shape metrics
	BatchesPerSwap = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexrouter_batches_per_swap",
		Help:    "Number of batches per swap execution",
		Buckets: []float64{1, 2, 3, 5, 8, 13},
	})

	HopsPerSwap = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexrouter_hops_per_swap",
		Help:    "Number of hops per swap execution",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12},
	})

	ForksPerHop = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexrouter_forks_per_hop",
		Help:    "Number of forks per hop",
		Buckets: []float64{1, 2, 3, 4, 5, 8},
	})

	// Adapter metrics
	AdapterCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_adapter_calls_total",
			Help: "Total number of adapter sell invocations by direction and status",
		},
		[]string{"direction", "status"},
	)

	PaymentCallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_payment_callbacks_total",
			Help: "Total number of adapter payment callbacks by status",
		},
		[]string{"status"},
	)

	// Settlement metrics
	CommissionPayouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_commission_payouts_total",
			Help: "Total number of commission payouts by side",
		},
		[]string{"side"},
	)

	NativeUnwraps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dexrouter_native_unwraps_total",
		Help: "Total number of wrapped-native unwraps at settlement",
	})

	Refunds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dexrouter_refunds_total",
		Help: "Total number of leftover source refunds",
	})

	// Order ledger metrics
	OrdersRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dexrouter_orders_recorded_total",
		Help: "Total number of completed order records written",
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dexrouter_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
