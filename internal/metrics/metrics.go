package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"libranet/internal/money"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "libranet_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "libranet_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	lendingOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "libranet_lending_operations_total",
		Help: "Lending operations by operation and result",
	}, []string{"operation", "result"})

	finesCharged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "libranet_fines_charged_total",
		Help: "Number of overdue fines charged",
	})

	fineAmountMinor = promauto.NewCounter(prometheus.CounterOpts{
		Name: "libranet_fine_amount_minor_units_total",
		Help: "Sum of charged fines in minor currency units",
	})

	activeBorrows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "libranet_active_borrows",
		Help: "Number of items currently on loan",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveOperation counts a lending operation (borrow, return, archive, ...) by result.
func ObserveOperation(operation, result string) {
	lendingOperations.WithLabelValues(operation, result).Inc()
}

// ObserveFine records a charged fine.
func ObserveFine(amount money.Money) {
	finesCharged.Inc()
	fineAmountMinor.Add(float64(amount.Minor()))
}

func IncrementActiveBorrows() { activeBorrows.Inc() }

func DecrementActiveBorrows() { activeBorrows.Dec() }

// GinMiddleware instruments requests with Prometheus metrics, labelled by route pattern.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
