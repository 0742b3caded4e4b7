package recordstore

import (
	"time"

	"github.com/TomerHalfon/SuperList-sub000/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lockWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "superlist_recordstore_lock_wait_seconds",
		Help:    "Time spent waiting for a document lock",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"backend", "document"})

	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "superlist_recordstore_operations_total",
		Help: "Record store operations by backend, operation and result code",
	}, []string{"backend", "op", "result"})
)

func observeLockWait(backend, name string, start time.Time) {
	lockWaitSeconds.WithLabelValues(backend, name).Observe(time.Since(start).Seconds())
}

func observeOp(backend, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if e, ok := domain.AsError(err); ok {
			result = string(e.Code)
		}
	}
	operationsTotal.WithLabelValues(backend, op, result).Inc()
}
