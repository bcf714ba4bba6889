// Package metrics holds the prometheus collectors of the object operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK              = "ok"
	OutcomeBusy            = "busy"
	OutcomeLockQueryFailed = "lock_query_failed"
	OutcomeLockBreakFailed = "lock_break_failed"
	OutcomeError           = "error"
)

const (
	KiB = float64(1024)
	MiB = float64(1024 * KiB)
)

var (
	Removes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stripekey_removes_total",
			Help: "Number of forced removals by outcome",
		},
		[]string{"outcome"},
	)

	RemoveAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stripekey_remove_attempts_total",
			Help: "Number of striped remove calls issued",
		},
	)

	LockBreaks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stripekey_lock_breaks_total",
			Help: "Number of striper locks broken before a retried removal",
		},
	)

	HintedWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stripekey_hinted_writes_total",
			Help: "Number of new-object hinted writes by outcome",
		},
		[]string{"outcome"},
	)

	HintedWriteBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "stripekey_hinted_write_bytes",
			Help: "Sizes of objects written with the new-object hint",
			Buckets: []float64{
				KiB,
				64 * KiB,
				512 * KiB,
				MiB,
				4 * MiB,
			},
		},
	)
)

// Register registers every collector with reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		Removes,
		RemoveAttempts,
		LockBreaks,
		HintedWrites,
		HintedWriteBytes,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the collectors registered with g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
