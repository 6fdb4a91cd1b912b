package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pomoctl"

var (
	registerOnce sync.Once

	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands applied to the session state.",
		},
		[]string{"action", "outcome"},
	)
	malformedRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_requests_total",
			Help:      "Connections dropped because the request could not be decoded.",
		},
	)
	timerSignals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timer",
			Name:      "signals_total",
			Help:      "Work-finished signals sent by timer tasks.",
		},
		[]string{"result"},
	)
	alertActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "active",
			Help:      "1 while the end-of-work alert is sounding.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Timer signal results.
const (
	TimerAccepted = "accepted"
	TimerRejected = "rejected"
	TimerFailed   = "failed"
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commands, malformedRequests, timerSignals, alertActive, httpRequests, httpDuration)
	})
}

func RecordCommand(action string, ok bool) {
	RegisterMetrics()
	outcome := "accepted"
	if !ok {
		outcome = "rejected"
	}
	commands.WithLabelValues(action, outcome).Inc()
}

func RecordMalformed() {
	RegisterMetrics()
	malformedRequests.Inc()
}

func RecordTimerSignal(result string) {
	RegisterMetrics()
	timerSignals.WithLabelValues(result).Inc()
}

func SetAlertActive(active bool) {
	RegisterMetrics()
	if active {
		alertActive.Set(1)
		return
	}
	alertActive.Set(0)
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
