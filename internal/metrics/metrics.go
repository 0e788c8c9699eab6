package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Labels for secondary ledgers whose writes may fail without failing the transition.
const (
	LedgerTrackingEvents = "tracking_events"
	LedgerScanLogs       = "scan_logs"
	LedgerNotifications  = "notification_logs"
)

type ShipTrackMetrics struct {
	transitions         *prometheus.CounterVec
	advanceDuration     prometheus.Histogram
	ledgerWriteFailures *prometheus.CounterVec
	notifications       *prometheus.CounterVec
	lookups             *prometheus.CounterVec
	lookupCache         *prometheus.CounterVec
	poisonMessages      *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *ShipTrackMetrics
)

// Default returns the process-wide metrics registered on prometheus.DefaultRegisterer.
func Default() *ShipTrackMetrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func New(registerer prometheus.Registerer) *ShipTrackMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shiptrack_transitions_total",
			Help: "Status transitions requested, by result.",
		},
		[]string{"result"}, // ok | invalid | not_found | failed
	)

	advanceDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shiptrack_advance_duration_seconds",
			Help:    "Time spent in a single advance call including lock wait.",
			Buckets: prometheus.DefBuckets,
		},
	)

	ledgerWriteFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shiptrack_ledger_write_failures_total",
			Help: "Secondary ledger writes that failed after the shipment was updated.",
		},
		[]string{"ledger"},
	)

	notifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shiptrack_notifications_total",
			Help: "Notification attempts by channel and outcome.",
		},
		[]string{"channel", "status"},
	)

	lookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shiptrack_lookups_total",
			Help: "Tracking lookups by result.",
		},
		[]string{"result"}, // ok | not_found | failed
	)

	lookupCache := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shiptrack_lookup_cache_total",
			Help: "Lookup cache hits and misses.",
		},
		[]string{"result"},
	)

	poisonMessages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shiptrack_poison_messages_total",
			Help: "Queued messages that could not be decoded and were committed without delivery.",
		},
		[]string{"topic"},
	)

	registerer.MustRegister(
		transitions,
		advanceDuration,
		ledgerWriteFailures,
		notifications,
		lookups,
		lookupCache,
		poisonMessages,
	)

	return &ShipTrackMetrics{
		transitions:         transitions,
		advanceDuration:     advanceDuration,
		ledgerWriteFailures: ledgerWriteFailures,
		notifications:       notifications,
		lookups:             lookups,
		lookupCache:         lookupCache,
		poisonMessages:      poisonMessages,
	}
}

func (m *ShipTrackMetrics) IncTransition(result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(result).Inc()
}

func (m *ShipTrackMetrics) ObserveAdvance(d time.Duration) {
	if m == nil {
		return
	}
	m.advanceDuration.Observe(d.Seconds())
}

func (m *ShipTrackMetrics) IncLedgerWriteFailure(ledger string) {
	if m == nil {
		return
	}
	m.ledgerWriteFailures.WithLabelValues(ledger).Inc()
}

func (m *ShipTrackMetrics) IncNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, status).Inc()
}

func (m *ShipTrackMetrics) IncLookup(result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
}

func (m *ShipTrackMetrics) IncLookupCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookupCache.WithLabelValues(result).Inc()
}

func (m *ShipTrackMetrics) IncPoisonMessage(topic string) {
	if m == nil {
		return
	}
	m.poisonMessages.WithLabelValues(topic).Inc()
}
