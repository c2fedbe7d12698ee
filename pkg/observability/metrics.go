package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what a connector sends. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	framesSent  *prometheus.CounterVec
	bytesSent   prometheus.Counter
	sendErrors  prometheus.Counter
	sendDropped *prometheus.CounterVec
	connected   prometheus.Gauge
}

// NewMetrics registers the connector metrics with reg. A nil reg uses a
// private registry so repeated construction never collides.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "profconn"
	}
	factory := promauto.With(reg)
	return &Metrics{
		framesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Frames written to the profiler, by message type",
		}, []string{"type"}),
		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Bytes written to the profiler including frame prefixes",
		}),
		sendErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_total",
			Help:      "Frame writes that failed",
		}),
		sendDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_dropped_total",
			Help:      "Send calls skipped because the session was not connected",
		}, []string{"type"}),
		connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 while a profiler connection is open",
		}),
	}
}

func (m *Metrics) FrameSent(msgType string, n int) {
	if m == nil {
		return
	}
	m.framesSent.WithLabelValues(msgType).Inc()
	m.bytesSent.Add(float64(n))
}

func (m *Metrics) SendError() {
	if m == nil {
		return
	}
	m.sendErrors.Inc()
}

func (m *Metrics) Dropped(msgType string) {
	if m == nil {
		return
	}
	m.sendDropped.WithLabelValues(msgType).Inc()
}

func (m *Metrics) SetConnected(on bool) {
	if m == nil {
		return
	}
	if on {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

// DroppedCounter exposes the dropped-send counter for one type, for tests and
// exporters that read values directly.
func (m *Metrics) DroppedCounter(msgType string) prometheus.Counter {
	return m.sendDropped.WithLabelValues(msgType)
}

func (m *Metrics) SendErrorCounter() prometheus.Counter { return m.sendErrors }

func (m *Metrics) ConnectedGauge() prometheus.Gauge { return m.connected }
