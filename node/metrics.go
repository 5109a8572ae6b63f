package node

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nohros/nohrosruby/routing"
)

// Drop reasons recorded by the receiver.
const (
	DropFrameCount = "frame_count"
	DropDelimiter  = "delimiter"
	DropDecode     = "decode"
	DropEncode     = "encode"
	DropSend       = "send"
)

// Metrics holds the Prometheus metrics of a node.
type Metrics struct {
	// Receiver metrics
	MessagesReceived   prometheus.Counter
	MessagesDropped    *prometheus.CounterVec
	MessagesDispatched prometheus.Counter
	Resolutions        *prometheus.CounterVec

	// Node loop metrics
	Announces      prometheus.Counter
	AnnounceFailed prometheus.Counter
	Queries        prometheus.Counter
	ControlCalls   *prometheus.CounterVec

	// State
	Routes      prometheus.Gauge
	Services    prometheus.Gauge
	RoutesSwept prometheus.Counter
}

// NewMetrics creates node metrics in namespace and registers them on reg.
// A nil registerer leaves the metrics unregistered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of multi-part messages received by the message channel",
		}),
		MessagesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Total number of dropped messages or envelopes by reason",
		}, []string{"reason"}),
		MessagesDispatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dispatched_total",
			Help:      "Total number of envelopes sent to a destination",
		}),
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_resolutions_total",
			Help:      "Route resolutions by outcome",
		}, []string{"outcome"}),

		Announces: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "announces_total",
			Help:      "Total number of announce messages handled",
		}),
		AnnounceFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "announces_failed_total",
			Help:      "Total number of announce messages that created no route",
		}),
		Queries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of service queries answered",
		}),
		ControlCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_control_total",
			Help:      "Service control commands by command and status",
		}, []string{"command", "status"}),

		Routes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "routes",
			Help:      "Current number of live routes",
		}),
		Services: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_services",
			Help:      "Current number of registered services",
		}),
		RoutesSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_swept_total",
			Help:      "Total number of routes removed by the liveness sweep",
		}),
	}
}

// RecordDropped counts one dropped message.
func (m *Metrics) RecordDropped(reason string) {
	m.MessagesDropped.WithLabelValues(reason).Inc()
}

// RecordResolution counts one router decision.
func (m *Metrics) RecordResolution(how routing.Resolution) {
	m.Resolutions.WithLabelValues(how.String()).Inc()
}

// RecordControl counts one service control command.
func (m *Metrics) RecordControl(command, status string) {
	m.ControlCalls.WithLabelValues(command, status).Inc()
}

// UpdateRoutes updates the routes gauge.
func (m *Metrics) UpdateRoutes(n int) {
	m.Routes.Set(float64(n))
}

// UpdateServices updates the registered services gauge.
func (m *Metrics) UpdateServices(n int) {
	m.Services.Set(float64(n))
}
