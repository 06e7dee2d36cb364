package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicksIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "synapse",
		Subsystem: "stream",
		Name:      "ticks_total",
		Help:      "Price ticks appended to the live chart.",
	})

	SignalsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "synapse",
		Subsystem: "stream",
		Name:      "signals_total",
		Help:      "Trading signals written to the console, by log type.",
	}, []string{"type"})

	MessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "synapse",
		Subsystem: "stream",
		Name:      "dropped_total",
		Help:      "Stream messages that were neither a tick nor a signal.",
	})

	StreamConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "synapse",
		Subsystem: "stream",
		Name:      "connected",
		Help:      "1 while the event stream connection is open.",
	})

	DashboardClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "synapse",
		Subsystem: "dashboard",
		Name:      "clients",
		Help:      "Presentation clients attached to the live push socket.",
	})
)
