package ircd

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ircd_connected_clients",
		Help: "Number of currently connected clients",
	})

	LiveChannels = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ircd_channels",
		Help: "Number of channels with at least one member",
	})

	RejectedConnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ircd_rejected_connections_total",
		Help: "Connections refused because the server was full",
	})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ircd_commands_total",
		Help: "Total commands dispatched by verb",
	}, []string{"verb"})

	EventProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ircd_event_processing_seconds",
		Help:    "Time to process each event type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(LiveChannels)
	prometheus.MustRegister(RejectedConnections)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(EventProcessingDuration)
}
