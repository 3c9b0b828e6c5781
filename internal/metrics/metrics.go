package metrics

import "github.com/prometheus/client_golang/prometheus"

// Drop reasons.
const (
	ReasonNoRecipients = "no_recipients"
	ReasonBufferFull   = "buffer_full"
	ReasonInvalid      = "invalid"
	ReasonRateLimited  = "rate_limited"
	ReasonMaxRooms     = "max_rooms"
)

var (
	ConnectionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "safecast_connections",
		Help: "A gauge of signaling connections registered with the hub.",
	})

	RoomsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "safecast_rooms",
		Help: "A gauge of live broadcast rooms.",
	})

	JoinsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "safecast_room_joins_total",
		Help: "A counter of accepted room joins.",
	})

	RelayedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safecast_signals_relayed_total",
		Help: "A counter of signaling frames delivered to peers.",
	}, []string{"type"})

	DroppedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safecast_frames_dropped_total",
		Help: "A counter of frames that were not delivered.",
	}, []string{"reason"})

	AlertsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safecast_alerts_total",
		Help: "A counter of alerts accepted.",
	}, []string{"type"})

	InFlightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "safecast_http_in_flight_requests",
		Help: "A gauge of requests being handled by the API server.",
	})

	RequestsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safecast_http_requests_total",
		Help: "A counter for requests to the API server.",
	}, []string{"code", "method"})
)

func init() {
	prometheus.MustRegister(
		ConnectionsGauge,
		RoomsGauge,
		JoinsCounter,
		RelayedCounter,
		DroppedCounter,
		AlertsCounter,
		InFlightGauge,
		RequestsCounter,
	)
}
