package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_events_published_total",
		Help: "Socket events published to the broadcast channel, by event name.",
	}, []string{"event"})

	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messenger_event_publish_errors_total",
		Help: "Failed event publications. Fire-and-forget: never fails the write.",
	})

	DBOpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "messenger_db_open_connections",
		Help: "Open connections in the database pool.",
	})
)

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
