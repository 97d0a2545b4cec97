// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AuthAttempts counts register and login attempts.
	// Labels:
	//   - action: "register", "login", "logout"
	//   - outcome: "success" or the provider error code
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmhub_auth_attempts_total",
			Help: "Total number of register, login and logout attempts",
		},
		[]string{"action", "outcome"},
	)

	// FilmWrites counts successful film repository writes.
	// Labels:
	//   - op: "create", "update", "publish", "delete"
	FilmWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmhub_film_writes_total",
			Help: "Total number of film writes",
		},
		[]string{"op"},
	)

	// CommentsPosted counts appended comments.
	CommentsPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmhub_comments_posted_total",
			Help: "Total number of comments posted",
		},
	)

	// LiveStreams tracks open websocket live streams.
	// Labels:
	//   - view: "home", "movies", "movie", "admin"
	LiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filmhub_live_streams",
			Help: "Number of open live update streams",
		},
		[]string{"view"},
	)

	// SessionsEvicted counts in-memory sessions dropped by the cleanup worker.
	SessionsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmhub_sessions_evicted_total",
			Help: "Total number of idle sessions evicted from memory",
		},
	)
)

// RecordAuth records one auth attempt. An empty outcome counts as success.
func RecordAuth(action, outcome string) {
	if outcome == "" {
		outcome = "success"
	}
	AuthAttempts.WithLabelValues(action, outcome).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
