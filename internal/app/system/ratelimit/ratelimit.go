// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net/http"
	"time"

	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/metrics"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// DefaultWindow is the counting window used when none is configured.
const DefaultWindow = time.Minute

// Auth throttles credential submissions per client IP. When the limit is
// hit the client gets 429 with a localized message and the attempt is
// counted under action with outcome "throttled". A limit <= 0 disables it.
func Auth(action string, limit int, window time.Duration, tr *locale.Translator, logger *zap.Logger) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if window <= 0 {
		window = DefaultWindow
	}

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("auth attempts throttled",
			zap.String("action", action),
			zap.String("remote", r.RemoteAddr))
		metrics.RecordAuth(action, "throttled")
		http.Error(w, tr.Message("auth.too_many_attempts", nil, locale.Languages(r)...), http.StatusTooManyRequests)
	}

	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(onLimit),
	)
}
