package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/2beens/gymplan/internal/identity"
	"github.com/2beens/gymplan/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					route := routeTemplate(req)
					// the user header is not verified yet, auth runs after recovery
					log.WithFields(log.Fields{
						"route":        route,
						"method":       req.Method,
						"path":         req.URL.Path,
						"claimed_user": req.Header.Get(identity.UserHeader),
					}).Errorf("http: panic serving request: %v\n%s", r, debug.Stack())
					if metricsManager != nil {
						metricsManager.CounterHandleRequestPanic.WithLabelValues(route).Inc()
					}
					http.Error(respWriter, "internal error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(respWriter, req)
		})
	}
}
