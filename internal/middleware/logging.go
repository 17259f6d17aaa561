package middleware

import (
	"net/http"

	"github.com/2beens/gymplan/internal/identity"

	log "github.com/sirupsen/logrus"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := identity.UserID(r.Context())
			log.WithFields(log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"ua":     r.Header.Get("User-Agent"),
				"user":   userID,
			}).Trace(" ====> request")
			next.ServeHTTP(w, r)
		})
	}
}
