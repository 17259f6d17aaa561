package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/gymplan/internal/identity"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// InFlightGuard lets a user run at most one request on the guarded route at a time.
// The lock expires after ttl in case the holder never releases it.
func InFlightGuard(redisClient *redis.Client, routeName string, ttl time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := identity.UserID(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			key := "gymplan:inflight:" + routeName + ":" + userID
			acquired, err := redisClient.SetNX(r.Context(), key, 1, ttl).Result()
			if err != nil {
				// the guard is best effort, serve the request without it
				log.Errorf("in-flight guard [%s]: %s", key, err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				http.Error(w, "a request of this kind is already in progress", http.StatusConflict)
				return
			}
			defer func() {
				// release with a fresh context, the request one may be cancelled by now
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := redisClient.Del(releaseCtx, key).Err(); err != nil {
					log.Errorf("in-flight guard release [%s]: %s", key, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
