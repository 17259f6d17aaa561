package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/2beens/gymplan/internal/identity"
	"github.com/2beens/gymplan/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AuthMiddlewareHandler trusts the user id asserted by the identity provider's gateway,
// provided the request carries the shared gateway secret.
type AuthMiddlewareHandler struct {
	gatewaySecret        string
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(gatewaySecret string) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		gatewaySecret: gatewaySecret,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,
			"/health":  true,
		},
		allowedPathsPrefixes: []string{
			// MCP tools take the user id as an argument and are guarded by the MCP secret
			"/mcp",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			secret := r.Header.Get(identity.SecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.gatewaySecret)) != 1 {
				log.Tracef("[invalid secret] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-gateway-secret")
				return
			}

			userID := strings.TrimSpace(r.Header.Get(identity.UserHeader))
			if userID == "" {
				log.Tracef("[missing user] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-user")
				return
			}

			span.SetAttributes(attribute.String("user.id", userID))
			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(identity.WithUserID(ctx, userID)))
		})
	}
}

// MCPSecretCheck guards the MCP endpoint with its own shared secret. An empty secret disables the check.
func MCPSecretCheck(mcpSecret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mcpSecret == "" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			secret := r.Header.Get("X-MCP-Secret")
			if subtle.ConstantTimeCompare([]byte(secret), []byte(mcpSecret)) != 1 {
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
