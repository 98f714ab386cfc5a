package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/yourorg/studioportal/internal/security/auth"
	"github.com/yourorg/studioportal/internal/security/ratelimit"
	"github.com/yourorg/studioportal/internal/session"
)

type SessionContextKey struct{}
type ClaimsContextKey struct{}

func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics" ||
		path == "/api/login"
}

// SessionMiddleware resolves the bearer token to a live session. A valid
// token whose session has been removed is rejected: logout wins over
// token expiry.
func SessionMiddleware(tm *auth.TokenManager, sessions *session.Manager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			sess, ok := sessions.Get(claims.SessionID)
			if !ok {
				http.Error(w, `{"error":"session expired"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, SessionContextKey{}, sess)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoginRateLimitMiddleware throttles credential guessing per remote
// address. Only the login endpoint is limited; authenticated traffic
// passes through.
func LoginRateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/login" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(remoteAddr(r)) {
				log.Warn("login rate limit exceeded", slog.String("remote", remoteAddr(r)))
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetSessionFromContext(ctx context.Context) *session.Session {
	if s := ctx.Value(SessionContextKey{}); s != nil {
		return s.(*session.Session)
	}
	return nil
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

func remoteAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
