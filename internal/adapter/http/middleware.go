package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/opsdeck/tenantctl/internal/domain"
)

type contextKey struct{}

var sessionKey contextKey

// SessionMiddleware resolves the bearer token into a superadmin session
// and stores it on the request context. Login, the generated docs and the
// health probe stay open; everything else without a valid superadmin
// session is rejected before reaching a handler.
func SessionMiddleware(auth domain.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			sess, err := auth.Resolve(r.Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("session rejected")
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
		})
	}
}

func open(path string) bool {
	switch {
	case path == "/api/auth/login":
		return true
	case path == "/healthz":
		return true
	case path == "/openapi.json" || path == "/openapi.yaml":
		return true
	case path == "/docs" || strings.HasPrefix(path, "/docs/"):
		return true
	case strings.HasPrefix(path, "/schemas/"):
		return true
	}
	return false
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"superadmin session required"}`))
}

// sessionFrom returns the session placed on the context by the
// middleware. The zero session is returned on open routes.
func sessionFrom(ctx context.Context) domain.Session {
	if sess, ok := ctx.Value(sessionKey).(domain.Session); ok {
		return sess
	}
	return domain.Session{}
}
