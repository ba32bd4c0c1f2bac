package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nurtura/leadline/internal/config"
	"github.com/nurtura/leadline/pkg/httpext"
)

// RequireWidgetKey gates chat routes behind the static client key the
// embedded widget presents as a bearer token. This is transport gating for
// an anonymous widget, not user authentication.
func RequireWidgetKey() func(http.Handler) http.Handler {
	key := config.GetWidgetKey()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := bearerToken(r)
			if key == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				log.Warn().
					Str("client_ip", r.RemoteAddr).
					Str("path", r.URL.Path).
					Msg("Rejected request with missing or invalid widget key")
				httpext.JsonError(w, "Invalid widget key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Browsers cannot set headers on websocket upgrades; the widget passes
	// the key as a query parameter there instead.
	return r.URL.Query().Get("key")
}
