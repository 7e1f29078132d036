package middleware

import (
	"net/http"

	"github.com/momager/momager-core/internal/config"
	"github.com/momager/momager-core/internal/ctxkeys"
)

// Config puts the sanitized configuration on the request context.
// Secrets such as COOKIE_KEY and DB_CONNECTION never reach templates.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	safe := cfg.Sanitized()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithConfig(r.Context(), safe)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
