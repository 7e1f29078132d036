package middleware

import (
	"fmt"
	"net/http"

	"github.com/momager/momager-core/internal/ctxkeys"
)

// SecurityHeaders sets the browser hardening headers on every response.
// Must run after NonceMiddleware so inline scripts can be allowed by nonce.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", contentSecurityPolicy(r))

		cfg := ctxkeys.Config(r.Context())
		if cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func contentSecurityPolicy(r *http.Request) string {
	scriptSrc := "'self'"
	if nonce := GetNonce(r.Context()); nonce != "" {
		scriptSrc = fmt.Sprintf("'self' 'nonce-%s'", nonce)
	}

	// Content images may come from the S3 endpoint.
	imgSrc := "'self' data:"
	cfg := ctxkeys.Config(r.Context())
	if cfg != nil && cfg.S3Endpoint != "" {
		imgSrc += " " + cfg.S3Endpoint
	}

	return fmt.Sprintf(
		"default-src 'self'; script-src %s; style-src 'self' 'unsafe-inline'; img-src %s; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
		scriptSrc, imgSrc,
	)
}
