package middleware

import "net/http"

// Chain wraps h so the middlewares run in the order given.
//
//	handler := Chain(mux,
//	    Config(cfg),     // outermost
//	    RequestLogging,
//	    WithURLPath,     // innermost
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
