package middlewares

import "net/http"

type Middleware func(http.Handler) http.Handler

// Apply wraps h so that the first middleware listed runs first.
func Apply(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}
