package middleware

import "net/http"

// Vary adds Accept to the Vary header: the same URL is served as JSON or CBOR
// depending on content negotiation. The CORS middleware adds Origin itself.
func Vary() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept")
			next.ServeHTTP(w, r)
		})
	}
}
