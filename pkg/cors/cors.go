// Package cors implements the permissive cross-origin policy of the service.
package cors

import (
	"net/http"
	"strconv"
	"time"
)

// Response headers.
const (
	HeaderAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAllowCredentials = "Access-Control-Allow-Credentials"
	HeaderAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderMaxAge           = "Access-Control-Max-Age"
)

// Request headers.
const (
	HeaderOrigin         = "Origin"
	HeaderRequestMethod  = "Access-Control-Request-Method"
	HeaderRequestHeaders = "Access-Control-Request-Headers"
)

// MaxAge is how long browsers may cache a preflight answer.
const MaxAge = 10 * time.Minute

// AllowedMethods covers every method the router can serve.
const AllowedMethods = "DELETE, GET, HEAD, OPTIONS, PATCH, POST, PUT"

// Middleware applies the permissive policy: any origin, any method, any
// header, credentials allowed. Preflight requests are answered here and never
// reach next.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		origin := r.Header.Get(HeaderOrigin)

		// A wildcard origin is ignored by browsers for credentialed requests.
		if origin != "" && r.Header.Get("Cookie") != "" {
			h.Set(HeaderAllowOrigin, origin)
			h.Add("Vary", HeaderOrigin)
		} else {
			h.Set(HeaderAllowOrigin, "*")
		}
		h.Set(HeaderAllowCredentials, "true")
		h.Set(HeaderAllowMethods, AllowedMethods)
		if requested := r.Header.Get(HeaderRequestHeaders); requested != "" {
			h.Set(HeaderAllowHeaders, requested)
		}

		if IsPreflight(r) {
			h.Set(HeaderMaxAge, strconv.Itoa(int(MaxAge.Seconds())))
			h.Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// IsPreflight reports whether r is a CORS preflight request.
func IsPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get(HeaderRequestMethod) != ""
}
