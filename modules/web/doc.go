// Package web serves the public routes of the service: the HTML home page
// and the /health check.
//
// /health performs one database round-trip for the server version and, when a
// cache check is configured, pings the cache. Pool statistics are included
// when the database reports them. Any failing dependency turns the answer
// into a 503 envelope with the error in data.<dependency>.error.
//
// The home page lives in views.templ; views_templ.go is generated from it.
package web

//go:generate templ generate -f views.templ
