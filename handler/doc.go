// Package handler holds the HTTP response primitives shared by every route.
//
// Handlers are typed functions returning a Response; Wrap adapts them to
// http.HandlerFunc and routes binding or rendering failures to an
// ErrorHandler.
//
// API responses use Envelope, a fixed JSON shape:
//
//	{"code": 200, "message": "Success", "timestamp": "2024-05-01T12:30:45.123456+00:00", "data": null}
//
// NewEnvelope stamps the timestamp and is the only constructor; Success,
// Created, NoContent, BadRequest, Unauthorized, Forbidden, NotFound and Error
// provide the standard codes and messages and accept EnvelopeOption
// overrides. Rendering an Envelope uses its code as the HTTP status.
//
// HTML pages use Templ, which renders a templ.Component.
package handler
