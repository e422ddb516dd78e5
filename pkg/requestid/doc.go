// Package requestid attaches a correlation id to every request.
//
// Middleware accepts an inbound X-Request-ID made of letters, digits, '-' and
// '_' (at most 128 bytes) and otherwise generates a UUIDv4. The id is stored in
// the request context, echoed on the response and picked up by the logger
// through LoggerExtractor.
package requestid
