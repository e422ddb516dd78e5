package handler

import "errors"

// ErrNilResponse is passed to the error handler when a HandlerFunc returns nil.
var ErrNilResponse = errors.New("handler returned nil response")

// ErrInvalidTimestamp is returned when decoding a timestamp that does not
// match TimestampLayout.
var ErrInvalidTimestamp = errors.New("invalid envelope timestamp")
