package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID records the request identifier under the key "request_id".
// If id is empty, it returns an empty Attr.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Method records the HTTP method.
func Method(m string) slog.Attr {
	return slog.String("method", m)
}

// Path records the URL path.
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Status records the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int("status", code)
}

// ClientHost records the client address under the key "client".
func ClientHost(host string) slog.Attr {
	return slog.String("client", host)
}

// ProcessTime records the elapsed seconds with microsecond precision,
// formatted the same way as the X-Process-Time response header.
func ProcessTime(d time.Duration) slog.Attr {
	return slog.String("process_time", FormatSeconds(d))
}

// FormatSeconds renders d as seconds with exactly six decimals.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
