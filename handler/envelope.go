package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// TimestampLayout is the wire format of Envelope.Timestamp: ISO-8601 with
// microseconds and a numeric UTC offset, e.g. 2024-05-01T12:30:45.123456+00:00.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Timestamp is a server-generated UTC instant.
type Timestamp time.Time

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// Time returns t as a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Time(t).UTC()
}

func (t Timestamp) String() string {
	return t.Time().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, len(TimestampLayout)+2)
	b = append(b, '"')
	b = t.Time().AppendFormat(b, TimestampLayout)
	return append(b, '"'), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidTimestamp
	}
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return ErrInvalidTimestamp
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// Envelope is the uniform JSON body of every API response.
// Data is serialized as null when absent.
type Envelope struct {
	Code      int       `json:"code"`
	Message   string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
	Data      any       `json:"data"`
}

// EnvelopeOption overrides a factory default.
type EnvelopeOption func(*Envelope)

func WithMessage(message string) EnvelopeOption {
	return func(e *Envelope) { e.Message = message }
}

func WithCode(code int) EnvelopeOption {
	return func(e *Envelope) { e.Code = code }
}

func WithData(data any) EnvelopeOption {
	return func(e *Envelope) { e.Data = data }
}

// NewEnvelope stamps the current time and applies opts.
// All the named factories go through it.
func NewEnvelope(code int, message string, data any, opts ...EnvelopeOption) Envelope {
	e := Envelope{
		Code:      code,
		Message:   message,
		Timestamp: Now(),
		Data:      data,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func Success(data any, opts ...EnvelopeOption) Envelope {
	return NewEnvelope(http.StatusOK, "Success", data, opts...)
}

func Created(data any, opts ...EnvelopeOption) Envelope {
	return NewEnvelope(http.StatusCreated, "Resource created successfully", data, opts...)
}

func NoContent(opts ...EnvelopeOption) Envelope {
	return NewEnvelope(http.StatusNoContent, "No content", nil, opts...)
}

func BadRequest(opts ...EnvelopeOption) Envelope {
	return NewEnvelope(http.StatusBadRequest, "Bad request", nil, opts...)
}

func Unauthorized(opts ...EnvelopeOption) Envelope {
	return NewEnvelope(http.StatusUnauthorized, "Unauthorized", nil, opts...)
}

func Forbidden(opts ...EnvelopeOption) Envelope {
	return NewEnvelope(http.StatusForbidden, "Forbidden", nil, opts...)
}

func NotFound(opts ...EnvelopeOption) Envelope {
	return NewEnvelope(http.StatusNotFound, "Resource not found", nil, opts...)
}

// Error builds a 500 envelope with the given message.
func Error(message string, opts ...EnvelopeOption) Envelope {
	return NewEnvelope(http.StatusInternalServerError, message, nil, opts...)
}

// Render writes the envelope with its code as the HTTP status.
// A 204 envelope writes the status only.
func (e Envelope) Render(w http.ResponseWriter, _ *http.Request) error {
	status := e.Code
	if status < 100 || status > 999 {
		status = http.StatusInternalServerError
	}
	if status == http.StatusNoContent || status == http.StatusNotModified {
		w.WriteHeader(status)
		return nil
	}

	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}
