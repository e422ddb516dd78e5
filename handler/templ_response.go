package handler

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
)

// TemplOption configures a templ response.
type TemplOption func(*templResponse)

// WithStatus sets the HTTP status of a templ response.
func WithStatus(status int) TemplOption {
	return func(t *templResponse) { t.status = status }
}

type templResponse struct {
	component templ.Component
	status    int
}

// Render renders into a buffer first so a failing component leaves the
// response untouched for the error handler.
func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	var buf bytes.Buffer
	if err := t.component.Render(r.Context(), &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(t.status)
	_, err := buf.WriteTo(w)
	return err
}

// Templ creates an HTML response from a templ component.
//
//	return handler.Templ(views.Home(info))
func Templ(component templ.Component, opts ...TemplOption) Response {
	t := templResponse{component: component, status: http.StatusOK}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
