package handler

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/weatherapp/pkg/environment"
)

// Context is the per-request value handed to a HandlerFunc. It is the
// request's context.Context plus the raw request and response writer.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// Environment is the deployment environment stored by the pipeline.
	Environment() environment.Environment
}

// NewContext binds w and r. The returned Context observes r's cancellation.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	return &requestContext{Context: r.Context(), w: w, r: r}
}

type requestContext struct {
	context.Context
	w http.ResponseWriter
	r *http.Request
}

func (c *requestContext) Request() *http.Request              { return c.r }
func (c *requestContext) ResponseWriter() http.ResponseWriter { return c.w }

func (c *requestContext) Environment() environment.Environment {
	return environment.FromContext(c.Context)
}
