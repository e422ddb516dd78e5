// Package pipeline composes the HTTP middleware stages in an explicit order.
package pipeline

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/weatherapp/pkg/cors"
	"github.com/dmitrymomot/weatherapp/pkg/environment"
	"github.com/dmitrymomot/weatherapp/pkg/requestid"
	"github.com/dmitrymomot/weatherapp/pkg/requestlog"
)

// Stage is a named middleware.
type Stage struct {
	Name        string
	Description string
	Middleware  func(http.Handler) http.Handler
}

// StageInfo describes a stage and its 1-based position, outermost first.
type StageInfo struct {
	Order       int    `json:"order"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Pipeline is an ordered list of stages. The first stage sees the request
// first and the response last.
type Pipeline struct {
	stages []Stage
}

// New builds a pipeline from stages in outermost-first order.
// Stages without a middleware are skipped.
func New(stages ...Stage) *Pipeline {
	p := &Pipeline{stages: make([]Stage, 0, len(stages))}
	for _, s := range stages {
		if s.Middleware != nil {
			p.stages = append(p.stages, s)
		}
	}
	return p
}

// Then wraps h with every stage.
func (p *Pipeline) Then(h http.Handler) http.Handler {
	mws := make(chi.Middlewares, 0, len(p.stages))
	for _, s := range p.stages {
		mws = append(mws, s.Middleware)
	}
	return mws.Handler(h)
}

// Stages returns a copy of the configured stages.
func (p *Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// Info lists the stages for diagnostics.
func (p *Pipeline) Info() []StageInfo {
	out := make([]StageInfo, len(p.stages))
	for i, s := range p.stages {
		out[i] = StageInfo{Order: i + 1, Name: s.Name, Description: s.Description}
	}
	return out
}

// LogValue renders the stage names in order.
func (p *Pipeline) LogValue() slog.Value {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return slog.AnyValue(names)
}

// Default returns the service pipeline: CORS, panic recovery, request id,
// environment, request log.
func Default(log *slog.Logger, env environment.Environment) *Pipeline {
	return New(
		Stage{
			Name:        "cors",
			Description: "Permissive CORS headers; answers preflight requests",
			Middleware:  cors.Middleware,
		},
		Stage{
			Name:        "recoverer",
			Description: "Turns handler panics into 500 responses",
			Middleware:  middleware.Recoverer,
		},
		Stage{
			Name:        "request_id",
			Description: "Propagates or generates X-Request-ID",
			Middleware:  requestid.Middleware,
		},
		Stage{
			Name:        "environment",
			Description: "Stores the deployment environment in the request context",
			Middleware:  environment.Middleware(env),
		},
		Stage{
			Name:        "request_log",
			Description: "Sets X-Process-Time and logs each request with its JSON body",
			Middleware:  requestlog.Middleware(requestlog.WithLogger(log)),
		},
	)
}
