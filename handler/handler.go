package handler

import (
	"net/http"
)

// HandlerFunc handles one request and returns what to render. C is the
// request context type and R the decoded input.
//
//	health := handler.HandlerFunc[handler.Context, struct{}](
//		func(ctx handler.Context, _ struct{}) handler.Response {
//			return handler.Success(status)
//		},
//	)
type HandlerFunc[C Context, R any] func(ctx C, req R) Response

// Response writes status, headers and body. Envelope and Templ implement it.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// ErrorHandler is called when a handler returns nil or its Response fails
// to render. The response writer is still usable unless Render already
// wrote to it.
type ErrorHandler[C Context] func(ctx C, err error)

// WrapOption configures Wrap.
type WrapOption[C Context, R any] func(*wrapOptions[C, R])

type wrapOptions[C Context, R any] struct {
	onError    ErrorHandler[C]
	newContext func(http.ResponseWriter, *http.Request) C
}

func WithErrorHandler[C Context, R any](h ErrorHandler[C]) WrapOption[C, R] {
	return func(o *wrapOptions[C, R]) {
		if h != nil {
			o.onError = h
		}
	}
}

// WithContextFactory is required when C is not handler.Context.
func WithContextFactory[C Context, R any](f func(http.ResponseWriter, *http.Request) C) WrapOption[C, R] {
	return func(o *wrapOptions[C, R]) {
		if f != nil {
			o.newContext = f
		}
	}
}

func renderInternalError[C Context](ctx C, _ error) {
	_ = Error("Internal server error").Render(ctx.ResponseWriter(), ctx.Request())
}

func defaultContext[C Context](w http.ResponseWriter, r *http.Request) C {
	c, ok := NewContext(w, r).(C)
	if !ok {
		panic("handler: custom context type needs WithContextFactory")
	}
	return c
}

// Wrap adapts h to http.HandlerFunc. Routes here take no input, so h always
// receives the zero R.
//
//	r.Get("/health", handler.Wrap(health, handler.WithErrorHandler[handler.Context, struct{}](onError)))
func Wrap[C Context, R any](h HandlerFunc[C, R], opts ...WrapOption[C, R]) http.HandlerFunc {
	o := &wrapOptions[C, R]{
		onError:    renderInternalError[C],
		newContext: defaultContext[C],
	}
	for _, opt := range opts {
		opt(o)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := o.newContext(w, r)

		var in R
		resp := h(ctx, in)
		if resp == nil {
			o.onError(ctx, ErrNilResponse)
			return
		}
		if err := resp.Render(w, r); err != nil {
			o.onError(ctx, err)
		}
	}
}
