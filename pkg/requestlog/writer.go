package requestlog

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/weatherapp/pkg/logger"
)

// HeaderProcessTime carries the elapsed handling time in seconds.
const HeaderProcessTime = "X-Process-Time"

// captureWriter stamps X-Process-Time when headers are committed and holds
// JSON responses until the handler returns.
type captureWriter struct {
	http.ResponseWriter
	start time.Time

	status    int
	decided   bool // status chosen by the handler
	committed bool // headers sent downstream
	capture   bool
	body      bytes.Buffer
}

func newCaptureWriter(w http.ResponseWriter, start time.Time) *captureWriter {
	return &captureWriter{ResponseWriter: w, start: start, status: http.StatusOK}
}

func (w *captureWriter) WriteHeader(code int) {
	if w.decided {
		return
	}
	// Informational responses are forwarded and do not fix the final status.
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	w.decided = true
	w.status = code
	if isJSON(w.Header().Get("Content-Type")) {
		w.capture = true
		return
	}
	w.commit()
}

func (w *captureWriter) Write(p []byte) (int, error) {
	if !w.decided {
		w.WriteHeader(http.StatusOK)
	}
	if w.capture {
		return w.body.Write(p)
	}
	return w.ResponseWriter.Write(p)
}

// Flush is a no-op while a JSON body is being held, including when the
// flush itself is what fixes the status.
func (w *captureWriter) Flush() {
	if !w.decided {
		w.WriteHeader(http.StatusOK)
	}
	if w.capture {
		return
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *captureWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *captureWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true
	w.Header().Set(HeaderProcessTime, logger.FormatSeconds(time.Since(w.start)))
	w.ResponseWriter.WriteHeader(w.status)
}

// finish flushes a held body, or commits the default status when the handler
// never wrote anything. It returns the log snippet and the capture error, if any.
func (w *captureWriter) finish(limit int) (snippet string, err error) {
	if !w.decided {
		w.decided = true
		w.commit()
		return "", nil
	}
	if !w.capture {
		return "", nil
	}

	// An empty JSON body is a parse error unless the status forbids a body.
	raw := w.body.Bytes()
	if len(raw) > 0 || bodyAllowed(w.status) {
		snippet, err = prettySnippet(raw, limit)
	}

	h := w.Header()
	switch {
	case err != nil:
		raw = nil
		h.Del("Content-Length")
	case bodyAllowed(w.status):
		h.Set("Content-Length", strconv.Itoa(len(raw)))
	}
	w.commit()
	if len(raw) > 0 {
		_, _ = w.ResponseWriter.Write(raw)
	}
	return snippet, err
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

func bodyAllowed(status int) bool {
	return status != http.StatusNoContent && status != http.StatusNotModified && status >= 200
}
