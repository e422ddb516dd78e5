package requestlog_test

import (
	"bytes"
	"encoding/json"
	"io"
	stdlog "log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/weatherapp/pkg/logger"
	"github.com/dmitrymomot/weatherapp/pkg/requestlog"
)

const processTimeFormat = `^\d+\.\d{6}$`

func serve(t *testing.T, h http.HandlerFunc) (*http.Response, []byte, map[string]any) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := requestlog.Middleware(requestlog.WithLogger(logger.New(logger.WithOutput(buf))))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	rec := httptest.NewRecorder()
	mw(h).ServeHTTP(rec, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	res := rec.Result()
	return res, rec.Body.Bytes(), entry
}

func TestMiddleware_JSONBodyReachesClientUnchanged(t *testing.T) {
	t.Parallel()
	payload := `{"code":200,"message":"Success","data":{"city":"Zürich","temp":[1,2]}}`

	res, body, entry := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(payload[:20]))
		_, _ = w.Write([]byte(payload[20:]))
	})

	assert.Equal(t, payload, string(body))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, strconv.Itoa(len(payload)), res.Header.Get("Content-Length"))
	assert.Regexp(t, processTimeFormat, res.Header.Get(requestlog.HeaderProcessTime))

	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/health", entry["path"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "192.0.2.7", entry["client"])
	assert.Regexp(t, processTimeFormat, entry["process_time"])

	snippet, _ := entry["body"].(string)
	assert.True(t, strings.HasPrefix(snippet, "{\n  \"code\": 200,\n  \"message\": \"Success\""), snippet)
	assert.Contains(t, snippet, "Zürich")
}

func TestMiddleware_Truncation(t *testing.T) {
	t.Parallel()

	t.Run("long bodies are cut at 500 characters", func(t *testing.T) {
		t.Parallel()
		payload := `{"data":"` + strings.Repeat("x", 1000) + `"}`
		_, body, entry := serve(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(payload))
		})

		assert.Equal(t, payload, string(body))
		snippet := entry["body"].(string)
		assert.Len(t, []rune(snippet), 503)
		assert.True(t, strings.HasSuffix(snippet, "..."))
		assert.True(t, strings.HasPrefix(snippet, "{\n  \"data\": \"xxx"))
	})

	t.Run("short bodies are logged verbatim", func(t *testing.T) {
		t.Parallel()
		_, _, entry := serve(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"a":1}`))
		})
		assert.Equal(t, "{\n  \"a\": 1\n}", entry["body"])
	})
}

func TestMiddleware_InvalidJSON(t *testing.T) {
	t.Parallel()

	res, body, entry := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", "9")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("not json!"))
	})

	assert.Empty(t, body)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Empty(t, res.Header.Get("Content-Length"))
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Regexp(t, processTimeFormat, res.Header.Get(requestlog.HeaderProcessTime))

	assert.Equal(t, "WARN", entry["level"])
	assert.True(t, strings.HasPrefix(entry["body"].(string), "[Error reading body: "), entry["body"])
}

func TestMiddleware_NonJSONPassthrough(t *testing.T) {
	t.Parallel()
	html := "<html><body>Weather App API</body></html>"

	res, body, entry := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	})

	assert.Equal(t, html, string(body))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Regexp(t, processTimeFormat, res.Header.Get(requestlog.HeaderProcessTime))
	assert.NotContains(t, entry, "body")
}

func TestMiddleware_EmptyResponses(t *testing.T) {
	t.Parallel()

	t.Run("handler writes nothing", func(t *testing.T) {
		t.Parallel()
		res, body, entry := serve(t, func(http.ResponseWriter, *http.Request) {})
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Empty(t, body)
		assert.Regexp(t, processTimeFormat, res.Header.Get(requestlog.HeaderProcessTime))
		assert.Equal(t, float64(200), entry["status"])
	})

	t.Run("json no content", func(t *testing.T) {
		t.Parallel()
		res, body, entry := serve(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNoContent)
		})
		assert.Equal(t, http.StatusNoContent, res.StatusCode)
		assert.Empty(t, body)
		assert.Equal(t, "INFO", entry["level"])
		assert.NotContains(t, entry, "body")
	})
}

func TestMiddleware_EmptyJSONBody(t *testing.T) {
	t.Parallel()

	res, body, entry := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, body)
	assert.Regexp(t, processTimeFormat, res.Header.Get(requestlog.HeaderProcessTime))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "[Error reading body: unexpected end of JSON input]", entry["body"])
}

func TestMiddleware_FlushBeforeJSONWrite(t *testing.T) {
	t.Parallel()
	const payload = `{"temp":21.5}`

	var serverLog bytes.Buffer
	srv := httptest.NewUnstartedServer(requestlog.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte(payload))
	})))
	srv.Config.ErrorLog = stdlog.New(&serverLog, "", 0)
	srv.Start()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	srv.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, payload, string(body))
	assert.Regexp(t, processTimeFormat, res.Header.Get(requestlog.HeaderProcessTime))
	assert.Equal(t, strconv.Itoa(len(payload)), res.Header.Get("Content-Length"))
	assert.NotContains(t, serverLog.String(), "superfluous")
}

func TestMiddleware_ProcessTimeCoversHandler(t *testing.T) {
	t.Parallel()
	const pause = 25 * time.Millisecond

	res, _, _ := serve(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(pause)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	seconds, err := strconv.ParseFloat(res.Header.Get(requestlog.HeaderProcessTime), 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, seconds, pause.Seconds())
}

func TestMiddleware_PanicIsLoggedAndReraised(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	mw := requestlog.Middleware(requestlog.WithLogger(logger.New(logger.WithOutput(buf))))
	h := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodPost, "/explode", nil)
	assert.PanicsWithValue(t, "boom", func() {
		h.ServeHTTP(httptest.NewRecorder(), req)
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "request failed", entry["msg"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/explode", entry["path"])
	assert.Contains(t, entry, "process_time")
}

func TestMiddleware_SnippetLimitOption(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	mw := requestlog.Middleware(
		requestlog.WithLogger(logger.New(logger.WithOutput(buf))),
		requestlog.WithSnippetLimit(5),
	)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"a":1}`))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "{\n  \"...", entry["body"])
}
