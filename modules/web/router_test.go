package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/weatherapp/modules/web"
	"github.com/dmitrymomot/weatherapp/pkg/pg"
)

type fakeDB struct {
	version string
	err     error
	calls   atomic.Int32
}

func (f *fakeDB) Version(context.Context) (string, error) {
	f.calls.Add(1)
	return f.version, f.err
}

type healthEnvelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		App      string                `json:"app"`
		Database web.DependencyStatus  `json:"database"`
		Cache    *web.DependencyStatus `json:"cache"`
	} `json:"data"`
}

func get(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) healthEnvelope {
	t.Helper()
	var env healthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealth_Healthy(t *testing.T) {
	t.Parallel()
	db := &fakeDB{version: "PostgreSQL 16.2 on x86_64-pc-linux-gnu"}
	r := web.Router(web.RouterOptions{Database: db})

	rec := get(t, r, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	env := decodeHealth(t, rec)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "All systems operational", env.Message)
	assert.NotEmpty(t, env.Timestamp)
	assert.Equal(t, "healthy", env.Data.App)
	assert.Equal(t, "healthy", env.Data.Database.Status)
	assert.Equal(t, db.version, env.Data.Database.Version)
	assert.Empty(t, env.Data.Database.Error)
	assert.Nil(t, env.Data.Cache, "cache is omitted when not configured")
	assert.Equal(t, int32(1), db.calls.Load())
}

type pooledDB struct {
	fakeDB
	stats pg.PoolStats
}

func (p *pooledDB) Stat() (pg.PoolStats, bool) { return p.stats, true }

func TestHealth_PoolStats(t *testing.T) {
	t.Parallel()

	t.Run("reported when healthy", func(t *testing.T) {
		t.Parallel()
		db := &pooledDB{
			fakeDB: fakeDB{version: "PostgreSQL 16.2"},
			stats:  pg.PoolStats{TotalConns: 5, IdleConns: 4, AcquiredConns: 1, MaxConns: 20},
		}
		rec := get(t, web.Router(web.RouterOptions{Database: db}), http.MethodGet, "/health")

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeHealth(t, rec)
		require.NotNil(t, env.Data.Database.Pool)
		assert.Equal(t, db.stats, *env.Data.Database.Pool)
	})

	t.Run("omitted when the database is down", func(t *testing.T) {
		t.Parallel()
		db := &pooledDB{fakeDB: fakeDB{err: errors.New("connection refused")}}
		rec := get(t, web.Router(web.RouterOptions{Database: db}), http.MethodGet, "/health")

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Nil(t, decodeHealth(t, rec).Data.Database.Pool)
	})
}

func TestHealth_DatabaseDown(t *testing.T) {
	t.Parallel()
	db := &fakeDB{err: errors.New("connection refused")}
	r := web.Router(web.RouterOptions{Database: db})

	rec := get(t, r, http.MethodGet, "/health")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decodeHealth(t, rec)
	assert.Equal(t, 503, env.Code)
	assert.Equal(t, "Service unavailable", env.Message)
	assert.Equal(t, "healthy", env.Data.App)
	assert.Equal(t, "error", env.Data.Database.Status)
	assert.Equal(t, "connection refused", env.Data.Database.Error)
	assert.Empty(t, env.Data.Database.Version)

	t.Run("process keeps serving", func(t *testing.T) {
		rec := get(t, r, http.MethodGet, "/health")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHealth_UninitializedPool(t *testing.T) {
	t.Parallel()
	r := web.Router(web.RouterOptions{Database: pg.New(pg.Config{}, nil)})

	rec := get(t, r, http.MethodGet, "/health")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decodeHealth(t, rec)
	assert.Equal(t, "error", env.Data.Database.Status)
	assert.Equal(t, pg.ErrPoolNotInitialized.Error(), env.Data.Database.Error)
}

func TestHealth_Cache(t *testing.T) {
	t.Parallel()
	db := &fakeDB{version: "PostgreSQL 16"}

	t.Run("healthy cache", func(t *testing.T) {
		t.Parallel()
		r := web.Router(web.RouterOptions{
			Database: db,
			Cache:    func(context.Context) error { return nil },
		})
		rec := get(t, r, http.MethodGet, "/health")

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeHealth(t, rec)
		require.NotNil(t, env.Data.Cache)
		assert.Equal(t, "healthy", env.Data.Cache.Status)
	})

	t.Run("failing cache", func(t *testing.T) {
		t.Parallel()
		r := web.Router(web.RouterOptions{
			Database: db,
			Cache:    func(context.Context) error { return errors.New("redis: connection refused") },
		})
		rec := get(t, r, http.MethodGet, "/health")

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		env := decodeHealth(t, rec)
		assert.Equal(t, "healthy", env.Data.Database.Status)
		require.NotNil(t, env.Data.Cache)
		assert.Equal(t, "error", env.Data.Cache.Status)
		assert.Equal(t, "redis: connection refused", env.Data.Cache.Error)
	})
}

func TestHome(t *testing.T) {
	t.Parallel()
	r := web.Router(web.RouterOptions{
		Info: web.AppInfo{
			Title:       "Weather App API",
			Description: "Forecasts & <observations>",
			Version:     "1.0.0",
			Environment: "development",
		},
		Database: &fakeDB{},
	})

	rec := get(t, r, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Weather App API</title>")
	assert.Contains(t, body, "Forecasts &amp; &lt;observations&gt;")
	assert.Contains(t, body, "<dd>1.0.0</dd>")
	assert.Contains(t, body, "<dt>Environment</dt><dd>development</dd>")
	assert.Contains(t, body, `<a href="/health">`)
}

func TestFallbacks(t *testing.T) {
	t.Parallel()
	r := web.Router(web.RouterOptions{Database: &fakeDB{}})

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()
		rec := get(t, r, http.MethodGet, "/forecast/mars")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"message":"Resource not found"`)
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()
		rec := get(t, r, http.MethodPost, "/health")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":405`)
	})
}
