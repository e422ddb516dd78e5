package web

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/weatherapp/handler"
	"github.com/dmitrymomot/weatherapp/pkg/logger"
	"github.com/dmitrymomot/weatherapp/pkg/pg"
)

const (
	statusHealthy = "healthy"
	statusError   = "error"
)

var errDatabaseNotConfigured = errors.New("database is not configured")

// HealthData is the data payload of the /health envelope.
type HealthData struct {
	App      string            `json:"app"`
	Database DependencyStatus  `json:"database"`
	Cache    *DependencyStatus `json:"cache,omitempty"`
}

// DependencyStatus reports one backing service.
type DependencyStatus struct {
	Status  string        `json:"status"`
	Version string        `json:"version,omitempty"`
	Error   string        `json:"error,omitempty"`
	Pool    *pg.PoolStats `json:"pool,omitempty"`
}

// PoolReporter is implemented by databases that expose pool statistics.
// /health includes them when the database is healthy.
type PoolReporter interface {
	Stat() (pg.PoolStats, bool)
}

func (s *service) health(ctx handler.Context, _ struct{}) handler.Response {
	data := HealthData{App: statusHealthy}
	healthy := true

	version, err := s.databaseVersion(ctx)
	if err != nil {
		healthy = false
		data.Database = DependencyStatus{Status: statusError, Error: err.Error()}
		s.log.WarnContext(ctx, "database health check failed", logger.Error(err))
	} else {
		data.Database = DependencyStatus{Status: statusHealthy, Version: version}
		if pr, ok := s.db.(PoolReporter); ok {
			if stats, open := pr.Stat(); open {
				data.Database.Pool = &stats
			}
		}
	}

	if s.cache != nil {
		if err := s.cache(ctx); err != nil {
			healthy = false
			data.Cache = &DependencyStatus{Status: statusError, Error: err.Error()}
			s.log.WarnContext(ctx, "cache health check failed", logger.Error(err))
		} else {
			data.Cache = &DependencyStatus{Status: statusHealthy}
		}
	}

	if !healthy {
		return handler.Error("Service unavailable",
			handler.WithCode(http.StatusServiceUnavailable),
			handler.WithData(data),
		)
	}
	return handler.Success(data, handler.WithMessage("All systems operational"))
}

func (s *service) databaseVersion(ctx handler.Context) (string, error) {
	if s.db == nil {
		return "", errDatabaseNotConfigured
	}
	return s.db.Version(ctx)
}
