package pg

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/weatherapp/pkg/logger"
)

// Conn is a connection checked out of the pool. Callers must Release it.
type Conn = pgxpool.Conn

var (
	newPoolWithConfig = pgxpool.NewWithConfig
	pingPool          = func(ctx context.Context, p *pgxpool.Pool) error { return p.Ping(ctx) }
)

// Manager owns the process-wide connection pool.
// The zero value is not usable; construct it with New.
type Manager struct {
	cfg Config
	log *slog.Logger

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

// New returns a manager with no pool. Call Create before use.
func New(cfg Config, log *slog.Logger) *Manager {
	if log == nil {
		log = logger.Noop()
	}
	return &Manager{cfg: cfg, log: log.With(logger.Component("pg"))}
}

// Create opens the pool and verifies it with a ping, retrying up to
// RetryAttempts times with a linearly growing pause.
func (m *Manager) Create(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		return ErrPoolAlreadyCreated
	}

	poolCfg, err := m.poolConfig()
	if err != nil {
		return errors.Join(ErrFailedToCreatePool, err)
	}

	attempts := max(m.cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		if i > 0 {
			m.log.WarnContext(ctx, "retrying database connection",
				slog.Int("attempt", i+1),
				logger.Error(lastErr),
			)
			if err := sleep(ctx, time.Duration(i)*m.cfg.RetryInterval); err != nil {
				return errors.Join(ErrFailedToCreatePool, lastErr, err)
			}
		}

		pool, err := newPoolWithConfig(ctx, poolCfg.Copy())
		if err != nil {
			lastErr = err
			continue
		}
		if err := pingPool(ctx, pool); err != nil {
			pool.Close()
			lastErr = err
			continue
		}

		m.pool = pool
		m.log.InfoContext(ctx, "database connection pool created",
			slog.String("host", m.cfg.Host),
			slog.Int("port", m.cfg.Port),
			slog.String("database", m.cfg.Database),
			slog.String("schema", m.cfg.Schema),
			slog.Int("min_size", int(m.cfg.MinPoolSize)),
			slog.Int("max_size", int(m.cfg.MaxPoolSize)),
		)
		return nil
	}

	m.log.ErrorContext(ctx, "failed to create database connection pool", logger.Error(lastErr))
	return errors.Join(ErrFailedToCreatePool, lastErr)
}

func (m *Manager) poolConfig() (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(m.cfg.ConnString())
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	poolCfg.MinConns = m.cfg.MinPoolSize
	if m.cfg.MaxPoolSize > 0 {
		poolCfg.MaxConns = m.cfg.MaxPoolSize
	}
	if poolCfg.MinConns > poolCfg.MaxConns {
		poolCfg.MinConns = poolCfg.MaxConns
	}

	params := poolCfg.ConnConfig.RuntimeParams
	if m.cfg.Schema != "" {
		params["search_path"] = m.cfg.Schema
	}
	if d := m.cfg.StatementTimeout(); d > 0 {
		params["statement_timeout"] = strconv.FormatInt(d.Milliseconds(), 10)
	}
	return poolCfg, nil
}

// Acquire checks out a connection. It fails with ErrPoolNotInitialized
// before Create and after Close.
func (m *Manager) Acquire(ctx context.Context) (*Conn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.pool == nil {
		return nil, ErrPoolNotInitialized
	}
	return m.pool.Acquire(ctx)
}

// WithConn runs fn with a pooled connection and releases it on every exit path.
func (m *Manager) WithConn(ctx context.Context, fn func(context.Context, *Conn) error) error {
	conn, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(ctx, conn)
}

// Version returns the server version string.
func (m *Manager) Version(ctx context.Context) (string, error) {
	var version string
	err := m.WithConn(ctx, func(ctx context.Context, conn *Conn) error {
		return conn.QueryRow(ctx, "SELECT version()").Scan(&version)
	})
	return version, err
}

// PoolStats is a point-in-time view of the pool.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// Stat reports pool statistics. ok is false when no pool is open.
func (m *Manager) Stat() (stats PoolStats, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.pool == nil {
		return PoolStats{}, false
	}
	st := m.pool.Stat()
	return PoolStats{
		TotalConns:    st.TotalConns(),
		IdleConns:     st.IdleConns(),
		AcquiredConns: st.AcquiredConns(),
		MaxConns:      st.MaxConns(),
	}, true
}

// Close drains the pool. Calling it again, or before Create, is a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool == nil {
		return
	}
	stat := m.pool.Stat()
	m.pool.Close()
	m.pool = nil
	m.log.Info("database connection pool closed",
		slog.Int("total_conns", int(stat.TotalConns())),
		slog.Int64("acquire_count", stat.AcquireCount()),
	)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
