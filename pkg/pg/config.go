package pg

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config describes the connection pool. Every field is read from the
// environment; defaults match a local development database.
type Config struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	Database string `env:"DB_NAME" envDefault:"dev"`
	User     string `env:"DB_USER" envDefault:"devweatherappuser"`
	Password string `env:"DB_PASSWORD"`
	Schema   string `env:"DB_SCHEMA" envDefault:"weatherapp"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	MinPoolSize int32 `env:"DB_MIN_POOL_SIZE" envDefault:"5"`
	MaxPoolSize int32 `env:"DB_MAX_POOL_SIZE" envDefault:"20"`
	// CommandTimeout is in whole seconds and becomes the session statement_timeout.
	CommandTimeout int `env:"DB_COMMAND_TIMEOUT" envDefault:"60"`

	RetryAttempts int           `env:"DB_CONNECT_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DB_CONNECT_RETRY_INTERVAL" envDefault:"2s"`

	Migrate         bool   `env:"DB_MIGRATE" envDefault:"false"`
	MigrationsTable string `env:"DB_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}

// ConnString renders the config as a postgres:// URL.
func (c Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// StatementTimeout converts CommandTimeout to a duration. Non-positive values disable it.
func (c Config) StatementTimeout() time.Duration {
	if c.CommandTimeout <= 0 {
		return 0
	}
	return time.Duration(c.CommandTimeout) * time.Second
}
