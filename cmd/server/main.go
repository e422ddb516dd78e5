package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/weatherapp/handler"
	"github.com/dmitrymomot/weatherapp/modules/web"
	"github.com/dmitrymomot/weatherapp/pkg/config"
	"github.com/dmitrymomot/weatherapp/pkg/environment"
	"github.com/dmitrymomot/weatherapp/pkg/httpserver"
	"github.com/dmitrymomot/weatherapp/pkg/logger"
	"github.com/dmitrymomot/weatherapp/pkg/pg"
	"github.com/dmitrymomot/weatherapp/pkg/pipeline"
	"github.com/dmitrymomot/weatherapp/pkg/redis"
	"github.com/dmitrymomot/weatherapp/pkg/requestid"
)

type appConfig struct {
	Name        string `env:"APP_NAME" envDefault:"weatherapp"`
	Env         string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"1.0.0"`
	Title       string `env:"APP_TITLE" envDefault:"Weather App API"`
	Description string `env:"APP_DESCRIPTION" envDefault:"A weather application API built with Go"`
}

func main() {
	if err := config.LoadEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env file", logger.Error(err))
		os.Exit(1)
	}

	var (
		appCfg   appConfig
		dbCfg    pg.Config
		httpCfg  httpserver.Config
		logCfg   logger.Config
		redisCfg redis.Config
	)
	if err := errors.Join(
		config.Load(&appCfg),
		config.Load(&dbCfg),
		config.Load(&httpCfg),
		config.Load(&logCfg),
		config.Load(&redisCfg),
	); err != nil {
		slog.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	env := environment.Parse(appCfg.Env)
	log := logger.New(
		logger.WithEnvironment(env, appCfg.Name),
		logger.WithConfig(logCfg),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), log, env, appCfg, dbCfg, httpCfg, redisCfg); err != nil {
		log.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	log *slog.Logger,
	env environment.Environment,
	appCfg appConfig,
	dbCfg pg.Config,
	httpCfg httpserver.Config,
	redisCfg redis.Config,
) error {
	pool := pg.New(dbCfg, log)

	var cacheClient *goredis.Client
	var cacheCheck func(context.Context) error

	opts := []httpserver.Option{
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(ctx context.Context, log *slog.Logger) error {
			if err := pool.Create(ctx); err != nil {
				return err
			}
			if dbCfg.Migrate {
				return pg.Migrate(ctx, pool, dbCfg, log)
			}
			return nil
		}),
		httpserver.WithStopHook(func(context.Context, *slog.Logger) error {
			pool.Close()
			return nil
		}),
	}

	if redisCfg.Enabled() {
		opts = append(opts,
			httpserver.WithStartHook(func(ctx context.Context, log *slog.Logger) error {
				client, err := redis.Connect(ctx, redisCfg)
				if err != nil {
					return err
				}
				cacheClient = client
				log.InfoContext(ctx, "cache connection established")
				return nil
			}),
			httpserver.WithStopHook(func(context.Context, *slog.Logger) error {
				if cacheClient == nil {
					return nil
				}
				return cacheClient.Close()
			}),
		)
		cacheCheck = func(ctx context.Context) error {
			if cacheClient == nil {
				return redis.ErrRedisNotReady
			}
			return redis.Healthcheck(cacheClient)(ctx)
		}
	}

	mw := pipeline.Default(log, env)
	log.Info("middleware pipeline configured", slog.Any("stages", mw))

	r := chi.NewRouter()
	r.Mount("/", web.Router(web.RouterOptions{
		Info: web.AppInfo{
			Title:       appCfg.Title,
			Description: appCfg.Description,
			Version:     appCfg.Version,
			Environment: env.String(),
		},
		Database:     pool,
		Cache:        cacheCheck,
		Logger:       log,
		ErrorHandler: handler.NewErrorHandler(log),
	}))

	return httpserver.NewFromConfig(httpCfg, opts...).Run(ctx, mw.Then(r))
}
