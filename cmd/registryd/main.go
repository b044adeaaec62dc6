package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ibakshay/nest.land/modules/registry"
	"github.com/ibakshay/nest.land/pkg/apikey"
	"github.com/ibakshay/nest.land/pkg/catalog"
	"github.com/ibakshay/nest.land/pkg/config"
	"github.com/ibakshay/nest.land/pkg/content"
	"github.com/ibakshay/nest.land/pkg/httpserver"
	"github.com/ibakshay/nest.land/pkg/logger"
	"github.com/ibakshay/nest.land/pkg/mongo"
	"github.com/ibakshay/nest.land/pkg/namepolicy"
	"github.com/ibakshay/nest.land/pkg/pg"
	"github.com/ibakshay/nest.land/pkg/publish"
	"github.com/ibakshay/nest.land/pkg/redis"
)

// appConfig selects the storage backends; each backend carries its own
// connection settings in its package Config.
type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"APP_NAME" envDefault:"registryd"`

	SessionBackend string `env:"SESSION_BACKEND" envDefault:"memory"`  // memory | redis
	CatalogBackend string `env:"CATALOG_BACKEND" envDefault:"memory"`  // memory | postgres | mongo
	ContentBackend string `env:"CONTENT_BACKEND" envDefault:"local"`   // local | s3
	ContentDir     string `env:"CONTENT_DIR" envDefault:"data/content"`
	MongoDatabase  string `env:"MONGODB_DATABASE" envDefault:"registry"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var app appConfig
	if err := config.Load(&app); err != nil {
		return fmt.Errorf("load app config: %w", err)
	}

	log := logger.New(logger.WithEnvironment(app.Environment, app.ServiceName))
	logger.SetAsDefault(log)

	var publishCfg publish.Config
	if err := config.Load(&publishCfg); err != nil {
		return fmt.Errorf("load publish config: %w", err)
	}

	var healthchecks []func(context.Context) error

	// Session store.
	var sessions publish.Store
	switch app.SessionBackend {
	case "redis":
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return fmt.Errorf("load redis config: %w", err)
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		healthchecks = append(healthchecks, redis.Healthcheck(client))
		sessions = publish.NewRedisStore(client, publishCfg.SessionTTL)
	default:
		store := publish.NewMemoryStore(publishCfg.SessionTTL, publishCfg.CleanupInterval)
		defer store.Close()
		sessions = store
	}

	// Catalog store.
	var cat catalog.Store
	switch app.CatalogBackend {
	case "postgres":
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return fmt.Errorf("load postgres config: %w", err)
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		healthchecks = append(healthchecks, pg.Healthcheck(pool))
		cat = catalog.NewPostgresStore(pool)
	case "mongo":
		var mongoCfg mongo.Config
		if err := config.Load(&mongoCfg); err != nil {
			return fmt.Errorf("load mongo config: %w", err)
		}
		client, err := mongo.New(ctx, mongoCfg)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer func() { _ = client.Disconnect(ctx) }()
		healthchecks = append(healthchecks, mongo.Healthcheck(client))
		cat = catalog.NewMongoStore(client.Database(app.MongoDatabase))
	default:
		cat = catalog.NewMemoryStore()
	}

	// Content store.
	var storage content.Storage
	switch app.ContentBackend {
	case "s3":
		var s3Cfg content.S3Config
		if err := config.Load(&s3Cfg); err != nil {
			return fmt.Errorf("load s3 config: %w", err)
		}
		s3Store, err := content.NewS3Storage(ctx, s3Cfg)
		if err != nil {
			return fmt.Errorf("init s3 storage: %w", err)
		}
		storage = s3Store
	default:
		local, err := content.NewLocalStorage(app.ContentDir)
		if err != nil {
			return fmt.Errorf("init local storage: %w", err)
		}
		storage = local
	}

	// Collaborators.
	var keyCfg apikey.Config
	if err := config.Load(&keyCfg); err != nil {
		return fmt.Errorf("load apikey config: %w", err)
	}
	keyring, err := apikey.NewFromConfig(keyCfg)
	if err != nil {
		return fmt.Errorf("build keyring: %w", err)
	}

	var nameCfg namepolicy.Config
	if err := config.Load(&nameCfg); err != nil {
		return fmt.Errorf("load name policy config: %w", err)
	}
	names, err := namepolicy.New(nameCfg)
	if err != nil {
		return fmt.Errorf("build name policy: %w", err)
	}

	publisher := publish.NewServiceFromConfig(publishCfg, sessions, cat, storage,
		publish.WithNamePolicy(names),
		publish.WithLogger(log),
	)

	var registryCfg registry.Config
	if err := config.Load(&registryCfg); err != nil {
		return fmt.Errorf("load registry config: %w", err)
	}
	module := registry.NewService(publisher, cat, storage, keyring,
		registry.WithLogger(log),
		registry.WithMaxBodyBytes(registryCfg.MaxBodyBytes),
	)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", httpserver.HealthCheckHandler(ctx, log, healthchecks...))
	r.Mount("/", module.Handle())

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return fmt.Errorf("load http config: %w", err)
	}
	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("registry listening", "addr", httpCfg.Addr)
		}),
	)

	return srv.Run(ctx, r)
}
