package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/Decentr-net/logrus/sentry"

	"github.com/Decentr-net/citypulse/internal/blob"
	"github.com/Decentr-net/citypulse/internal/blob/s3"
	"github.com/Decentr-net/citypulse/internal/cache"
	"github.com/Decentr-net/citypulse/internal/cache/file"
	rcache "github.com/Decentr-net/citypulse/internal/cache/redis"
	"github.com/Decentr-net/citypulse/internal/chat"
	"github.com/Decentr-net/citypulse/internal/chat/gemini"
	"github.com/Decentr-net/citypulse/internal/health"
	"github.com/Decentr-net/citypulse/internal/identity"
	"github.com/Decentr-net/citypulse/internal/seed"
	"github.com/Decentr-net/citypulse/internal/server"
	"github.com/Decentr-net/citypulse/internal/service/impl"
	"github.com/Decentr-net/citypulse/internal/storage"
	"github.com/Decentr-net/citypulse/internal/storage/memory"
	mstorage "github.com/Decentr-net/citypulse/internal/storage/mongo"
	"github.com/Decentr-net/citypulse/internal/storage/postgres"
	"github.com/Decentr-net/citypulse/internal/syncer"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Host         string        `long:"http.host" env:"HTTP_HOST" default:"0.0.0.0" description:"IP to listen on"`
	Port         int           `long:"http.port" env:"HTTP_PORT" default:"8080" description:"port to listen on for insecure connections"`
	HTTPTimeout  time.Duration `long:"http.request-timeout" env:"HTTP_REQUEST_TIMEOUT" default:"45s" description:"request processing timeout"`
	JWTSecret    string        `long:"jwt.secret" env:"JWT_SECRET" description:"secret access tokens are signed with, empty secret means everyone is a guest"`
	SyncInterval time.Duration `long:"sync.interval" env:"SYNC_INTERVAL" default:"30s" description:"interval between attempts to send deferred writes"`

	Storage        string        `long:"storage" env:"STORAGE" default:"postgres" choice:"postgres" choice:"mongo" choice:"memory" description:"remote storage"`
	StorageTimeout time.Duration `long:"storage.timeout" env:"STORAGE_TIMEOUT" default:"5s" description:"timeout of single remote storage call"`

	Postgres                   string `long:"postgres" env:"POSTGRES" default:"host=localhost port=5432 user=postgres password=root sslmode=disable" description:"postgres dsn"`
	PostgresMaxOpenConnections int    `long:"postgres.max_open_connections" env:"POSTGRES_MAX_OPEN_CONNECTIONS" default:"0" description:"postgres maximal open connections count, 0 means unlimited"`
	PostgresMaxIdleConnections int    `long:"postgres.max_idle_connections" env:"POSTGRES_MAX_IDLE_CONNECTIONS" default:"5" description:"postgres maximal idle connections count"`
	PostgresMigrations         string `long:"postgres.migrations" env:"POSTGRES_MIGRATIONS" default:"scripts/migrations/postgres" description:"postgres migrations directory"`

	Mongo         string `long:"mongo" env:"MONGO" default:"mongodb://localhost:27017" description:"mongo uri"`
	MongoDatabase string `long:"mongo.database" env:"MONGO_DATABASE" default:"citypulse" description:"mongo database"`

	Cache     string `long:"cache" env:"CACHE" default:"file" choice:"file" choice:"redis" description:"local cache"`
	CacheFile string `long:"cache.file" env:"CACHE_FILE" default:"data/snapshot.json" description:"path to cache file"`
	Redis     string `long:"redis" env:"REDIS" default:"redis://localhost:6379/0" description:"redis url"`
	RedisKey  string `long:"redis.key" env:"REDIS_KEY" default:"citypulse:snapshot" description:"redis key of cached snapshot"`

	S3Region    string `long:"s3.region" env:"S3_REGION" default:"us-east-1" description:"s3 region"`
	S3Bucket    string `long:"s3.bucket" env:"S3_BUCKET" description:"s3 bucket, empty bucket disables uploads"`
	S3Endpoint  string `long:"s3.endpoint" env:"S3_ENDPOINT" description:"s3 compatible endpoint, e.g. minio"`
	S3AccessKey string `long:"s3.access-key" env:"S3_ACCESS_KEY" description:"s3 access key"`
	S3SecretKey string `long:"s3.secret-key" env:"S3_SECRET_KEY" description:"s3 secret key"`
	S3NoSSL     bool   `long:"s3.no-ssl" env:"S3_NO_SSL" description:"use plain http for s3 endpoint"`

	GeminiAPIKey string `long:"gemini.api-key" env:"GEMINI_API_KEY" description:"gemini api key, empty key disables chat"`
	GeminiModel  string `long:"gemini.model" env:"GEMINI_MODEL" default:"gemini-2.5-flash" description:"gemini model"`

	LogLevel  string `long:"log.level" env:"LOG_LEVEL" default:"info" description:"Log level" choice:"debug" choice:"info" choice:"warning" choice:"error"`
	SentryDSN string `long:"sentry.dsn" env:"SENTRY_DSN" description:"sentry dsn"`
}{}

var errTerminated = errors.New("terminated")

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Fatal("failed to load .env")
	}

	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "CityPulse"
	parser.LongDescription = "CityPulse civic issues feed"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	lvl, _ := logrus.ParseLevel(opts.LogLevel) // err will always be nil
	logrus.SetLevel(lvl)

	if opts.SentryDSN != "" {
		hook, err := sentry.NewHook(sentry.Options{
			Dsn:              opts.SentryDSN,
			AttachStacktrace: true,
			Release:          health.GetVersion(),
			ServerName:       "citypulse",
		}, logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel)

		if err != nil {
			logrus.WithError(err).Fatal("failed to init sentry")
		}

		logrus.AddHook(hook)
	} else {
		logrus.Info("empty sentry dsn")
		logrus.Warn("skip sentry initialization")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, sp := mustGetStorage(ctx)
	c, cp := mustGetCache()

	svc := impl.New(
		s,
		mustGetBlob(),
		c,
		identity.New(identity.ContextProvider{}),
		seed.New(s, nil),
	)
	sc := syncer.New(svc, opts.SyncInterval)

	r := chi.NewRouter()
	server.SetupHealth(r, health.Handler(5*time.Second, sp, cp, sc))
	r.Group(func(r chi.Router) {
		server.SetupRouter(svc, mustGetChat(ctx), []byte(opts.JWTSecret), r, opts.HTTPTimeout)
	})

	srv := http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler: r,
	}

	gr, _ := errgroup.WithContext(ctx)
	gr.Go(func() error {
		return sc.Run(ctx)
	})
	gr.Go(srv.ListenAndServe)
	gr.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

		s := <-sigs

		logrus.Infof("terminating by %s signal", s)

		cancel()

		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()

		if err := srv.Shutdown(sctx); err != nil {
			logrus.WithError(err).Error("failed to shutdown http server")
		}

		return errTerminated
	})

	logrus.Info("service started")

	if err := gr.Wait(); err != nil && !errors.Is(err, errTerminated) && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("service unexpectedly closed")
	}
}

func mustGetStorage(ctx context.Context) (storage.Storage, health.Pinger) {
	switch opts.Storage {
	case "postgres":
		db := mustGetDB()
		return postgres.New(db, opts.StorageTimeout), health.SubjectPinger("postgres", db.PingContext)
	case "mongo":
		client, err := mongo.Connect(options.Client().ApplyURI(opts.Mongo).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)))
		if err != nil {
			logrus.WithError(err).Fatal("failed to create mongo client")
		}

		pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := client.Ping(pctx, readpref.Primary()); err != nil {
			logrus.WithError(err).Fatal("failed to ping mongo")
		}

		return mstorage.New(client.Database(opts.MongoDatabase), opts.StorageTimeout), health.SubjectPinger("mongo", func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		})
	default:
		logrus.Warn("using in-memory storage, data will be lost on restart")
		m := memory.New()
		return m, health.SubjectPinger("memory", m.Ping)
	}
}

func mustGetDB() *sql.DB {
	db, err := sql.Open("postgres", opts.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create postgres connection")
	}
	db.SetMaxOpenConns(opts.PostgresMaxOpenConnections)
	db.SetMaxIdleConns(opts.PostgresMaxIdleConnections)

	if err := db.PingContext(context.Background()); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	driver, err := migratep.WithInstance(db, &migratep.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create database migrate driver")
	}

	migrator, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", opts.PostgresMigrations), "postgres", driver)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}

	switch v, d, err := migrator.Version(); err {
	case nil:
		logrus.Infof("database version %d with dirty state %t", v, d)
	case migrate.ErrNilVersion:
		logrus.Info("database version: nil")
	default:
		logrus.WithError(err).Fatal("failed to get version")
	}

	switch err := migrator.Up(); err {
	case nil:
		logrus.Info("database was migrated")
	case migrate.ErrNoChange:
		logrus.Info("database is up-to-date")
	default:
		logrus.WithError(err).Fatal("failed to migrate db")
	}

	return db
}

func mustGetCache() (cache.Cache, health.Pinger) {
	if opts.Cache == "redis" {
		o, err := redis.ParseURL(opts.Redis)
		if err != nil {
			logrus.WithError(err).Fatal("failed to parse redis url")
		}

		client := redis.NewClient(o)

		return rcache.New(client, opts.RedisKey), health.SubjectPinger("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	c, err := file.New(opts.CacheFile)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create file cache")
	}

	return c, health.SubjectPinger("cache", func(ctx context.Context) error {
		_, err := c.Read(ctx)
		return err
	})
}

func mustGetBlob() blob.Storage {
	if opts.S3Bucket == "" {
		logrus.Warn("empty s3 bucket, uploads are disabled")
		return blob.Disabled{}
	}

	b, err := s3.New(s3.Config{
		Region:     opts.S3Region,
		Bucket:     opts.S3Bucket,
		Endpoint:   opts.S3Endpoint,
		AccessKey:  opts.S3AccessKey,
		SecretKey:  opts.S3SecretKey,
		DisableSSL: opts.S3NoSSL,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create s3 client")
	}

	return b
}

func mustGetChat(ctx context.Context) chat.Answerer {
	if opts.GeminiAPIKey == "" {
		logrus.Warn("empty gemini api key, chat is disabled")
		return nil
	}

	a, err := gemini.New(ctx, opts.GeminiAPIKey, opts.GeminiModel)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create gemini client")
	}

	return a
}
