package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Decentr-net/citypulse/internal/cache/file"
	"github.com/Decentr-net/citypulse/internal/seed"
	"github.com/Decentr-net/citypulse/internal/storage"
	mstorage "github.com/Decentr-net/citypulse/internal/storage/mongo"
	"github.com/Decentr-net/citypulse/internal/storage/postgres"
)

var opts = struct {
	Storage            string        `long:"storage" env:"STORAGE" default:"postgres" choice:"postgres" choice:"mongo" description:"remote storage"`
	StorageTimeout     time.Duration `long:"storage.timeout" env:"STORAGE_TIMEOUT" default:"5s" description:"timeout of single remote storage call"`
	Postgres           string        `long:"postgres" env:"POSTGRES" default:"host=localhost port=5432 user=postgres password=root sslmode=disable" description:"postgres dsn"`
	PostgresMigrations string        `long:"postgres.migrations" env:"POSTGRES_MIGRATIONS" default:"scripts/migrations/postgres" description:"postgres migrations directory"`
	Mongo              string        `long:"mongo" env:"MONGO" default:"mongodb://localhost:27017" description:"mongo uri"`
	MongoDatabase      string        `long:"mongo.database" env:"MONGO_DATABASE" default:"citypulse" description:"mongo database"`
	CacheFile          string        `long:"cache.file" env:"CACHE_FILE" description:"path to cache file to be filled with seeded posts"`
}{}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Fatal("failed to load .env")
	}

	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "seed"
	parser.LongDescription = "Fills empty remote storage with demo posts"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	logrus.Info("seed started")

	ctx := context.Background()

	var sd *seed.Seeder
	if opts.CacheFile != "" {
		c, err := file.New(opts.CacheFile)
		if err != nil {
			logrus.WithError(err).Fatal("failed to create file cache")
		}
		sd = seed.New(mustGetStorage(ctx), c)
	} else {
		sd = seed.New(mustGetStorage(ctx), nil)
	}

	posts, err := sd.EnsureSeeded(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("failed to seed")
	}

	logrus.WithField("posts", len(posts)).Info("remote storage is seeded")
}

func mustGetStorage(ctx context.Context) storage.Storage {
	if opts.Storage == "mongo" {
		client, err := mongo.Connect(options.Client().ApplyURI(opts.Mongo))
		if err != nil {
			logrus.WithError(err).Fatal("failed to create mongo client")
		}

		return mstorage.New(client.Database(opts.MongoDatabase), opts.StorageTimeout)
	}

	db, err := sql.Open("postgres", opts.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create postgres connection")
	}

	if err := db.PingContext(ctx); err != nil {
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

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		logrus.WithError(err).Fatal("failed to migrate db")
	}

	return postgres.New(db, opts.StorageTimeout)
}
