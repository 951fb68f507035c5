package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rbroggi/atoll/internal/bootstrap"
	"github.com/rbroggi/atoll/internal/config"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	down          = flag.Bool("down", false, "run migration down")
	configDir     = flag.String("config-dir", ".", "directory holding the optional atoll.yaml")
	migrationsDir = flag.String("migrations-dir", "db/migrations", "directory holding the migrations")
)

func main() {
	flag.Parse()
	cfg, err := config.Load(*configDir)
	if err != nil {
		log.WithError(err).Fatal("error loading config")
	}
	if err := bootstrap.SetupLogging(cfg.Server.LogLevel); err != nil {
		log.WithError(err).Fatal("error setting up logging")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URL))
	if err != nil {
		log.WithError(err).Fatal("error opening db connection")
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("error disconnecting from mongo")
		}
	}()

	driver, err := mongodb.WithInstance(client, &mongodb.Config{
		DatabaseName:    cfg.Mongo.Database,
		TransactionMode: cfg.Mongo.Transactions,
	})
	if err != nil {
		log.WithError(err).Fatal("error invoking WithInstance")
	}
	dir, err := filepath.Abs(*migrationsDir)
	if err != nil {
		log.WithError(err).Fatal("error resolving migrations dir")
	}
	source := "file://" + filepath.ToSlash(dir)
	log.WithField("migrations", source).Info("using migrations")

	m, err := migrate.NewWithDatabaseInstance(source, cfg.Mongo.Database, driver)
	if err != nil {
		log.WithError(err).Fatal("NewWithDatabaseInstance error")
	}
	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migration to apply")
		os.Exit(0)
	}
	if err != nil {
		log.WithError(err).WithField("down", *down).Fatal("error migrating")
	}
	log.WithField("down", *down).Info("migration done")
}
