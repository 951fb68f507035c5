package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rbroggi/atoll/internal/bootstrap"
	"github.com/rbroggi/atoll/internal/config"
	"github.com/rbroggi/atoll/internal/core/usecase"
	"github.com/rbroggi/atoll/internal/worker"
	log "github.com/sirupsen/logrus"
)

var configDir = flag.String("config-dir", ".", "directory holding the optional atoll.yaml")

func run() error {
	cfg, err := config.Load(*configDir)
	if err != nil {
		return err
	}
	if err := bootstrap.SetupLogging(cfg.Server.LogLevel); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer cancel()

	client, store, err := bootstrap.OpenStore(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			log.WithError(err).Warn("error disconnecting from mongo")
		}
	}()
	if err := bootstrap.PrepareDB(ctx, store, cfg.Mongo.ConnectAttempts); err != nil {
		return err
	}

	sender, closeSender, err := bootstrap.OpenSender(ctx, cfg.PubSub)
	if err != nil {
		return err
	}
	defer closeSender()

	services := usecase.NewServices(usecase.ServicesArgs{Repository: store, Transactor: store, Sender: sender})
	sweeper, err := worker.NewSweeper(worker.SweeperArgs{
		Sweep:    services.EventRequests,
		Interval: cfg.Worker.SweepInterval,
	})
	if err != nil {
		return err
	}
	go sweeper.Start(ctx)

	return bootstrap.Serve(ctx, cfg.Worker.MetricsAddress, bootstrap.NewHTTPHandler(store))
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.WithError(err).Fatal("worker failed")
	}
}
