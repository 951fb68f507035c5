package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rbroggi/atoll/internal/bootstrap"
	"github.com/rbroggi/atoll/internal/config"
	"github.com/rbroggi/atoll/internal/core/usecase"
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
		return fmt.Errorf("db does not appear to be usable: %w", err)
	}

	sender, closeSender, err := bootstrap.OpenSender(ctx, cfg.PubSub)
	if err != nil {
		return err
	}
	defer closeSender()

	services := usecase.NewServices(
		usecase.ServicesArgs{Repository: store, Transactor: store, Sender: sender},
		usecase.WithMailCodeMaxAttempts(cfg.MailCode.MaxAttempts),
	)

	// conversions interrupted by a previous crash are completed before serving
	res, err := services.EventRequests.SweepConvertedRequests(ctx)
	if err != nil {
		log.WithError(err).Error("startup sweep failed")
	} else {
		log.WithField("inspected", res.Inspected).WithField("removed", res.Removed).Info("startup sweep done")
	}

	log.Info("atoll ready. listening to SIGTERM, SIGINT, SIGQUIT for stopping the server")
	return bootstrap.Serve(ctx, cfg.Server.MetricsAddress, bootstrap.NewHTTPHandler(store))
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
