package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	mongoactor "github.com/rbroggi/atoll/internal/actors/mongo"
	"github.com/rbroggi/atoll/internal/actors/pubsub/producer"
	"github.com/rbroggi/atoll/internal/config"
	"github.com/rbroggi/atoll/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const healthTimeout = 2 * time.Second

// SetupLogging configures the JSON logger of the binaries.
func SetupLogging(level string) error {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}
	log.SetLevel(lvl)
	return nil
}

// OpenStore connects the mongo client and builds the store over it. The client is not yet
// known to be reachable; see PrepareDB.
func OpenStore(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongoactor.MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating mongo client: %w", err)
	}
	store, err := mongoactor.NewMongoDB(
		mongoactor.MongoDBArgs{Client: client, Database: cfg.Database},
		mongoactor.WithTransactions(cfg.Transactions),
		mongoactor.WithOperationTimeout(cfg.OperationTimeout),
	)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("error initializing mongo store: %w", err)
	}
	return client, store, nil
}

// OpenSender returns the domain event publisher, or a nil sender when publishing is disabled.
// The returned func releases the publisher.
func OpenSender(ctx context.Context, cfg config.PubSubConfig) (ports.Sender, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating pubsub client: %w", err)
	}
	p, err := producer.NewProducer(client.Topic(cfg.TopicID))
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return p, func() {
		p.Close()
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("error closing pubsub client")
		}
	}, nil
}

// NewHTTPHandler serves prometheus metrics at /metrics and store reachability at /healthz.
func NewHTTPHandler(store Store) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := store.CheckConnection(ctx); err != nil {
			log.WithError(err).Warn("health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store not reachable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Serve runs the HTTP server on addr until ctx is done, then shuts it down.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	log.WithField("http-server-addr", addr).Info("http server up or soon to be up")

	select {
	case err := <-errCh:
		return fmt.Errorf("error serving http: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %w", err)
	}
	return nil
}
