package main

import (
	"context"
	"flag"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/rbroggi/atoll/internal/config"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	configDir     = flag.String("config-dir", ".", "directory holding the optional atoll.yaml")
	subscriptions = flag.String("subscriptions", "", "comma-separated subscriptions to create on the domain event topic")
)

func main() {
	flag.Parse()
	cfg, err := config.Load(*configDir)
	if err != nil {
		log.WithError(err).Fatal("error loading config")
	}

	ctx := context.Background()
	projectID := cfg.PubSub.ProjectID
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.WithError(err).WithField("project", projectID).Fatal("unable to create pubsub client")
	}
	defer client.Close()

	topicID := cfg.PubSub.TopicID
	topic, err := client.CreateTopic(ctx, topicID)
	switch {
	case status.Code(err) == codes.AlreadyExists:
		topic = client.Topic(topicID)
	case err != nil:
		log.WithError(err).WithField("project", projectID).WithField("topic", topicID).Fatal("unable to create topic")
	}

	for _, s := range strings.Split(*subscriptions, ",") {
		subscriptionID := strings.TrimSpace(s)
		if subscriptionID == "" {
			continue
		}
		_, err = client.CreateSubscription(ctx, subscriptionID, pubsub.SubscriptionConfig{Topic: topic})
		if err != nil && status.Code(err) != codes.AlreadyExists {
			log.WithError(err).WithField("topic", topicID).WithField("subscription", subscriptionID).Fatal("unable to create subscription")
		}
		log.WithField("project", projectID).
			WithField("topic", topicID).
			WithField("subscription", subscriptionID).
			Info("subscription ready")
	}
	log.WithField("project", projectID).WithField("topic", topicID).Info("topic ready")
}
