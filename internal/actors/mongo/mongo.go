package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rbroggi/atoll/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection                  = "users"
	TeamsCollection                  = "teams"
	EventsCollection                 = "events"
	EventRequestsCollection          = "event_requests"
	RatingsCollection                = "ratings"
	FeedbacksCollection              = "feedbacks"
	InvitesCollection                = "invites"
	MailCodesCollection              = "mail_codes"
	RepresentativeRequestsCollection = "representative_requests"
)

// DefaultOperationTimeout bounds every store round trip unless overridden.
const DefaultOperationTimeout = 5 * time.Second

var (
	_ ports.Repository = (*MongoDB)(nil)
	_ ports.Transactor = (*MongoDB)(nil)
)

// MongoDB is a mongo adapter for persistence.
type MongoDB struct {
	client *mongo.Client
	opts   *storeOptions

	users                  *collection[userDoc, *userDoc]
	teams                  *collection[teamDoc, *teamDoc]
	events                 *collection[eventDoc, *eventDoc]
	eventRequests          *collection[eventRequestDoc, *eventRequestDoc]
	ratings                *collection[ratingDoc, *ratingDoc]
	feedbacks              *collection[feedbackDoc, *feedbackDoc]
	invites                *collection[inviteDoc, *inviteDoc]
	mailCodes              *collection[mailCodeDoc, *mailCodeDoc]
	representativeRequests *collection[representativeRequestDoc, *representativeRequestDoc]
}

// MongoDBArgs are the mandatory arguments for the creation of a MongoDB.
type MongoDBArgs struct {
	// Client is a connected mongo client.
	Client *mongo.Client

	// Database is the name of the database holding the collections.
	Database string
}

type storeOptions struct {
	nowFunc          func() time.Time
	transactions     bool
	operationTimeout time.Duration
}

// MongoDBOptArgs are the optional arguments for building a MongoDB.
type MongoDBOptArgs = func(*storeOptions)

// WithNowFunc can be used to override the nowFunc. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) MongoDBOptArgs {
	return func(o *storeOptions) {
		o.nowFunc = nowFunc
	}
}

// WithTransactions runs WithinTransaction blocks in a multi-document transaction. It requires a replica set.
func WithTransactions(enabled bool) MongoDBOptArgs {
	return func(o *storeOptions) {
		o.transactions = enabled
	}
}

// WithOperationTimeout overrides the timeout of every single store round trip.
func WithOperationTimeout(timeout time.Duration) MongoDBOptArgs {
	return func(o *storeOptions) {
		if timeout > 0 {
			o.operationTimeout = timeout
		}
	}
}

// NewMongoDB creates a new MongoDB.
func NewMongoDB(args MongoDBArgs, optArgs ...MongoDBOptArgs) (*MongoDB, error) {
	if args.Client == nil {
		return nil, fmt.Errorf("nil mongo client")
	}
	if args.Database == "" {
		return nil, fmt.Errorf("empty mongo database name")
	}
	opts := &storeOptions{
		nowFunc:          func() time.Time { return time.Now().UTC() },
		operationTimeout: DefaultOperationTimeout,
	}
	for _, opt := range optArgs {
		opt(opts)
	}

	db := args.Client.Database(args.Database)
	return &MongoDB{
		client: args.Client,
		opts:   opts,
		users: newCollection[userDoc](db, UsersCollection, opts,
			mongo.IndexModel{Keys: bson.D{{Key: fieldMail, Value: 1}}, Options: options.Index().SetUnique(true)},
			mongo.IndexModel{Keys: bson.D{{Key: fieldTokens, Value: 1}}},
			mongo.IndexModel{Keys: bson.D{{Key: fieldTgID, Value: 1}}},
		),
		teams: newCollection[teamDoc](db, TeamsCollection, opts,
			mongo.IndexModel{Keys: bson.D{{Key: fieldUserOIDs, Value: 1}}},
		),
		events: newCollection[eventDoc](db, EventsCollection, opts,
			mongo.IndexModel{Keys: bson.D{{Key: fieldTeamOIDs, Value: 1}}},
			mongo.IndexModel{
				Keys: bson.D{{Key: fieldSourceRequestOID, Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: fieldSourceRequestOID, Value: bson.D{{Key: "$exists", Value: true}}}}),
			},
		),
		eventRequests: newCollection[eventRequestDoc](db, EventRequestsCollection, opts),
		ratings: newCollection[ratingDoc](db, RatingsCollection, opts,
			mongo.IndexModel{Keys: bson.D{{Key: fieldEventOID, Value: 1}}},
		),
		feedbacks: newCollection[feedbackDoc](db, FeedbacksCollection, opts,
			mongo.IndexModel{Keys: bson.D{{Key: fieldEventOID, Value: 1}}},
		),
		invites: newCollection[inviteDoc](db, InvitesCollection, opts,
			mongo.IndexModel{
				Keys:    bson.D{{Key: fieldFromTeamOID, Value: 1}, {Key: fieldToUserOID, Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			mongo.IndexModel{Keys: bson.D{{Key: fieldToUserOID, Value: 1}}},
		),
		mailCodes: newCollection[mailCodeDoc](db, MailCodesCollection, opts,
			mongo.IndexModel{Keys: bson.D{{Key: fieldCode, Value: 1}}, Options: options.Index().SetUnique(true)},
			mongo.IndexModel{Keys: bson.D{{Key: fieldToMail, Value: 1}}},
		),
		representativeRequests: newCollection[representativeRequestDoc](db, RepresentativeRequestsCollection, opts),
	}, nil
}

// CheckConnection pings the primary. Failures are reported as model.ErrConnectivity.
func (m *MongoDB) CheckConnection(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, m.opts.operationTimeout)
	defer cancel()
	if err := m.client.Ping(callCtx, readpref.Primary()); err != nil {
		return classify(ctx, err)
	}
	return nil
}

// EnsureAllIndexes creates the indexes of every collection. It is idempotent.
func (m *MongoDB) EnsureAllIndexes(ctx context.Context) error {
	var result *multierror.Error
	for _, ensure := range []func(context.Context) error{
		m.users.ensureIndexes,
		m.teams.ensureIndexes,
		m.events.ensureIndexes,
		m.eventRequests.ensureIndexes,
		m.ratings.ensureIndexes,
		m.feedbacks.ensureIndexes,
		m.invites.ensureIndexes,
		m.mailCodes.ensureIndexes,
		m.representativeRequests.ensureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("error ensuring indexes: %w", err)
	}
	log.Info("indexes ensured")
	return nil
}

// WithinTransaction runs fn in a multi-document transaction when transactions are enabled,
// otherwise it runs fn directly. fn may be retried on transient transaction errors.
func (m *MongoDB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.opts.transactions {
		return fn(ctx)
	}
	session, err := m.client.StartSession()
	if err != nil {
		return classify(ctx, err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
