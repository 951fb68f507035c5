package usecase

import (
	"context"
	"time"

	"github.com/rbroggi/atoll/internal/core/ports"
)

// DefaultMailCodeMaxAttempts bounds the mail code generation loop.
const DefaultMailCodeMaxAttempts = 1000

// ServicesArgs contains the mandatory arguments shared by all services.
type ServicesArgs struct {
	// Repository is the repository for persistance operations.
	Repository ports.Repository

	// Transactor groups multi-document sequences. Defaults to running them directly.
	Transactor ports.Transactor

	// Sender receives domain events. Optional.
	Sender ports.Sender
}

// ServicesOptArgs are the optional arguments for building the services.
type ServicesOptArgs = func(*servicesOptions)

type servicesOptions struct {
	nowFunc             func() time.Time
	mailCodeMaxAttempts int
	codeFunc            func() (string, error)
}

// WithNowFunc can be used to override the nowFunc. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) ServicesOptArgs {
	return func(o *servicesOptions) {
		o.nowFunc = nowFunc
	}
}

// WithMailCodeMaxAttempts overrides the number of candidates tried before giving up on a mail code.
func WithMailCodeMaxAttempts(attempts int) ServicesOptArgs {
	return func(o *servicesOptions) {
		if attempts > 0 {
			o.mailCodeMaxAttempts = attempts
		}
	}
}

// WithCodeFunc overrides the mail code candidate generator. Useful for testing.
func WithCodeFunc(codeFunc func() (string, error)) ServicesOptArgs {
	return func(o *servicesOptions) {
		o.codeFunc = codeFunc
	}
}

// Services gathers every domain service, built over the same repository.
type Services struct {
	Users                  *UserService
	MailCodes              *MailCodeService
	Teams                  *TeamService
	Invites                *InviteService
	Events                 *EventService
	EventRequests          *EventRequestService
	Ratings                *RatingService
	Feedbacks              *FeedbackService
	RepresentativeRequests *RepresentativeRequestService
}

// NewServices creates all the services.
func NewServices(args ServicesArgs, optArgs ...ServicesOptArgs) *Services {
	opts := &servicesOptions{
		nowFunc:             func() time.Time { return time.Now().UTC() },
		mailCodeMaxAttempts: DefaultMailCodeMaxAttempts,
		codeFunc:            generateMailCode,
	}
	for _, opt := range optArgs {
		opt(opts)
	}
	transactor := args.Transactor
	if transactor == nil {
		transactor = directTransactor{}
	}
	informer := NewInformer(args.Sender, WithInformerNowFunc(opts.nowFunc))
	repo := args.Repository

	users := &UserService{users: repo, informer: informer}
	return &Services{
		Users: users,
		MailCodes: &MailCodeService{
			mailCodes:   repo,
			users:       repo,
			maxAttempts: opts.mailCodeMaxAttempts,
			codeFunc:    opts.codeFunc,
		},
		Teams:   &TeamService{teams: repo, users: repo, informer: informer},
		Invites: &InviteService{invites: repo, teams: repo, users: repo, transactor: transactor, informer: informer},
		Events: &EventService{
			events:    repo,
			teams:     repo,
			feedbacks: repo,
			informer:  informer,
			nowFunc:   opts.nowFunc,
		},
		EventRequests: &EventRequestService{
			requests:   repo,
			events:     repo,
			users:      repo,
			transactor: transactor,
			informer:   informer,
			nowFunc:    opts.nowFunc,
		},
		Ratings:                &RatingService{ratings: repo, teams: repo, events: repo},
		Feedbacks:              &FeedbackService{feedbacks: repo, events: repo, users: repo},
		RepresentativeRequests: &RepresentativeRequestService{requests: repo, users: repo},
	}
}

type directTransactor struct{}

func (directTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
