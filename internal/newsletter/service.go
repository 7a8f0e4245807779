package newsletter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

// Outcome is the result of a signup attempt.
type Outcome int

const (
	Subscribed Outcome = iota
	AlreadySubscribed
	Reactivated
)

func (o Outcome) String() string {
	switch o {
	case AlreadySubscribed:
		return "already_subscribed"
	case Reactivated:
		return "reactivated"
	default:
		return "subscribed"
	}
}

// Service applies the signup rules on top of a Repository.
type Service struct {
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewService creates a signup service.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Subscribe adds the email, reactivates a lapsed subscription, or reports an
// existing active one. Validation failures return ErrEmailRequired or
// ErrInvalidEmail.
func (s *Service) Subscribe(ctx context.Context, req SignupRequest) (Outcome, error) {
	req, err := req.Normalize()
	if err != nil {
		return Subscribed, err
	}

	existing, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && existing.Active():
		return AlreadySubscribed, nil
	case err == nil:
		if err := s.repo.Reactivate(ctx, req.Email, s.now().UTC()); err != nil {
			return Reactivated, err
		}
		s.logger.Info("newsletter: subscription reactivated", "source", req.Source)
		return Reactivated, nil
	case !errors.Is(err, ErrSubscriberNotFound):
		return Subscribed, fmt.Errorf("newsletter: lookup: %w", err)
	}

	err = s.repo.Insert(ctx, &Subscriber{
		Email:        req.Email,
		Source:       req.Source,
		Status:       StatusActive,
		Metadata:     req.Metadata,
		SubscribedAt: s.now().UTC(),
	})
	if errors.Is(err, ErrDuplicateSubscriber) {
		// Lost a race with a concurrent signup for the same address.
		return AlreadySubscribed, nil
	}
	if err != nil {
		return Subscribed, err
	}
	s.logger.Info("newsletter: subscribed", "source", req.Source)
	return Subscribed, nil
}
