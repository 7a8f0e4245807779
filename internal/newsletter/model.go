package newsletter

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Subscriber statuses.
const (
	StatusActive       = "active"
	StatusUnsubscribed = "unsubscribed"
)

const defaultSource = "unknown"

// Subscriber is a newsletter_subscribers row.
type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	Metadata     Metadata  `json:"metadata"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// Metadata records where a signup came from.
type Metadata struct {
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
}

// Active reports whether the subscription is live.
func (s *Subscriber) Active() bool {
	return s.Status == StatusActive
}

// SignupRequest is a validated-on-use signup attempt.
type SignupRequest struct {
	Email    string
	Source   string
	Metadata Metadata
}

// Normalize validates the request and returns it with a lower-cased email
// and a default source.
func (r SignupRequest) Normalize() (SignupRequest, error) {
	if r.Email == "" {
		return r, ErrEmailRequired
	}
	if !emailPattern.MatchString(r.Email) {
		return r, ErrInvalidEmail
	}
	r.Email = strings.ToLower(r.Email)
	if r.Source == "" {
		r.Source = defaultSource
	}
	return r, nil
}
