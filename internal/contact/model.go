package contact

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Delivery status of the operator email for a submission.
const (
	EmailSent   = "sent"
	EmailFailed = "failed"
)

// Request is the JSON body accepted by POST /api/contact.
type Request struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company,omitempty"`
	Message      string `json:"message"`
	InterestedIn string `json:"interested_in,omitempty"`
}

// Validate checks the required fields.
func (r *Request) Validate() error {
	if r.Name == "" || r.Email == "" || r.Message == "" {
		return ErrMissingFields
	}
	return nil
}

// Submission is a stored contact form submission.
type Submission struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Company      string    `json:"company,omitempty"`
	InterestedIn string    `json:"interested_in,omitempty"`
	Message      string    `json:"message"`
	EmailStatus  string    `json:"email_status"`
	EmailError   string    `json:"email_error,omitempty"`
	IP           string    `json:"ip,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// sanitizeEmail returns the trimmed address when it looks like an email and
// "" otherwise.
func sanitizeEmail(s string) string {
	s = strings.TrimSpace(s)
	if emailPattern.MatchString(s) {
		return s
	}
	return ""
}
