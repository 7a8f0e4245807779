package newsletter

import "errors"

var (
	// ErrEmailRequired is returned when the email is missing or not a string
	ErrEmailRequired = errors.New("Email is required")

	// ErrInvalidEmail is returned when the email fails the format check
	ErrInvalidEmail = errors.New("Invalid email format")

	// ErrSubscriberNotFound is returned when no subscriber has the email
	ErrSubscriberNotFound = errors.New("subscriber not found")

	// ErrDuplicateSubscriber is returned when an insert races an existing row
	ErrDuplicateSubscriber = errors.New("subscriber already exists")
)
