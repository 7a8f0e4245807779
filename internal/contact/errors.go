package contact

import "errors"

var (
	// ErrMissingFields is returned when name, email or message is empty
	ErrMissingFields = errors.New("Missing required fields: name, email, message")

	// ErrSubmissionNotFound is returned when a submission is not found
	ErrSubmissionNotFound = errors.New("submission not found")
)
