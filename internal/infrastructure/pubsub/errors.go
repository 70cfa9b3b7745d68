package pubsub

import "errors"

var (
	// ErrMissingEvent is returned when subscribing without a topic.
	ErrMissingEvent = errors.New("missing event")
	// ErrInvalidEndpoint is returned if the webhook endpoint is not a valid
	// URI.
	ErrInvalidEndpoint = errors.New("invalid webhook endpoint, must be a valid URI")
	// ErrSubscriptionNotFound is returned when unsubscribing an unknown id.
	ErrSubscriptionNotFound = errors.New("webhook not found")
)
