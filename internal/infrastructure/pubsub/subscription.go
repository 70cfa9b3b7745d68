package pubsub

import (
	"fmt"
	"net/url"

	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	"github.com/google/uuid"
)

type Subscription struct {
	ID       string
	Event    string
	Endpoint string
	Secret   string
	Created  int64
}

type subscriptions []Subscription

func (s subscriptions) toPortable() []ports.Subscription {
	subs := make([]ports.Subscription, 0, len(s))
	for i := range s {
		sub := s[i]
		subs = append(subs, &sub)
	}
	return subs
}

func NewSubscription(event, endpoint, secret string) (*Subscription, error) {
	if len(event) <= 0 {
		return nil, ErrMissingEvent
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEndpoint, err)
	}
	id := uuid.New().String()
	return &Subscription{ID: id, Event: event, Endpoint: endpoint, Secret: secret}, nil
}

func (h *Subscription) Topic() string {
	return h.Event
}

func (h *Subscription) Id() string {
	return h.ID
}

func (h *Subscription) NotifyAt() string {
	return h.Endpoint
}

func (h *Subscription) IsSecured() bool {
	return len(h.Secret) > 0
}
