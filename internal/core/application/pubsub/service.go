package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
)

const (
	EventOrderCreated   = "ORDER_CREATED"
	EventOrderFilled    = "ORDER_FILLED"
	EventOrderReclaimed = "ORDER_RECLAIMED"
)

type Service struct {
	pubsub ports.PubSub
}

func NewService(pubsub ports.PubSub) (*Service, error) {
	if pubsub == nil {
		return nil, fmt.Errorf("missing pubsub")
	}
	return &Service{pubsub}, nil
}

func (s *Service) PubSub() ports.PubSub {
	return s.pubsub
}

func (s *Service) AddWebhook(
	_ context.Context, webhook ports.Webhook,
) (string, error) {
	if webhook.GetEvent().IsUnspecified() {
		return "", fmt.Errorf("invalid webhook event type")
	}
	topic := topicForEvent(webhook.GetEvent())
	return s.pubsub.Subscribe(topic, webhook.GetEndpoint(), webhook.GetSecret())
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	return s.pubsub.Unsubscribe(ports.UnspecifiedTopic, id)
}

func (s *Service) ListWebhooks(
	_ context.Context, event ports.WebhookEvent,
) ([]ports.WebhookInfo, error) {
	topic := topicForEvent(event)
	subs, err := s.pubsub.ListSubscriptionsForTopic(topic)
	if err != nil {
		return nil, err
	}
	webhooks := make([]ports.WebhookInfo, 0, len(subs))
	for _, s := range subs {
		webhooks = append(webhooks, webhookInfo{s})
	}
	return webhooks, nil
}

func (s *Service) PublishOrderCreatedEvent(order domain.Order) error {
	event := EventOrderCreated
	payload := map[string]interface{}{
		"event":         event,
		"order":         getOrderPayload(order),
		"creation_date": time.Unix(order.CreationTime, 0).Format(time.RFC3339),
	}
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(event, string(message))
}

func (s *Service) PublishOrderFilledEvent(
	order domain.Order, fill domain.Fill,
) error {
	event := EventOrderFilled
	payload := map[string]interface{}{
		"event":     event,
		"order":     getOrderPayload(order),
		"fill":      getFillPayload(fill),
		"fill_date": time.Unix(fill.Timestamp, 0).Format(time.RFC3339),
	}
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(event, string(message))
}

func (s *Service) PublishOrderReclaimedEvent(
	order domain.Order, reclaimed domain.AssetAmount,
) error {
	event := EventOrderReclaimed
	payload := map[string]interface{}{
		"event":     event,
		"order":     getOrderPayload(order),
		"reclaimed": getAssetPayload(reclaimed),
	}
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(event, string(message))
}

func (s *Service) Close() {
	s.pubsub.Store().Close()
}

type webhookInfo struct {
	ports.Subscription
}

func (i webhookInfo) GetId() string {
	return i.Subscription.Id()
}
func (i webhookInfo) GetEvent() ports.WebhookEvent {
	return WebhookEvent(i.Subscription.Topic())
}
func (i webhookInfo) GetEndpoint() string {
	return i.Subscription.NotifyAt()
}
func (i webhookInfo) IsSecured() bool {
	return i.Subscription.IsSecured()
}

// WebhookEvent is the topic name of a webhook event.
type WebhookEvent string

func (i WebhookEvent) IsUnspecified() bool {
	return i == ports.UnspecifiedTopic
}
func (i WebhookEvent) IsOrderCreated() bool {
	return i == EventOrderCreated
}
func (i WebhookEvent) IsOrderFilled() bool {
	return i == EventOrderFilled
}
func (i WebhookEvent) IsOrderReclaimed() bool {
	return i == EventOrderReclaimed
}
func (i WebhookEvent) IsAny() bool {
	return i == ports.AnyTopic
}

// Webhook is a ports.Webhook built from plain values.
type Webhook struct {
	Event    WebhookEvent
	Endpoint string
	Secret   string
}

func (w Webhook) GetEvent() ports.WebhookEvent {
	return w.Event
}
func (w Webhook) GetEndpoint() string {
	return w.Endpoint
}
func (w Webhook) GetSecret() string {
	return w.Secret
}
