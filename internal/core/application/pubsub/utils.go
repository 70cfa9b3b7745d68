package pubsub

import (
	"fmt"
	"strings"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
)

// ParseWebhookEvent parses an event name, case insensitive. "*" and "any"
// subscribe to every event.
func ParseWebhookEvent(s string) (WebhookEvent, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case EventOrderCreated:
		return EventOrderCreated, nil
	case EventOrderFilled:
		return EventOrderFilled, nil
	case EventOrderReclaimed:
		return EventOrderReclaimed, nil
	case ports.AnyTopic, "ANY":
		return ports.AnyTopic, nil
	default:
		return "", fmt.Errorf(
			"unknown event %q, must be one of %s, %s, %s or %s", s,
			EventOrderCreated, EventOrderFilled, EventOrderReclaimed, ports.AnyTopic,
		)
	}
}

func topicForEvent(event ports.WebhookEvent) string {
	switch {
	case event.IsOrderCreated():
		return EventOrderCreated
	case event.IsOrderFilled():
		return EventOrderFilled
	case event.IsOrderReclaimed():
		return EventOrderReclaimed
	case event.IsAny():
		return ports.AnyTopic
	default:
		return ports.UnspecifiedTopic
	}
}

func getOrderPayload(order domain.Order) map[string]interface{} {
	return map[string]interface{}{
		"id":      order.Id,
		"creator": order.Creator.String(),
		"status":  order.Status.String(),
		"offered": map[string]interface{}{
			"asset":     order.OfferedAsset.String(),
			"initial":   order.InitialOffered,
			"remaining": order.Current.Offered.Amount,
		},
		"requested": map[string]interface{}{
			"asset":     order.RequestedAsset.String(),
			"initial":   order.InitialRequested,
			"remaining": order.Current.Requested.Amount,
		},
		"fill_count": order.FillCount,
		"note_id":    order.CurrentNoteId,
	}
}

func getFillPayload(fill domain.Fill) map[string]interface{} {
	return map[string]interface{}{
		"id":                fill.Id,
		"filler":            fill.Filler.String(),
		"fill_number":       fill.FillNumber,
		"paid":              getAssetPayload(fill.Paid),
		"received":          getAssetPayload(fill.Received),
		"payment_note_id":   fill.PaymentNoteId,
		"successor_note_id": fill.SuccessorNoteId,
		"full_fill":         fill.IsFullFill(),
	}
}

func getAssetPayload(a domain.AssetAmount) map[string]interface{} {
	return map[string]interface{}{
		"asset":  a.AssetID.String(),
		"amount": a.Amount,
	}
}
