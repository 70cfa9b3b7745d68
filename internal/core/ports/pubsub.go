package ports

const AnyTopic = "*"
const UnspecifiedTopic = ""

type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// PubSubStore is the internal store of a PubSub service.
type PubSubStore interface {
	// Close should be used to gracefully close the connection with the store.
	Close() error
}

// PubSub defines the methods of a pubsub service and its internal store.
type PubSub interface {
	// Store returns the internal store.
	Store() PubSubStore
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes some client defined by its id for a topic.
	Unsubscribe(topic, id string) error
	// ListSubscriptionsForTopic returns the info of all clients subscribed for
	// a certain topic.
	ListSubscriptionsForTopic(topic string) ([]Subscription, error)
	// Publish publishes a message for a certain topic. All clients subscribed
	// for such topic will receive the message.
	Publish(topic string, message string) error
}

type Webhook interface {
	GetEvent() WebhookEvent
	GetEndpoint() string
	GetSecret() string
}

type WebhookInfo interface {
	GetId() string
	GetEvent() WebhookEvent
	GetEndpoint() string
	IsSecured() bool
}

type WebhookEvent interface {
	IsUnspecified() bool
	IsOrderCreated() bool
	IsOrderFilled() bool
	IsOrderReclaimed() bool
	IsAny() bool
}
