package queue

import "context"

type Consumer interface {
	Start(ctx context.Context) error
}

// Message is one outgoing event. MessageID is used for deduplication by
// downstream consumers.
type Message struct {
	RoutingKey string
	MessageID  string
	Body       []byte
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}
