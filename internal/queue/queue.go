// Package queue moves snapshot and result payloads between services over a
// pluggable message broker.
package queue

import "context"

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes one message to a subject
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes messages and waits for all of them. It returns
	// how many were accepted by the broker.
	PublishBatch(ctx context.Context, messages []BatchMessage) (int, error)

	Close() error
}

// BatchMessage is one message of a batch publish
type BatchMessage struct {
	Subject string
	Data    []byte
}

// Subscriber delivers messages of a subject to a handler
type Subscriber interface {
	Subscribe(subject string, handler MessageHandler) error
	Unsubscribe(subject string) error
	Close() error
}

// MessageHandler handles one message. Returning an error asks the broker to
// redeliver it where the backend supports redelivery.
type MessageHandler func(data []byte) error

// Queue combines Publisher and Subscriber
type Queue interface {
	Publisher
	Subscriber
}
