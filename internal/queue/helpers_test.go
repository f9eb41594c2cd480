package queue

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

// Test-only wrappers around the unexported constructors.

func NewNATSQueue(cfg NATSConfig) (*NATSQueue, error) {
	return newNATSQueue(cfg)
}

func NewNATSQueueWithConn(conn *nats.Conn) (*NATSQueue, error) {
	return newNATSQueueWithConn(conn)
}

func NewRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	return newRedisQueue(cfg)
}

func NewKafkaQueue(cfg KafkaConfig) (*KafkaQueue, error) {
	return newKafkaQueue(cfg)
}

// receive waits for one message on ch or fails the test.
func receive(t *testing.T, ch <-chan []byte, timeout time.Duration) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(timeout):
		t.Fatal("timeout waiting for message")
		return nil
	}
}
