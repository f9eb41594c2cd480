package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// ControlStoreTimeout bounds a single control store read or write
	ControlStoreTimeout = 5 * time.Second

	// ShutdownTimeout is how long the HTTP server may take to drain
	ShutdownTimeout = 10 * time.Second
)

// gRPC Health
const (
	// StoreCheckInterval is how often the gRPC health server checks the control store
	StoreCheckInterval = 15 * time.Second

	// GRPCMaxMessageSize caps gRPC request and response sizes
	GRPCMaxMessageSize = 4 * 1024 * 1024
)

// Ingest Timeouts
const (
	// IngestTimeout bounds the processing of one snapshot message
	IngestTimeout = 30 * time.Second

	// IngestPublishTimeout bounds publishing one evaluation result
	IngestPublishTimeout = 5 * time.Second
)

// =============================================================================
// Queue Constants
// =============================================================================

const (
	// DefaultMaxRetries is the default number of publish retries
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the default backoff between retries
	DefaultRetryBackoff = 100 * time.Millisecond

	// MemoryQueueBufferSize is the per-subject buffer of the memory queue
	MemoryQueueBufferSize = 1024
)

// QueueType identifies a message queue backend
type QueueType string

const (
	// QueueTypeNATS uses NATS JetStream
	QueueTypeNATS QueueType = "nats"
	// QueueTypeRedis uses Redis Streams
	QueueTypeRedis QueueType = "redis"
	// QueueTypeKafka uses Apache Kafka
	QueueTypeKafka QueueType = "kafka"
	// QueueTypeMemory uses in-process channels
	QueueTypeMemory QueueType = "memory"
)

// =============================================================================
// HTTP Constants
// =============================================================================

const (
	// MaxRequestBodySize caps request bodies accepted by the API
	MaxRequestBodySize = 16 * 1024 * 1024
)
