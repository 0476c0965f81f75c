// Package limits provides centralized envoy size and queue limits for the
// diplomacy bridge. This ensures consistent validation across the Go API and
// the C bindings.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxPayloadSize is the default cap for a single envoy payload (4 KiB)
	MaxPayloadSize = 4096

	// MaxIDDigits is the longest decimal rendering of a uint32 identifier
	MaxIDDigits = 10

	// MaxWireMessage is the longest wire form of an envoy with a default-sized
	// payload: the identifier digits, the separator and the payload.
	MaxWireMessage = MaxIDDigits + 1 + MaxPayloadSize

	// MaxProcessingBuffer is the absolute maximum for any payload, even when
	// configured. This prevents memory exhaustion from foreign callers (1MB limit)
	MaxProcessingBuffer = 1024 * 1024

	// DefaultQueueDepth is the capacity of each diplomatic queue when the
	// depth is not derived from system memory
	DefaultQueueDepth = 1024

	// MinQueueDepth is the smallest depth produced by QueueDepthForMemory
	MinQueueDepth = 16

	// MaxQueueDepth is the largest depth produced by QueueDepthForMemory
	MaxQueueDepth = 65536

	// QueueMemoryFraction is the share of total memory (1/N) that a single
	// queue may occupy when filled with maximum-size payloads
	QueueMemoryFraction = 1024
)

var (
	// ErrMessageTooLarge indicates a payload exceeds its maximum size
	ErrMessageTooLarge = errors.New("message too large")

	// ErrInvalidLimit indicates a configured limit is out of range
	ErrInvalidLimit = errors.New("invalid limit")
)

// ValidatePayloadSize validates a payload against the specified maximum size.
// Empty payloads are valid: an envoy may carry only its identifier.
func ValidatePayloadSize(payload string, maxSize int) error {
	if len(payload) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(payload), maxSize)
	}
	return nil
}

// ValidateProcessingBuffer validates raw foreign input against MaxProcessingBuffer.
// This limit should be applied to every buffer handed over by the C side.
func ValidateProcessingBuffer(data []byte) error {
	if len(data) > MaxProcessingBuffer {
		return fmt.Errorf("%w: buffer size %d exceeds limit %d", ErrMessageTooLarge, len(data), MaxProcessingBuffer)
	}
	return nil
}

// ValidateQueueDepth checks a configured queue depth. Zero is accepted and
// means the depth is derived from system memory.
func ValidateQueueDepth(depth int) error {
	if depth < 0 {
		return fmt.Errorf("%w: queue depth %d is negative", ErrInvalidLimit, depth)
	}
	return nil
}

// ValidatePayloadLimit checks a configured payload cap. Zero is accepted and
// means MaxPayloadSize.
func ValidatePayloadLimit(size int) error {
	if size < 0 {
		return fmt.Errorf("%w: payload limit %d is negative", ErrInvalidLimit, size)
	}
	if size > MaxProcessingBuffer {
		return fmt.Errorf("%w: payload limit %d exceeds %d", ErrInvalidLimit, size, MaxProcessingBuffer)
	}
	return nil
}

// WireSize returns the buffer size needed for the wire form of an envoy
// carrying a payload of payloadSize bytes.
func WireSize(payloadSize int) int {
	return MaxIDDigits + 1 + payloadSize
}

// QueueDepthForMemory derives a queue depth from the total system memory so
// that one queue full of maximum-size envoys uses at most
// 1/QueueMemoryFraction of it. The result is clamped to
// [MinQueueDepth, MaxQueueDepth]; unknown memory (0) yields DefaultQueueDepth.
func QueueDepthForMemory(totalMemory uint64, payloadSize int) int {
	if totalMemory == 0 {
		return DefaultQueueDepth
	}
	if payloadSize <= 0 {
		payloadSize = MaxPayloadSize
	}

	budget := totalMemory / QueueMemoryFraction
	depth := budget / uint64(WireSize(payloadSize))

	if depth < MinQueueDepth {
		return MinQueueDepth
	}
	if depth > MaxQueueDepth {
		return MaxQueueDepth
	}
	return int(depth)
}
