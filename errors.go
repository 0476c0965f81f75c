package diplomacy

import (
	"errors"

	"github.com/praborrow/diplomacy/envoy"
)

var (
	// ErrAlreadyInitialized is returned when relations are established twice.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrInitFailed is returned when the registry cannot be created.
	ErrInitFailed = errors.New("initialization failed")

	// ErrNotInitialized is returned by operations that run before relations
	// are established or after they are dissolved.
	ErrNotInitialized = errors.New("registry not initialized")

	// ErrQueueFull is returned when a diplomatic queue is at capacity.
	ErrQueueFull = envoy.ErrQueueFull

	// ErrPayloadTooLarge is returned when an envoy payload exceeds the
	// configured limit.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrBufferTooSmall is returned when a caller-provided buffer cannot
	// hold the next outgoing envoy. The envoy stays queued.
	ErrBufferTooSmall = errors.New("buffer too small")
)
