// Package limits provides centralized size constants and validation functions
// for envoys crossing the diplomacy bridge.
//
// # Size Hierarchy
//
//   - MaxPayloadSize (4096 bytes): default cap for one envoy payload.
//   - MaxWireMessage: the identifier digits, a ':' separator and a default-sized
//     payload. C callers can size their receive buffers with it.
//   - MaxProcessingBuffer (1MB): the absolute maximum for any payload, including
//     configured ones.
//
// # Queue Depth
//
// Each diplomatic queue holds DefaultQueueDepth envoys unless configured. A
// configured depth of zero asks for a memory-derived depth:
//
//	depth := limits.QueueDepthForMemory(memory.TotalMemory(), limits.MaxPayloadSize)
//
// # Error Types
//
//   - ErrMessageTooLarge: a payload or foreign buffer exceeds its limit
//   - ErrInvalidLimit: a configured limit is out of range
package limits
