// Package envoy defines the messages exchanged across the diplomacy bridge
// and the bounded queues that hold them.
//
// An envoy carries a numeric identifier and an optional text payload. On the
// wire it is rendered as the decimal identifier, a ':' and the payload:
//
//	envoy.Format(42, "hello")   // "42:hello"
//	envoy.Format(7, "")         // "7:"
//
// Parse splits on the first ':' so payloads may contain further separators:
//
//	e, err := envoy.Parse("7:a:b") // e.ID == 7, e.Payload == "a:b"
//
// Queue is a mutex-guarded bounded FIFO. Push fails with ErrQueueFull once
// Len reaches Cap; the rejected envoy is not stored.
package envoy
