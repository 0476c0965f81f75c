// Package diplomacy bridges a Go process and a foreign jurisdiction: C code
// (or any language speaking the C ABI) linked against the library built from
// the capi package.
//
// The bridge carries envoys, each a numeric identifier with an optional text
// payload, over two bounded queues held by a Registry. The outbox carries
// envoys from Go to the foreign side; the incoming queue carries them back.
//
// # Getting Started
//
// Establish relations once per process, then exchange envoys:
//
//	if err := diplomacy.EstablishRelations(diplomacy.NewOptions()); err != nil {
//	    log.Fatal(err)
//	}
//	defer diplomacy.Dissolve()
//
//	// Go -> foreign side, dispatched as "42:hello"
//	if err := diplomacy.Send(42, "hello"); err != nil {
//	    log.Println(err)
//	}
//
//	// foreign side -> Go
//	if e, ok := diplomacy.Receive(); ok {
//	    fmt.Println(e.ID, e.Payload)
//	}
//
// SendEnvoy and ReceiveEnvoy are the foreign side's half of the exchange;
// the capi package exports them as send_envoy and receive_envoy.
//
// # Errors
//
// Operations return sentinel errors that can be matched with errors.Is:
//
//   - [ErrAlreadyInitialized]: EstablishRelations called twice
//   - [ErrInitFailed]: invalid [Options]
//   - [ErrNotInitialized]: no relations established
//   - [ErrQueueFull]: the target queue is at capacity
//   - [ErrPayloadTooLarge]: payload exceeds Options.MaxPayloadSize
//   - [ErrBufferTooSmall]: [Registry.DispatchInto] buffer cannot hold the next envoy
//
// # Thread Safety
//
// All functions are safe for concurrent use. Callbacks registered with
// [OnEnvoy] run on the goroutine that accepted the envoy, after internal
// locks are released.
//
// # Isolated Registries
//
// [NewRegistry] creates a registry that is not shared with the C side, which
// is useful for tests and for hosts that run several bridges.
package diplomacy
