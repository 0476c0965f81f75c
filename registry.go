package diplomacy

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/praborrow/diplomacy/envoy"
	"github.com/praborrow/diplomacy/limits"
	"github.com/sirupsen/logrus"
)

// EnvoyCallback is called after an envoy from the foreign side is queued.
type EnvoyCallback func(e envoy.Envoy)

// Stats is a point-in-time snapshot of a registry.
type Stats struct {
	OutboxDepth      int
	IncomingDepth    int
	QueueCapacity    int
	MaxPayloadSize   int
	Sent             uint64
	Dispatched       uint64
	Accepted         uint64
	Received         uint64
	RejectedOutbound uint64
	RejectedIncoming uint64
	EstablishedAt    time.Time
}

// Registry holds the two diplomatic channels: the outbox carries envoys from
// Go to the foreign side and the incoming queue carries envoys back.
type Registry struct {
	options       *Options
	outbox        *envoy.Queue
	incoming      *envoy.Queue
	establishedAt time.Time

	sent             atomic.Uint64
	dispatched       atomic.Uint64
	accepted         atomic.Uint64
	received         atomic.Uint64
	rejectedOutbound atomic.Uint64
	rejectedIncoming atomic.Uint64

	envoyCallback EnvoyCallback
	callbackMu    sync.RWMutex
}

// NewRegistry creates a registry. Nil options mean NewOptions().
// Invalid options return an error wrapping ErrInitFailed.
func NewRegistry(options *Options) (*Registry, error) {
	if options == nil {
		options = NewOptions()
	}

	if err := options.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewRegistry",
			"error":    err.Error(),
		}).Error("Rejected registry options")
		return nil, fmt.Errorf("%w: %w", ErrInitFailed, err)
	}

	opts := options.resolved()
	r := &Registry{
		options:       opts,
		outbox:        envoy.NewQueue(opts.MaxQueueDepth),
		incoming:      envoy.NewQueue(opts.MaxQueueDepth),
		establishedAt: opts.TimeProvider.Now(),
	}

	logrus.WithFields(logrus.Fields{
		"function":         "NewRegistry",
		"max_queue_depth":  opts.MaxQueueDepth,
		"max_payload_size": opts.MaxPayloadSize,
	}).Debug("Registry created")

	return r, nil
}

// Send queues an envoy for the foreign side.
func (r *Registry) Send(id uint32, payload string) error {
	if _, err := r.push(r.outbox, id, payload); err != nil {
		r.rejectedOutbound.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "Send",
			"envoy_id": id,
			"error":    err.Error(),
		}).Warn("Outbound envoy rejected")
		return err
	}
	r.sent.Add(1)
	return nil
}

// Receive pops the oldest envoy sent by the foreign side.
func (r *Registry) Receive() (envoy.Envoy, bool) {
	e, ok := r.incoming.Pop()
	if ok {
		r.received.Add(1)
	}
	return e, ok
}

// AcceptEnvoy queues an envoy sent by the foreign side and notifies the
// registered callback once it is queued.
func (r *Registry) AcceptEnvoy(id uint32, payload string) error {
	e, err := r.push(r.incoming, id, payload)
	if err != nil {
		r.rejectedIncoming.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "AcceptEnvoy",
			"envoy_id": id,
			"error":    err.Error(),
		}).Warn("Incoming envoy rejected")
		return err
	}
	r.accepted.Add(1)

	r.callbackMu.RLock()
	callback := r.envoyCallback
	r.callbackMu.RUnlock()

	if callback != nil {
		callback(e)
	}
	return nil
}

// Dispatch pops the oldest outgoing envoy in wire form.
func (r *Registry) Dispatch() (string, bool) {
	e, ok := r.outbox.Pop()
	if !ok {
		return "", false
	}
	r.dispatched.Add(1)
	return e.Wire(), true
}

// DispatchInto copies the oldest outgoing envoy in wire form into buf and
// returns the number of bytes written. An empty outbox yields (0, nil). When
// buf is too small the envoy stays queued and ErrBufferTooSmall is returned.
func (r *Registry) DispatchInto(buf []byte) (int, error) {
	head, found, removed := r.outbox.PopIf(func(e envoy.Envoy) bool {
		return e.WireLen() <= len(buf)
	})
	if !found {
		return 0, nil
	}
	if !removed {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, head.WireLen(), len(buf))
	}

	r.dispatched.Add(1)
	return copy(buf, head.Wire()), nil
}

// NextDispatchSize returns the wire length of the oldest outgoing envoy,
// or 0 when the outbox is empty.
func (r *Registry) NextDispatchSize() int {
	head, ok := r.outbox.Peek()
	if !ok {
		return 0
	}
	return head.WireLen()
}

// OnEnvoy sets the callback invoked for every accepted incoming envoy.
// Passing nil removes it.
func (r *Registry) OnEnvoy(callback EnvoyCallback) {
	r.callbackMu.Lock()
	defer r.callbackMu.Unlock()

	r.envoyCallback = callback
}

// Stats returns a snapshot of queue depths and counters.
func (r *Registry) Stats() Stats {
	return Stats{
		OutboxDepth:      r.outbox.Len(),
		IncomingDepth:    r.incoming.Len(),
		QueueCapacity:    r.outbox.Cap(),
		MaxPayloadSize:   r.options.MaxPayloadSize,
		Sent:             r.sent.Load(),
		Dispatched:       r.dispatched.Load(),
		Accepted:         r.accepted.Load(),
		Received:         r.received.Load(),
		RejectedOutbound: r.rejectedOutbound.Load(),
		RejectedIncoming: r.rejectedIncoming.Load(),
		EstablishedAt:    r.establishedAt,
	}
}

// push validates and stamps an envoy before queueing it.
func (r *Registry) push(q *envoy.Queue, id uint32, payload string) (envoy.Envoy, error) {
	if err := limits.ValidatePayloadSize(payload, r.options.MaxPayloadSize); err != nil {
		return envoy.Envoy{}, fmt.Errorf("%w: %w", ErrPayloadTooLarge, err)
	}
	e := envoy.New(id, payload, r.options.TimeProvider.Now())
	return e, q.Push(e)
}

// discard empties both channels and returns what was still queued.
func (r *Registry) discard() (outbox, incoming []envoy.Envoy) {
	outbox = r.outbox.Drain()
	incoming = r.incoming.Drain()

	for _, e := range outbox {
		logrus.WithFields(logrus.Fields{
			"function": "discard",
			"envoy_id": e.ID,
		}).Debug("Discarding undelivered outbound envoy")
	}
	for _, e := range incoming {
		logrus.WithFields(logrus.Fields{
			"function": "discard",
			"envoy_id": e.ID,
		}).Debug("Discarding unreceived incoming envoy")
	}
	return outbox, incoming
}
