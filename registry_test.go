package diplomacy

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/praborrow/diplomacy/envoy"
	"github.com/praborrow/diplomacy/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, depth, payload int) (*Registry, *MockTimeProvider) {
	t.Helper()
	clock := &MockTimeProvider{currentTime: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	r, err := NewRegistry(&Options{
		MaxQueueDepth:  depth,
		MaxPayloadSize: payload,
		TimeProvider:   clock,
	})
	require.NoError(t, err)
	return r, clock
}

func TestNewRegistryNilOptions(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	stats := r.Stats()
	assert.Equal(t, limits.DefaultQueueDepth, stats.QueueCapacity)
	assert.Equal(t, limits.MaxPayloadSize, stats.MaxPayloadSize)
	assert.False(t, stats.EstablishedAt.IsZero())
}

func TestNewRegistryInvalidOptions(t *testing.T) {
	r, err := NewRegistry(&Options{MaxQueueDepth: -3})
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrInitFailed)
	assert.ErrorIs(t, err, limits.ErrInvalidLimit)
}

func TestRegistrySendDispatch(t *testing.T) {
	r, _ := newTestRegistry(t, 8, 64)

	require.NoError(t, r.Send(1, "first"))
	require.NoError(t, r.Send(7, "a:b"))
	require.NoError(t, r.Send(3, ""))

	for _, want := range []string{"1:first", "7:a:b", "3:"} {
		got, ok := r.Dispatch()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := r.Dispatch()
	assert.False(t, ok)

	stats := r.Stats()
	assert.Equal(t, uint64(3), stats.Sent)
	assert.Equal(t, uint64(3), stats.Dispatched)
	assert.Equal(t, 0, stats.OutboxDepth)
}

func TestRegistryAcceptReceive(t *testing.T) {
	r, clock := newTestRegistry(t, 8, 64)

	require.NoError(t, r.AcceptEnvoy(10, ""))
	clock.Advance(time.Second)
	require.NoError(t, r.AcceptEnvoy(11, "payload"))

	e, ok := r.Receive()
	require.True(t, ok)
	assert.Equal(t, uint32(10), e.ID)
	assert.Equal(t, "", e.Payload)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), e.Timestamp)

	e, ok = r.Receive()
	require.True(t, ok)
	assert.Equal(t, uint32(11), e.ID)
	assert.Equal(t, "payload", e.Payload)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC), e.Timestamp)

	_, ok = r.Receive()
	assert.False(t, ok)

	stats := r.Stats()
	assert.Equal(t, uint64(2), stats.Accepted)
	assert.Equal(t, uint64(2), stats.Received)
}

func TestRegistryQueuesAreIndependent(t *testing.T) {
	r, _ := newTestRegistry(t, 4, 64)

	require.NoError(t, r.Send(1, "out"))
	require.NoError(t, r.AcceptEnvoy(2, "in"))

	e, ok := r.Receive()
	require.True(t, ok)
	assert.Equal(t, uint32(2), e.ID)

	wire, ok := r.Dispatch()
	require.True(t, ok)
	assert.Equal(t, "1:out", wire)
}

func TestRegistryDiscard(t *testing.T) {
	r, _ := newTestRegistry(t, 4, 64)

	require.NoError(t, r.Send(1, "out-a"))
	require.NoError(t, r.Send(2, "out-b"))
	require.NoError(t, r.AcceptEnvoy(3, "in"))

	outbox, incoming := r.discard()
	require.Len(t, outbox, 2)
	require.Len(t, incoming, 1)
	assert.Equal(t, uint32(1), outbox[0].ID)
	assert.Equal(t, uint32(2), outbox[1].ID)
	assert.Equal(t, "in", incoming[0].Payload)

	assert.Zero(t, r.NextDispatchSize())
	_, ok := r.Receive()
	assert.False(t, ok)

	// channels stay usable afterwards
	require.NoError(t, r.Send(4, "again"))
	wire, ok := r.Dispatch()
	require.True(t, ok)
	assert.Equal(t, "4:again", wire)
}

func TestRegistryQueueFull(t *testing.T) {
	r, _ := newTestRegistry(t, 2, 64)

	require.NoError(t, r.Send(1, ""))
	require.NoError(t, r.Send(2, ""))
	assert.ErrorIs(t, r.Send(3, ""), ErrQueueFull)

	require.NoError(t, r.AcceptEnvoy(1, ""))
	require.NoError(t, r.AcceptEnvoy(2, ""))
	assert.ErrorIs(t, r.AcceptEnvoy(3, ""), ErrQueueFull)

	stats := r.Stats()
	assert.Equal(t, 2, stats.OutboxDepth)
	assert.Equal(t, 2, stats.IncomingDepth)
	assert.Equal(t, uint64(1), stats.RejectedOutbound)
	assert.Equal(t, uint64(1), stats.RejectedIncoming)

	// draining one slot makes room again
	_, ok := r.Dispatch()
	require.True(t, ok)
	assert.NoError(t, r.Send(3, ""))
}

func TestRegistryPayloadTooLarge(t *testing.T) {
	r, _ := newTestRegistry(t, 4, 8)

	assert.NoError(t, r.Send(1, strings.Repeat("x", 8)))

	err := r.Send(2, strings.Repeat("x", 9))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.ErrorIs(t, err, limits.ErrMessageTooLarge)

	err = r.AcceptEnvoy(3, strings.Repeat("x", 9))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	stats := r.Stats()
	assert.Equal(t, 1, stats.OutboxDepth)
	assert.Equal(t, 0, stats.IncomingDepth)
}

func TestRegistryDispatchInto(t *testing.T) {
	r, _ := newTestRegistry(t, 4, 64)

	buf := make([]byte, 16)
	n, err := r.DispatchInto(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "empty outbox writes nothing")

	require.NoError(t, r.Send(42, "hello"))

	assert.Equal(t, len("42:hello"), r.NextDispatchSize())

	small := make([]byte, 4)
	n, err = r.DispatchInto(small)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, r.Stats().OutboxDepth, "envoy stays queued when the buffer is too small")

	exact := make([]byte, len("42:hello"))
	n, err = r.DispatchInto(exact)
	require.NoError(t, err)
	assert.Equal(t, "42:hello", string(exact[:n]))
	assert.Equal(t, 0, r.Stats().OutboxDepth)
	assert.Equal(t, uint64(1), r.Stats().Dispatched)
	assert.Equal(t, 0, r.NextDispatchSize())
}

func TestRegistryOnEnvoy(t *testing.T) {
	r, _ := newTestRegistry(t, 1, 64)

	var got []envoy.Envoy
	r.OnEnvoy(func(e envoy.Envoy) {
		got = append(got, e)
	})

	require.NoError(t, r.AcceptEnvoy(5, "hi"))
	assert.ErrorIs(t, r.AcceptEnvoy(6, "dropped"), ErrQueueFull)

	require.Len(t, got, 1, "callback fires only for queued envoys")
	assert.Equal(t, uint32(5), got[0].ID)
	assert.Equal(t, "hi", got[0].Payload)

	r.OnEnvoy(nil)
	_, _ = r.Receive()
	require.NoError(t, r.AcceptEnvoy(7, ""))
	assert.Len(t, got, 1)
}

// TestRegistryCallbackMayReenter verifies callbacks run without internal
// locks held, so they can drain the queue themselves
func TestRegistryCallbackMayReenter(t *testing.T) {
	r, _ := newTestRegistry(t, 4, 64)

	var received []uint32
	r.OnEnvoy(func(envoy.Envoy) {
		if e, ok := r.Receive(); ok {
			received = append(received, e.ID)
		}
		_ = r.Send(99, "reply")
	})

	require.NoError(t, r.AcceptEnvoy(1, ""))
	require.NoError(t, r.AcceptEnvoy(2, ""))

	assert.Equal(t, []uint32{1, 2}, received)
	assert.Equal(t, 2, r.Stats().OutboxDepth)
}

func TestRegistryConcurrentSenders(t *testing.T) {
	const (
		capacity  = 64
		workers   = 8
		perWorker = 32
	)
	r, _ := newTestRegistry(t, capacity, 64)

	var accepted, full atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				err := r.Send(uint32(w*perWorker+i), "payload")
				switch {
				case err == nil:
					accepted.Add(1)
				case errors.Is(err, ErrQueueFull):
					full.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	stats := r.Stats()
	assert.Equal(t, int64(capacity), accepted.Load())
	assert.Equal(t, int64(workers*perWorker), accepted.Load()+full.Load())
	assert.Equal(t, capacity, stats.OutboxDepth)
	assert.Equal(t, uint64(capacity), stats.Sent)
	assert.Equal(t, uint64(full.Load()), stats.RejectedOutbound)
}

func TestRegistryConcurrentExchange(t *testing.T) {
	r, _ := newTestRegistry(t, 16, 64)

	const total = 500
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if err := r.Send(uint32(i), "x"); err == nil {
				i++
			}
		}
	}()

	var order []string
	go func() {
		defer wg.Done()
		for len(order) < total {
			if wire, ok := r.Dispatch(); ok {
				order = append(order, wire)
			}
		}
	}()
	wg.Wait()

	require.Len(t, order, total)
	for i, wire := range order {
		e, err := envoy.Parse(wire)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), e.ID)
	}
}
