package diplomacy

import (
	"sync"

	"github.com/praborrow/diplomacy/envoy"
	"github.com/sirupsen/logrus"
)

// The process-wide registry shared with the foreign side.
var (
	current   *Registry
	currentMu sync.RWMutex
)

// EstablishRelations initializes the diplomatic channels for this process.
// It returns ErrAlreadyInitialized if relations already exist and an error
// wrapping ErrInitFailed if the options are invalid.
func EstablishRelations(options *Options) error {
	currentMu.Lock()
	defer currentMu.Unlock()

	if current != nil {
		logrus.WithFields(logrus.Fields{
			"function": "EstablishRelations",
		}).Warn("Diplomatic relations already established")
		return ErrAlreadyInitialized
	}

	r, err := NewRegistry(options)
	if err != nil {
		return err
	}
	current = r

	logrus.WithFields(logrus.Fields{
		"function":        "EstablishRelations",
		"max_queue_depth": r.options.MaxQueueDepth,
	}).Info("Diplomatic relations established")
	return nil
}

// Dissolve tears down the process registry. Queued envoys are discarded and
// EstablishRelations may be called again.
func Dissolve() {
	currentMu.Lock()
	r := current
	current = nil
	currentMu.Unlock()

	if r == nil {
		return
	}

	outbox, incoming := r.discard()
	logrus.WithFields(logrus.Fields{
		"function":          "Dissolve",
		"discarded_outbox":  len(outbox),
		"discarded_inbound": len(incoming),
	}).Info("Diplomatic relations dissolved")
}

// Established reports whether relations are currently established.
func Established() bool {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current != nil
}

// Current returns the process registry or ErrNotInitialized.
func Current() (*Registry, error) {
	currentMu.RLock()
	defer currentMu.RUnlock()

	if current == nil {
		return nil, ErrNotInitialized
	}
	return current, nil
}

// Send queues a message for the foreign side. It will be dispatched in the
// wire form "{id}:{payload}".
func Send(id uint32, payload string) error {
	r, err := Current()
	if err != nil {
		return err
	}
	return r.Send(id, payload)
}

// Receive pops the oldest envoy sent by the foreign side. It reports false
// when relations are not established or nothing is queued.
func Receive() (envoy.Envoy, bool) {
	r, err := Current()
	if err != nil {
		return envoy.Envoy{}, false
	}
	return r.Receive()
}

// SendEnvoy dispatches an identifier, with an optional payload, from the
// foreign interface into the Go side.
func SendEnvoy(id uint32, payload string) error {
	r, err := Current()
	if err != nil {
		return err
	}
	return r.AcceptEnvoy(id, payload)
}

// ReceiveEnvoy pops the oldest message queued for the foreign side in wire form.
func ReceiveEnvoy() (string, bool) {
	r, err := Current()
	if err != nil {
		return "", false
	}
	return r.Dispatch()
}

// OnEnvoy registers a callback on the process registry.
func OnEnvoy(callback EnvoyCallback) error {
	r, err := Current()
	if err != nil {
		return err
	}
	r.OnEnvoy(callback)
	return nil
}

// CurrentStats returns the process registry's stats.
func CurrentStats() (Stats, error) {
	r, err := Current()
	if err != nil {
		return Stats{}, err
	}
	return r.Stats(), nil
}
