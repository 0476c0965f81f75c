package diplomacy

import (
	"fmt"

	"github.com/pbnjay/memory"
	"github.com/praborrow/diplomacy/limits"
	"github.com/sirupsen/logrus"
)

// Options contains configuration for a diplomatic registry.
type Options struct {
	// MaxQueueDepth bounds each queue. Zero derives the depth from system memory.
	MaxQueueDepth int
	// MaxPayloadSize bounds each envoy payload. Zero means limits.MaxPayloadSize.
	MaxPayloadSize int
	// TimeProvider stamps envoys. Nil means the system clock.
	TimeProvider TimeProvider
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		MaxQueueDepth:  limits.DefaultQueueDepth,
		MaxPayloadSize: limits.MaxPayloadSize,
	}
}

// totalMemory reports system memory in bytes; replaced in tests.
var totalMemory = memory.TotalMemory

// Validate checks the options without resolving defaults.
func (o *Options) Validate() error {
	if err := limits.ValidateQueueDepth(o.MaxQueueDepth); err != nil {
		return fmt.Errorf("max queue depth: %w", err)
	}
	if err := limits.ValidatePayloadLimit(o.MaxPayloadSize); err != nil {
		return fmt.Errorf("max payload size: %w", err)
	}
	return nil
}

// resolved returns a copy with every zero value replaced by its effective default.
func (o *Options) resolved() *Options {
	out := *o
	if out.MaxPayloadSize == 0 {
		out.MaxPayloadSize = limits.MaxPayloadSize
	}
	if out.MaxQueueDepth == 0 {
		total := totalMemory()
		out.MaxQueueDepth = limits.QueueDepthForMemory(total, out.MaxPayloadSize)

		logrus.WithFields(logrus.Fields{
			"function":     "Options.resolved",
			"total_memory": total,
			"queue_depth":  out.MaxQueueDepth,
		}).Debug("Derived queue depth from system memory")
	}
	out.TimeProvider = getTimeProvider(out.TimeProvider)
	return &out
}
