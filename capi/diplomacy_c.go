package main

/*
#include <stdint.h>

// Status codes returned by the diplomacy C API. Functions that return a
// length report failures as the negated status.
typedef enum DIPLOMACY_ERR {
    DIPLOMACY_ERR_OK = 0,
    DIPLOMACY_ERR_ALREADY_INITIALIZED = 1,
    DIPLOMACY_ERR_INIT_FAILED = 2,
    DIPLOMACY_ERR_NOT_INITIALIZED = 3,
    DIPLOMACY_ERR_QUEUE_FULL = 4,
    DIPLOMACY_ERR_PAYLOAD_TOO_LARGE = 5,
    DIPLOMACY_ERR_BUFFER_TOO_SMALL = 6,
    DIPLOMACY_ERR_NULL = 7,
    DIPLOMACY_ERR_MALFORMED = 8,
    DIPLOMACY_ERR_UNKNOWN = 9,
} DIPLOMACY_ERR;
*/
import "C"

import (
	"os"
	"unicode/utf8"
	"unsafe"

	"github.com/praborrow/diplomacy"
	"github.com/praborrow/diplomacy/envoy"
	"github.com/praborrow/diplomacy/limits"
	"github.com/sirupsen/logrus"
)

// This is the main package required for building as c-shared
// It provides C-compatible wrappers for the Go diplomacy registry

func main() {} // Required for c-shared build mode

func init() {
	if level, err := logrus.ParseLevel(os.Getenv("DIPLOMACY_LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}
}

// foreignBytes views a C buffer as a Go slice without copying.
// It returns a status when the pointer and length disagree or the buffer
// exceeds limits.MaxProcessingBuffer.
func foreignBytes(p *byte, n int32) ([]byte, int32) {
	switch {
	case n < 0:
		return nil, statusMalformed
	case n == 0:
		return nil, statusOK
	case p == nil:
		return nil, statusNull
	}

	data := unsafe.Slice(p, int(n))
	if err := limits.ValidateProcessingBuffer(data); err != nil {
		return nil, statusFor(err)
	}
	return data, statusOK
}

// foreignText is foreignBytes for buffers that must hold UTF-8 text.
func foreignText(p *byte, n int32, function string) (string, int32) {
	data, status := foreignBytes(p, n)
	if status != statusOK {
		return "", status
	}
	if !utf8.Valid(data) {
		logrus.WithFields(logrus.Fields{
			"function": function,
			"length":   n,
		}).Warn("Rejected envoy with invalid UTF-8")
		return "", statusMalformed
	}
	// string() copies, so the C buffer may be reused once we return
	return string(data), statusOK
}

//export establish_relations
func establish_relations() int32 {
	err := diplomacy.EstablishRelations(diplomacy.NewOptions())
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "establish_relations",
			"error":    err.Error(),
		}).Error("Failed to establish diplomatic relations")
	}
	return statusFor(err)
}

//export dissolve_relations
func dissolve_relations() {
	diplomacy.Dissolve()
}

//export send_envoy
func send_envoy(id uint32) int32 {
	return statusFor(diplomacy.SendEnvoy(id, ""))
}

//export send_envoy_payload
func send_envoy_payload(id uint32, payload *byte, length int32) int32 {
	text, status := foreignText(payload, length, "send_envoy_payload")
	if status != statusOK {
		return status
	}
	return statusFor(diplomacy.SendEnvoy(id, text))
}

//export send_envoy_wire
func send_envoy_wire(wire *byte, length int32) int32 {
	text, status := foreignText(wire, length, "send_envoy_wire")
	if status != statusOK {
		return status
	}

	e, err := envoy.Parse(text)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "send_envoy_wire",
			"length":   length,
			"error":    err.Error(),
		}).Warn("Rejected malformed envoy")
		return statusMalformed
	}
	return statusFor(diplomacy.SendEnvoy(e.ID, e.Payload))
}

//export receive_envoy
func receive_envoy(buf *byte, capacity int32) int32 {
	if capacity < 0 {
		return -statusMalformed
	}
	if buf == nil && capacity > 0 {
		return -statusNull
	}

	r, err := diplomacy.Current()
	if err != nil {
		return -statusFor(err)
	}

	var out []byte
	if capacity > 0 {
		out = unsafe.Slice(buf, int(capacity))
	}

	n, err := r.DispatchInto(out)
	if err != nil {
		return -statusFor(err)
	}
	return int32(n)
}

//export diplomacy_next_envoy_size
func diplomacy_next_envoy_size() int32 {
	r, err := diplomacy.Current()
	if err != nil {
		return -statusFor(err)
	}
	return int32(r.NextDispatchSize())
}

//export diplomacy_outbox_depth
func diplomacy_outbox_depth() int32 {
	stats, err := diplomacy.CurrentStats()
	if err != nil {
		return -statusFor(err)
	}
	return int32(stats.OutboxDepth)
}

//export diplomacy_incoming_depth
func diplomacy_incoming_depth() int32 {
	stats, err := diplomacy.CurrentStats()
	if err != nil {
		return -statusFor(err)
	}
	return int32(stats.IncomingDepth)
}
