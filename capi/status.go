package main

import (
	"errors"

	"github.com/praborrow/diplomacy"
	"github.com/praborrow/diplomacy/envoy"
	"github.com/praborrow/diplomacy/limits"
)

// Status codes returned across the C boundary. They mirror the
// DIPLOMACY_ERR enum declared in the cgo preamble of diplomacy_c.go.
const (
	statusOK int32 = iota
	statusAlreadyInitialized
	statusInitFailed
	statusNotInitialized
	statusQueueFull
	statusPayloadTooLarge
	statusBufferTooSmall
	statusNull
	statusMalformed
	statusUnknown
)

// statusFor maps a Go error onto its C status code.
func statusFor(err error) int32 {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, diplomacy.ErrAlreadyInitialized):
		return statusAlreadyInitialized
	case errors.Is(err, diplomacy.ErrInitFailed):
		return statusInitFailed
	case errors.Is(err, diplomacy.ErrNotInitialized):
		return statusNotInitialized
	case errors.Is(err, diplomacy.ErrQueueFull):
		return statusQueueFull
	case errors.Is(err, diplomacy.ErrPayloadTooLarge), errors.Is(err, limits.ErrMessageTooLarge):
		return statusPayloadTooLarge
	case errors.Is(err, diplomacy.ErrBufferTooSmall):
		return statusBufferTooSmall
	case errors.Is(err, envoy.ErrMalformed):
		return statusMalformed
	default:
		return statusUnknown
	}
}
