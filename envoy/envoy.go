package envoy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Separator divides the identifier from the payload in the wire form.
const Separator = ':'

// ErrMalformed indicates a wire message that is not "{id}:{payload}".
var ErrMalformed = errors.New("malformed envoy")

// Envoy is a single message crossing the diplomatic boundary.
type Envoy struct {
	ID        uint32
	Payload   string
	Timestamp time.Time
}

// New creates an envoy stamped with the given time.
func New(id uint32, payload string, at time.Time) Envoy {
	return Envoy{
		ID:        id,
		Payload:   payload,
		Timestamp: at,
	}
}

// Wire returns the envoy in its wire form, "{id}:{payload}".
func (e Envoy) Wire() string {
	return Format(e.ID, e.Payload)
}

// String implements fmt.Stringer using the wire form.
func (e Envoy) String() string {
	return e.Wire()
}

// WireLen returns the length in bytes of the wire form without building it.
func (e Envoy) WireLen() int {
	return len(strconv.FormatUint(uint64(e.ID), 10)) + 1 + len(e.Payload)
}

// Format renders an identifier and payload as "{id}:{payload}".
func Format(id uint32, payload string) string {
	var b strings.Builder
	b.Grow(11 + len(payload))
	b.WriteString(strconv.FormatUint(uint64(id), 10))
	b.WriteByte(Separator)
	b.WriteString(payload)
	return b.String()
}

// Parse splits a wire message on its first separator. The payload is
// returned verbatim and may itself contain separators.
func Parse(wire string) (Envoy, error) {
	idx := strings.IndexByte(wire, Separator)
	if idx < 0 {
		return Envoy{}, fmt.Errorf("%w: missing separator in %q", ErrMalformed, truncate(wire))
	}
	if idx == 0 {
		return Envoy{}, fmt.Errorf("%w: empty identifier", ErrMalformed)
	}

	idText := wire[:idx]
	for i := 0; i < len(idText); i++ {
		if idText[i] < '0' || idText[i] > '9' {
			return Envoy{}, fmt.Errorf("%w: identifier %q is not decimal", ErrMalformed, truncate(idText))
		}
	}

	id, err := strconv.ParseUint(idText, 10, 32)
	if err != nil {
		return Envoy{}, fmt.Errorf("%w: identifier %q: %v", ErrMalformed, truncate(idText), err)
	}

	return Envoy{ID: uint32(id), Payload: wire[idx+1:]}, nil
}

// truncate keeps error messages bounded when foreign input is large.
func truncate(s string) string {
	const maxLen = 32
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
