package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/praborrow/diplomacy"
	"github.com/praborrow/diplomacy/envoy"
	"github.com/praborrow/diplomacy/limits"
	"github.com/sirupsen/logrus"
)

// maxLineLength bounds a single input line; longer lines are skipped.
const maxLineLength = limits.MaxProcessingBuffer

// relay plays both sides of the bridge: each input line is injected as if
// the foreign side sent it, answered from the Go side, and the answer is
// written out in wire form.
type relay struct {
	replyPrefix     string
	out             io.Writer
	skipped         int
	rejectedReplies int
}

// run processes input until EOF or ctx is cancelled. Relations must already
// be established.
func (r *relay) run(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReaderSize(in, 64*1024)

	lineNo := 0
	for {
		raw, oversize, err := readLine(reader, maxLineLength)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++

		if oversize {
			r.skipped++
			logrus.WithFields(logrus.Fields{
				"function": "relay.run",
				"line":     lineNo,
				"limit":    maxLineLength,
			}).Warn("Skipping oversize line")
			continue
		}

		line := string(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := r.handleLine(line); err != nil {
			r.skipped++
			logrus.WithFields(logrus.Fields{
				"function": "relay.run",
				"line":     lineNo,
				"error":    err.Error(),
			}).Warn("Skipping envoy")
			continue
		}

		if err := r.flush(); err != nil {
			return err
		}
	}
	return r.flush()
}

// readLine returns the next line without its "\n" or "\r\n" terminator.
// A line longer than maxLen is consumed entirely and reported as oversize
// with a nil line. io.EOF is returned only when no line remains.
func readLine(reader *bufio.Reader, maxLen int) ([]byte, bool, error) {
	var (
		buf      []byte
		oversize bool
		read     bool
	)
	for {
		chunk, err := reader.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
		}
		if !oversize {
			buf = append(buf, chunk...)
			// room for the terminator
			if len(buf) > maxLen+2 {
				oversize = true
				buf = nil
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !read {
				return nil, false, io.EOF
			}
		case err != nil:
			return nil, false, err
		}
		break
	}

	if oversize {
		return nil, true, nil
	}
	line := bytes.TrimSuffix(buf, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) > maxLen {
		return nil, true, nil
	}
	return line, false, nil
}

// handleLine injects one wire-form envoy from the foreign side and answers
// every envoy waiting on the Go side. A reply that cannot be queued is
// logged and counted on its own; it does not fail the line.
func (r *relay) handleLine(line string) error {
	e, err := envoy.Parse(line)
	if err != nil {
		return err
	}
	if err := diplomacy.SendEnvoy(e.ID, e.Payload); err != nil {
		return err
	}

	for {
		incoming, ok := diplomacy.Receive()
		if !ok {
			return nil
		}

		logrus.WithFields(logrus.Fields{
			"function": "relay.handleLine",
			"envoy_id": incoming.ID,
			"size":     len(incoming.Payload),
		}).Debug("Envoy received")

		if err := diplomacy.Send(incoming.ID, r.replyPrefix+incoming.Payload); err != nil {
			r.rejectedReplies++
			logrus.WithFields(logrus.Fields{
				"function": "relay.handleLine",
				"envoy_id": incoming.ID,
				"error":    err.Error(),
			}).Warn("Reply rejected")
		}
	}
}

// flush writes every queued outgoing envoy.
func (r *relay) flush() error {
	for {
		wire, ok := diplomacy.ReceiveEnvoy()
		if !ok {
			return nil
		}
		if _, err := fmt.Fprintln(r.out, wire); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
}
