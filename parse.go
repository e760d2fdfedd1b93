package main

import (
	"bytes"
	"errors"
	"strings"
)

// Wire framing constants. maxLineLen is the IRC protocol limit for a single
// wire line including its terminator; it bounds outbound lines only, inbound
// frames may be arbitrarily long and simply grow the accumulator.
const (
	lineTerminator = "\r\n"
	maxLineLen     = 512

	// accumulator growth policy
	accumLowWater = 1024
	accumMinCap   = 4096
)

var (
	errEmptyFrame      = errors.New("empty frame")
	errMalformedOrigin = errors.New("origin with no command")
	errMissingCommand  = errors.New("missing command")
)

// accumulator turns a partially-delivered byte stream into complete protocol
// frames. Incoming chunks are copied in with append, and drainFrames extracts
// every CRLF-terminated line, keeping any trailing partial line for the next
// round.
type accumulator struct {
	buf []byte
	n   int // bytes of valid data in buf
}

// append copies p to the end of the internal buffer, growing it whenever
// headroom drops below the low-water mark so steady small reads don't
// reallocate on every call.
func (a *accumulator) append(p []byte) {
	need := a.n + len(p) + accumLowWater
	if need > len(a.buf) {
		capacity := len(a.buf)
		if capacity < accumMinCap {
			capacity = accumMinCap
		}
		for capacity < need {
			capacity *= 2
		}
		grown := make([]byte, capacity)
		copy(grown, a.buf[:a.n])
		a.buf = grown
	}
	copy(a.buf[a.n:], p)
	a.n += len(p)
}

// drainFrames extracts every complete line from the buffered data, in arrival
// order and with the terminator removed, then compacts the remainder to the
// front of the buffer. Whatever is left is the partial line awaiting more
// bytes.
func (a *accumulator) drainFrames() []string {
	var frames []string
	data := a.buf[:a.n]
	for {
		i := bytes.Index(data, []byte(lineTerminator))
		if i < 0 {
			break
		}
		frames = append(frames, string(data[:i]))
		data = data[i+len(lineTerminator):]
	}
	if len(frames) > 0 {
		a.n = copy(a.buf, data)
	}
	return frames
}

// pending reports how many buffered bytes have not yet formed a complete
// frame.
func (a *accumulator) pending() int {
	return a.n
}

// Line is a single parsed IRC message.
type Line struct {
	Src         string   // full origin, e.g. "nick!user@host"
	Nick        string   // origin with the host-mask suffix stripped
	Cmd         string   // command token, uppercased
	Params      []string // positional parameters, trailing excluded
	Trailing    string   // final parameter introduced by ":", may contain spaces
	HasTrailing bool
	Raw         string // the frame as received, terminator removed
}

// Args returns the positional parameters with the trailing parameter, if any,
// appended. Handlers that don't care about the distinction use this form.
func (l *Line) Args() []string {
	if !l.HasTrailing {
		return l.Params
	}
	args := make([]string, 0, len(l.Params)+1)
	args = append(args, l.Params...)
	return append(args, l.Trailing)
}

// parseLine parses one complete frame into a Line.
//
// The origin is present only when the frame starts with ":" and runs to the
// first space. The command is the next run of non-space characters. Each
// following parameter is a run of non-space characters, except that a
// parameter beginning with ":" consumes the rest of the frame verbatim. The
// ":" is only special at the start of a parameter, never mid-token, and runs
// of spaces count as a single separator.
func parseLine(frame string) (*Line, error) {
	if frame == "" {
		return nil, errEmptyFrame
	}

	line := &Line{Raw: frame}
	rest := frame

	if rest[0] == ':' {
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, errMalformedOrigin
		}
		line.Src = rest[1:sp]
		line.Nick = line.Src
		if i := strings.IndexByte(line.Src, '!'); i >= 0 {
			line.Nick = line.Src[:i]
		}
		rest = rest[sp+1:]
	}

	rest = strings.TrimLeft(rest, " ")
	if rest == "" {
		return nil, errMissingCommand
	}

	if sp := strings.IndexByte(rest, ' '); sp >= 0 {
		line.Cmd = strings.ToUpper(rest[:sp])
		rest = rest[sp+1:]
	} else {
		line.Cmd = strings.ToUpper(rest)
		return line, nil
	}

	for {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			break
		}
		if rest[0] == ':' {
			line.Trailing = rest[1:]
			line.HasTrailing = true
			break
		}
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			line.Params = append(line.Params, rest)
			break
		}
		line.Params = append(line.Params, rest[:sp])
		rest = rest[sp+1:]
	}

	return line, nil
}

// clampWireLine truncates an outbound command so that, with its terminator,
// it fits the protocol's line limit.
func clampWireLine(cmd string) string {
	limit := maxLineLen - len(lineTerminator)
	if len(cmd) > limit {
		return cmd[:limit]
	}
	return cmd
}
