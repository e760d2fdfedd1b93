package main

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// connState tracks the connection lifecycle. Transitions are monotonic except
// for the fall back to stateDisconnected on any transport failure.
type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
	stateRegistering
	stateRegistered
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "Connecting"
	case stateConnected:
		return "Connected"
	case stateRegistering:
		return "Registering"
	case stateRegistered:
		return "Registered"
	default:
		return "Disconnected"
	}
}

// Registration numerics: either of these, received while registering, means
// the server has accepted us.
const (
	rplWelcome   = "001"
	rplEndOfMOTD = "376"
)

// netChunk carries raw bytes read off the socket into the update loop, where
// all accumulation and parsing happens.
type netChunk []byte

// netClosed reports that the transport is gone, orderly or not.
type netClosed struct {
	err error
}

// Conn is the byte-stream transport to the server. It only moves opaque
// chunks; framing and parsing live in the accumulator and parser.
type Conn struct {
	addr      string
	useTLS    bool
	tlsConfig *tls.Config

	mu        sync.Mutex
	conn      net.Conn
	writer    *bufio.Writer
	connected bool

	events chan any
	quit   chan struct{}
}

func newConn(addr string, useTLS bool, tlsConfig *tls.Config) *Conn {
	return &Conn{
		addr:      addr,
		useTLS:    useTLS,
		tlsConfig: tlsConfig,
		events:    make(chan any, 64),
		quit:      make(chan struct{}),
	}
}

// dial establishes the connection and starts the read loop. Everything the
// read loop learns is delivered through the events channel; nothing is
// processed on the reader goroutine.
func (c *Conn) dial() error {
	var conn net.Conn
	var err error

	if c.useTLS {
		conn, err = tls.Dial("tcp", c.addr, c.tlsConfig)
	} else {
		conn, err = net.Dial("tcp", c.addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.writer = bufio.NewWriter(conn)
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// Connected reports whether the transport is up.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Conn) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	buf := make([]byte, 4096)
	for {
		select {
		case <-c.quit:
			c.events <- netClosed{}
			return
		default:
			// Read deadline keeps the quit channel responsive.
			c.conn.SetReadDeadline(time.Now().Add(1 * time.Second))

			n, err := c.conn.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				slog.Debug("recv", "bytes", n)
				c.events <- netChunk(chunk)
			}
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue
				}
				c.events <- netClosed{err: err}
				return
			}
		}
	}
}

// sendRaw writes one command line, clamped to the protocol line limit and
// terminated, then flushes so liveness replies go out immediately.
func (c *Conn) sendRaw(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	cmd = clampWireLine(cmd)
	slog.Debug("send", "line", cmd)

	if _, err := c.writer.WriteString(cmd + lineTerminator); err != nil {
		return err
	}
	return c.writer.Flush()
}

// Privmsg sends a message to a channel or user.
func (c *Conn) Privmsg(target, message string) error {
	return c.sendRaw(fmt.Sprintf("PRIVMSG %s :%s", target, message))
}

// Quit announces departure and tears the connection down.
func (c *Conn) Quit(message string) {
	if message == "" {
		c.sendRaw("QUIT")
	} else {
		c.sendRaw(fmt.Sprintf("QUIT :%s", message))
	}

	select {
	case <-c.quit:
	default:
		close(c.quit)
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()
}

// session is the registration state machine. It owns the connection state and
// the two one-shot actions of a connection's life: announcing our identity
// after the transport comes up, and joining the initial channel once the
// server has welcomed us.
type session struct {
	state    connState
	nick     string
	user     string
	realName string
	channel  string

	identitySent  bool
	joinedInitial bool

	send func(string) error
}

func newSession(nick, user, realName, channel string, send func(string) error) *session {
	return &session{
		state:    stateDisconnected,
		nick:     nick,
		user:     user,
		realName: realName,
		channel:  channel,
		send:     send,
	}
}

// noteConnecting marks the dial attempt in progress.
func (s *session) noteConnecting() {
	s.state = stateConnecting
}

// noteConnected runs on the transition into Connected: the identity lines go
// out exactly once, guarded by a one-shot flag rather than a state re-check,
// and the session moves on to Registering.
func (s *session) noteConnected() error {
	s.state = stateConnected
	if !s.identitySent {
		s.identitySent = true
		if err := s.send(fmt.Sprintf("NICK %s", s.nick)); err != nil {
			return err
		}
		if err := s.send(fmt.Sprintf("USER %s 0 * :%s", s.user, s.realName)); err != nil {
			return err
		}
	}
	s.state = stateRegistering
	return nil
}

// observe advances the state machine on inbound messages. While registering,
// the welcome or end-of-MOTD numeric completes registration and triggers the
// one-time join of the configured channel; later occurrences are no-ops.
func (s *session) observe(l *Line) {
	if s.state != stateRegistering {
		return
	}
	if l.Cmd != rplWelcome && l.Cmd != rplEndOfMOTD {
		return
	}
	s.state = stateRegistered
	if !s.joinedInitial {
		s.joinedInitial = true
		if s.channel != "" {
			s.send(fmt.Sprintf("JOIN %s", s.channel))
		}
	}
}

// noteDisconnected is the terminal transition on any transport failure.
func (s *session) noteDisconnected() {
	s.state = stateDisconnected
}
