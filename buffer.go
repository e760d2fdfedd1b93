package main

import "fmt"

// statusBufferName is the always-present conversation context used for
// server-level notices and anything that can't be routed elsewhere.
const statusBufferName = "status"

// maxBufferLines bounds per-buffer history; the oldest lines are dropped once
// the cap is reached.
const maxBufferLines = 500

// Buffer is one named conversation context: a channel, a private query, or
// the status context.
type Buffer struct {
	name      string
	lines     []string
	active    bool
	scrollOff int
	atBottom  bool

	prev, next *Buffer
}

// Name returns the buffer's unique, case-sensitive key.
func (b *Buffer) Name() string { return b.name }

// appendLine adds a display line at the end of the buffer, in chronological
// order. The scroll offset is left alone; the layout engine re-pins buffers
// that are stuck to the bottom on the next render.
func (b *Buffer) appendLine(msg string) {
	b.lines = append(b.lines, msg)
	if len(b.lines) > maxBufferLines {
		b.lines = b.lines[len(b.lines)-maxBufferLines:]
	}
}

// bufferList is a non-empty circular doubly-linked collection of buffers.
// The status buffer is created at construction, sits at the head, and can
// never be removed, so traversal always has somewhere to land.
type bufferList struct {
	head   *Buffer // the status buffer
	active *Buffer
	count  int
}

func newBufferList() *bufferList {
	status := &Buffer{name: statusBufferName, atBottom: true}
	status.next = status
	status.prev = status
	l := &bufferList{head: status, count: 1}
	l.setActive(status)
	return l
}

// status returns the distinguished status buffer.
func (l *bufferList) status() *Buffer {
	return l.head
}

// create allocates an empty buffer and links it at the tail of the circular
// order, just before the head, so traversal order matches creation order.
// It is an error to create a buffer whose name is already taken.
func (l *bufferList) create(name string) (*Buffer, error) {
	if l.find(name) != nil {
		return nil, fmt.Errorf("buffer %q already exists", name)
	}
	b := &Buffer{name: name, atBottom: true}
	tail := l.head.prev
	tail.next = b
	b.prev = tail
	b.next = l.head
	l.head.prev = b
	l.count++
	return b, nil
}

// findOrCreate returns the buffer with the given name, creating it on first
// reference.
func (l *bufferList) findOrCreate(name string) *Buffer {
	if b := l.find(name); b != nil {
		return b
	}
	b, _ := l.create(name)
	return b
}

// find scans the ring from the head for a case-sensitive exact match.
func (l *bufferList) find(name string) *Buffer {
	b := l.head
	for {
		if b.name == name {
			return b
		}
		b = b.next
		if b == l.head {
			return nil
		}
	}
}

// remove unlinks a buffer from the ring. The status buffer is never removed.
// If the removed buffer was active, activation moves to its former successor,
// which is the status buffer when no other member remains.
func (l *bufferList) remove(b *Buffer) error {
	if b == l.head {
		return fmt.Errorf("cannot remove the %s buffer", statusBufferName)
	}
	if l.find(b.name) != b {
		return fmt.Errorf("buffer %q is not in the list", b.name)
	}
	succ := b.next
	b.prev.next = b.next
	b.next.prev = b.prev
	b.prev = nil
	b.next = nil
	l.count--
	if l.active == b {
		l.setActive(succ)
	}
	return nil
}

// setActive marks b as the single active buffer.
func (l *bufferList) setActive(b *Buffer) {
	if b == nil {
		return
	}
	if l.active != nil {
		l.active.active = false
	}
	l.active = b
	b.active = true
}

// next and previous wrap around the ring; a full rotation visits every member
// exactly once.
func (l *bufferList) next(b *Buffer) *Buffer     { return b.next }
func (l *bufferList) previous(b *Buffer) *Buffer { return b.prev }

// len reports the number of buffers, the status buffer included.
func (l *bufferList) len() int { return l.count }

// names returns every buffer name in ring order starting at the head.
func (l *bufferList) names() []string {
	out := make([]string, 0, l.count)
	b := l.head
	for {
		out = append(out, b.name)
		b = b.next
		if b == l.head {
			return out
		}
	}
}
