package main

import "fmt"

// channelMarker distinguishes shared multi-party contexts from private ones.
const channelMarker = "#"

// routeResult reports which buffer a message landed in, if any, and whether
// the active view needs repainting.
type routeResult struct {
	buffer      *Buffer
	needsRedraw bool
}

// routeMessage decides which conversation buffer a parsed message belongs to,
// creating buffers on demand, formats a display line, and appends it. Nothing
// inbound is silently dropped: commands with no specific policy land in the
// status buffer as raw text.
//
// The liveness probe is the one exception: PING triggers an immediate PONG
// echoing the token and touches no buffer at all.
func routeMessage(l *Line, self string, list *bufferList, send func(string) error) routeResult {
	switch l.Cmd {
	case "PING":
		token := l.Trailing
		if !l.HasTrailing && len(l.Params) > 0 {
			token = l.Params[0]
		}
		if token == "" {
			send("PONG")
		} else {
			send(fmt.Sprintf("PONG :%s", token))
		}
		return routeResult{}

	case "PRIVMSG":
		return appendTo(privmsgBuffer(l, self, list), privmsgDisplay(l), list)

	case "JOIN":
		target := joinTarget(l)
		buf := list.find(target)
		if l.Nick == self {
			if buf == nil {
				buf = list.findOrCreate(target)
				list.setActive(buf)
			}
		} else if buf == nil {
			buf = list.status()
		}
		return appendTo(buf, fmt.Sprintf("%s joined %s", l.Nick, target), list)

	case "NOTICE":
		text := l.Trailing
		if !l.HasTrailing && len(l.Params) > 1 {
			text = l.Params[len(l.Params)-1]
		}
		sender := l.Nick
		if sender == "" {
			sender = "server"
		}
		return appendTo(list.status(), fmt.Sprintf("-%s- %s", sender, text), list)

	default:
		return appendTo(list.status(), l.Raw, list)
	}
}

// privmsgBuffer picks the conversation for a channel or direct message. A
// channel-marked target gets its own buffer; a message addressed to us is
// keyed by the sender's bare name; anything else, including a direct message
// with an unparsable origin, falls back to the status buffer.
func privmsgBuffer(l *Line, self string, list *bufferList) *Buffer {
	if len(l.Params) == 0 {
		return list.status()
	}
	target := l.Params[0]
	switch {
	case isChannel(target):
		return list.findOrCreate(target)
	case target == self:
		if l.Nick == "" {
			return list.status()
		}
		return list.findOrCreate(l.Nick)
	default:
		return list.status()
	}
}

func privmsgDisplay(l *Line) string {
	text := l.Trailing
	if !l.HasTrailing && len(l.Params) > 1 {
		text = l.Params[len(l.Params)-1]
	}
	if l.Nick != "" {
		return fmt.Sprintf("<%s> %s", l.Nick, text)
	}
	return text
}

// joinTarget handles both parameter forms servers use for JOIN.
func joinTarget(l *Line) string {
	if len(l.Params) > 0 {
		return l.Params[0]
	}
	return l.Trailing
}

func isChannel(name string) bool {
	return len(name) > 0 && name[:1] == channelMarker
}

func appendTo(buf *Buffer, display string, list *bufferList) routeResult {
	buf.appendLine(display)
	return routeResult{buffer: buf, needsRedraw: buf == list.active}
}
