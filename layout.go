package main

import "strings"

// layoutMargin accounts for the chat box border when deriving the usable text
// width from the viewport width.
const layoutMargin = 2

// viewportMetrics is supplied per render request and never stored; the
// terminal may be resized between calls.
type viewportMetrics struct {
	width  int
	height int // usable rows, borders excluded
}

// layoutResult is one deterministic rendering of a buffer at a given size.
type layoutResult struct {
	lines         []string // word-wrapped display lines for the whole buffer
	totalLines    int
	clampedOffset int
}

// wrapLine greedily word-wraps a single stored line to textWidth columns.
// While the remainder is too long it searches backward from the break column
// for a space, breaks there and skips the space on the continuation; when no
// space is in range it hard-breaks at exactly textWidth. An empty line yields
// a single blank display row.
func wrapLine(s string, textWidth int) []string {
	if textWidth < 1 {
		return []string{s}
	}
	var out []string
	for len(s) > textWidth {
		brk := strings.LastIndexByte(s[:textWidth+1], ' ')
		if brk <= 0 {
			out = append(out, s[:textWidth])
			s = s[textWidth:]
			continue
		}
		out = append(out, s[:brk])
		s = s[brk+1:]
	}
	return append(out, s)
}

// renderBuffer lays out a buffer's stored lines for the given viewport and
// clamps the buffer's scroll offset against the result. Offset 0 is the top
// of history; a buffer stuck to the bottom is re-pinned to maxScroll so the
// view follows new content. The clamped offset is written back to the buffer.
func renderBuffer(b *Buffer, vp viewportMetrics) layoutResult {
	textWidth := vp.width - layoutMargin
	if textWidth < 1 {
		textWidth = 1
	}

	var wrapped []string
	for _, ln := range b.lines {
		wrapped = append(wrapped, wrapLine(ln, textWidth)...)
	}

	maxScroll := len(wrapped) - vp.height
	if maxScroll < 0 {
		maxScroll = 0
	}

	off := b.scrollOff
	if b.atBottom {
		off = maxScroll
	}
	if off < 0 {
		off = 0
	}
	if off > maxScroll {
		off = maxScroll
	}
	b.scrollOff = off

	return layoutResult{lines: wrapped, totalLines: len(wrapped), clampedOffset: off}
}

// visible returns the display lines inside the viewport for a previously
// computed layout.
func (r layoutResult) visible(height int) []string {
	start := r.clampedOffset
	if start > r.totalLines {
		start = r.totalLines
	}
	end := start + height
	if end > r.totalLines {
		end = r.totalLines
	}
	return r.lines[start:end]
}

// scrollBuffer applies a manual scroll delta (positive toward the bottom),
// clamps it, and updates the stick-to-bottom flag: the view auto-follows new
// content again only once the user has scrolled back to the bottom.
func scrollBuffer(b *Buffer, delta int, vp viewportMetrics) {
	res := renderBuffer(b, vp)
	maxScroll := res.totalLines - vp.height
	if maxScroll < 0 {
		maxScroll = 0
	}
	off := res.clampedOffset + delta
	if off < 0 {
		off = 0
	}
	if off > maxScroll {
		off = maxScroll
	}
	b.scrollOff = off
	b.atBottom = off == maxScroll
}
