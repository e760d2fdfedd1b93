package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapLine_FitsUntouched(t *testing.T) {
	assert.Equal(t, []string{"hello"}, wrapLine("hello", 10))
	assert.Equal(t, []string{"exactly-10"}, wrapLine("exactly-10", 10))
}

func TestWrapLine_BreaksAtSpaceAndSkipsIt(t *testing.T) {
	// "hello brave world" at width 11: the space before "brave" is the last
	// one in range; the continuation starts right at "brave".
	got := wrapLine("hello brave world", 11)
	assert.Equal(t, []string{"hello brave", "world"}, got)
}

func TestWrapLine_SpaceAtBreakColumn(t *testing.T) {
	got := wrapLine("abcd efgh", 4)
	assert.Equal(t, []string{"abcd", "efgh"}, got)
}

func TestWrapLine_HardBreakWithoutSpaces(t *testing.T) {
	long := strings.Repeat("x", 200)
	got := wrapLine(long, 40)

	require.Len(t, got, 5)
	for _, seg := range got {
		assert.Len(t, seg, 40)
	}
	assert.Equal(t, long, strings.Join(got, ""))
}

func TestWrapLine_RoundTrip(t *testing.T) {
	// For any line with single spaces and words shorter than the width, every
	// break lands on a space, so re-joining the skipped spaces reproduces the
	// original line.
	lines := []string{
		"the quick brown fox jumps over the lazy dog",
		"a b c d e f g h i j k l m n o p",
		"one two three four five six seven eight nine ten",
	}
	for _, line := range lines {
		for width := 6; width <= 30; width++ {
			got := wrapLine(line, width)
			assert.Equal(t, line, strings.Join(got, " "), "width %d", width)
		}
	}
}

func TestWrapLine_EmptyLineIsOneBlankRow(t *testing.T) {
	assert.Equal(t, []string{""}, wrapLine("", 40))
}

func TestRenderBuffer_TotalLinesAndClamp(t *testing.T) {
	l := newBufferList()
	b, _ := l.create("#room")
	b.appendLine(strings.Repeat("x", 200))
	b.atBottom = false

	// width 42 - margin 2 = textWidth 40, so 200/40 = 5 display lines.
	vp := viewportMetrics{width: 42, height: 3}

	b.scrollOff = 100
	res := renderBuffer(b, vp)

	assert.Equal(t, 5, res.totalLines)
	assert.Equal(t, 2, res.clampedOffset, "clamped to maxScroll = 5 - 3")
	assert.Equal(t, 2, b.scrollOff, "clamp is written back")
}

func TestRenderBuffer_Idempotent(t *testing.T) {
	l := newBufferList()
	b, _ := l.create("#room")
	b.appendLine("some words that will wrap around the place several times over")
	b.appendLine("another line")

	vp := viewportMetrics{width: 20, height: 4}
	first := renderBuffer(b, vp)
	second := renderBuffer(b, vp)

	assert.Equal(t, first, second)
}

func TestRenderBuffer_StickToBottomFollowsAppends(t *testing.T) {
	l := newBufferList()
	b, _ := l.create("#room")
	vp := viewportMetrics{width: 12, height: 2}

	for i := 0; i < 4; i++ {
		b.appendLine("aaaa")
	}
	res := renderBuffer(b, vp)
	require.Equal(t, 2, res.clampedOffset)

	b.appendLine("bbbb")
	res = renderBuffer(b, vp)
	assert.Equal(t, 3, res.clampedOffset, "view tracks the latest line")
	assert.Equal(t, []string{"aaaa", "bbbb"}, res.visible(vp.height))
}

func TestRenderBuffer_ScrolledUpViewStaysPut(t *testing.T) {
	l := newBufferList()
	b, _ := l.create("#room")
	vp := viewportMetrics{width: 12, height: 2}

	for i := 0; i < 5; i++ {
		b.appendLine("aaaa")
	}
	scrollBuffer(b, -2, vp)
	require.Equal(t, 1, b.scrollOff)
	require.False(t, b.atBottom)

	b.appendLine("bbbb")
	res := renderBuffer(b, vp)
	assert.Equal(t, 1, res.clampedOffset, "new content must not drag the view down")
}

func TestScrollBuffer_ClampsAndTracksBottom(t *testing.T) {
	l := newBufferList()
	b, _ := l.create("#room")
	vp := viewportMetrics{width: 12, height: 2}

	for i := 0; i < 6; i++ {
		b.appendLine("aaaa")
	}
	// maxScroll = 6 - 2 = 4, and the buffer starts stuck to the bottom.

	scrollBuffer(b, -100, vp)
	assert.Equal(t, 0, b.scrollOff)
	assert.False(t, b.atBottom)

	scrollBuffer(b, 1, vp)
	assert.Equal(t, 1, b.scrollOff)
	assert.False(t, b.atBottom)

	scrollBuffer(b, 100, vp)
	assert.Equal(t, 4, b.scrollOff)
	assert.True(t, b.atBottom, "reaching the bottom re-engages auto-follow")
}

func TestRenderBuffer_EmptyBuffer(t *testing.T) {
	l := newBufferList()
	b, _ := l.create("#room")

	res := renderBuffer(b, viewportMetrics{width: 40, height: 10})

	assert.Zero(t, res.totalLines)
	assert.Zero(t, res.clampedOffset)
	assert.Empty(t, res.visible(10))
}

func TestRenderBuffer_DegenerateWidth(t *testing.T) {
	l := newBufferList()
	b, _ := l.create("#room")
	b.appendLine("abc")

	// Narrower than the margin still renders, one column at a time.
	res := renderBuffer(b, viewportMetrics{width: 1, height: 10})
	assert.Equal(t, 3, res.totalLines)
}
