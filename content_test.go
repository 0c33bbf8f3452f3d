package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = string(rune('a' + i%26))
	}
	return lines
}

func TestContentListScroll(t *testing.T) {
	c := NewContentList(numbered(20)) // 320px of text
	c.SetViewHeight(100)

	assert.Equal(t, 0.0, c.ScrollOffset())
	assert.Equal(t, 220.0, c.ScrollExtent())

	c.ScrollBy(50)
	assert.Equal(t, 50.0, c.ScrollOffset())
	c.ScrollBy(1000)
	assert.Equal(t, 220.0, c.ScrollOffset())
	c.ScrollBy(-1000)
	assert.Equal(t, 0.0, c.ScrollOffset())

	c.ScrollBy(220)
	c.SetViewHeight(300) // taller view shrinks the extent
	assert.Equal(t, 20.0, c.ScrollExtent())
	assert.Equal(t, 20.0, c.ScrollOffset())
}

func TestContentListShort(t *testing.T) {
	c := NewContentList(numbered(3))
	c.SetViewHeight(200)
	assert.Equal(t, 0.0, c.ScrollExtent())
	c.ScrollBy(10)
	assert.Equal(t, 0.0, c.ScrollOffset())
}

func TestContentListVisible(t *testing.T) {
	c := NewContentList(numbered(10))
	c.SetViewHeight(40)
	c.ScrollBy(24)

	var ys []float64
	var got []string
	c.Visible(func(y float64, line string) {
		ys = append(ys, y)
		got = append(got, line)
	})
	require.Equal(t, []string{"b", "c", "d"}, got)
	assert.Equal(t, []float64{-8, 8, 24}, ys)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"MID UL612", "LGL"}, wrap("MID UL612 LGL", 10))
	assert.Equal(t, []string{"ABCDEFGHIJKLMNOP"}, wrap("ABCDEFGHIJKLMNOP", 5))
	assert.Nil(t, wrap("   ", 5))
}

func TestDescribe(t *testing.T) {
	title, lines := describePilot(Pilot{Callsign: "BAW1", Name: "J", Heading: 5, Route: "DCT"})
	assert.Equal(t, "BAW1", title)
	assert.Contains(t, lines, "Heading    005")
	assert.Contains(t, lines, "Aircraft   -")
	assert.Equal(t, "DCT", lines[len(lines)-1])

	title, lines = describeController(Controller{Callsign: "EGLL_TWR", Facility: 4, ATIS: []string{"info A"}})
	assert.Equal(t, "EGLL_TWR", title)
	assert.Contains(t, lines, "Facility   Tower")
	assert.Equal(t, "info A", lines[len(lines)-1])
}
