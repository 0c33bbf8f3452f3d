package main

import (
	"fmt"
	"math"
	"strings"
)

const lineHeight = 16

// ContentList is the scrollable body of a sheet: plain text lines with a
// vertical scroll offset in pixels
type ContentList struct {
	lines  []string
	lineH  float64
	viewH  float64
	offset float64
}

// NewContentList creates a list showing lines
func NewContentList(lines []string) *ContentList {
	return &ContentList{lines: lines, lineH: lineHeight}
}

// SetViewHeight updates the visible height and keeps the offset in range
func (c *ContentList) SetViewHeight(h float64) {
	c.viewH = math.Max(h, 0)
	c.offset = math.Min(c.offset, c.ScrollExtent())
}

// ScrollOffset returns how far the list is scrolled
func (c *ContentList) ScrollOffset() float64 {
	return c.offset
}

// ScrollExtent returns the largest valid offset
func (c *ContentList) ScrollExtent() float64 {
	return math.Max(0, float64(len(c.lines))*c.lineH-c.viewH)
}

// ScrollBy moves the list by d pixels, clamped to its extent
func (c *ContentList) ScrollBy(d float64) {
	c.offset = math.Max(0, math.Min(c.offset+d, c.ScrollExtent()))
}

// Visible calls fn for each line intersecting the view with its y position
// relative to the top of the view
func (c *ContentList) Visible(fn func(y float64, line string)) {
	first := int(c.offset / c.lineH)
	for i := first; i < len(c.lines); i++ {
		y := float64(i)*c.lineH - c.offset
		if y >= c.viewH {
			break
		}
		fn(y, c.lines[i])
	}
}

func describePilot(p Pilot) (string, []string) {
	lines := []string{
		fmt.Sprintf("Pilot      %s", p.Name),
		fmt.Sprintf("Aircraft   %s", orDash(p.Aircraft)),
		fmt.Sprintf("Route      %s -> %s", orDash(p.Departure), orDash(p.Arrival)),
		fmt.Sprintf("Altitude   %d ft", p.Altitude),
		fmt.Sprintf("Speed      %d kt", p.Groundspeed),
		fmt.Sprintf("Heading    %03d", p.Heading),
		fmt.Sprintf("Squawk     %s", orDash(p.Transponder)),
		fmt.Sprintf("Position   %.4f, %.4f", p.Latitude, p.Longitude),
	}
	if p.Route != "" {
		lines = append(lines, "", "Filed route:")
		lines = append(lines, wrap(p.Route, 40)...)
	}
	return p.Callsign, lines
}

func describeController(c Controller) (string, []string) {
	lines := []string{
		fmt.Sprintf("Controller %s", c.Name),
		fmt.Sprintf("Frequency  %s", orDash(c.Frequency)),
		fmt.Sprintf("Facility   %s", facilityName(c.Facility)),
	}
	if len(c.ATIS) > 0 {
		lines = append(lines, "", "ATIS:")
		for _, l := range c.ATIS {
			lines = append(lines, wrap(l, 40)...)
		}
	}
	return c.Callsign, lines
}

// facilityName follows the VATSIM facility numbering
func facilityName(f int) string {
	switch f {
	case 1:
		return "FSS"
	case 2:
		return "Delivery"
	case 3:
		return "Ground"
	case 4:
		return "Tower"
	case 5:
		return "Approach"
	case 6:
		return "Center"
	default:
		return "Observer"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// wrap breaks s on spaces into lines of at most n characters. Words
// longer than n get a line of their own.
func wrap(s string, n int) []string {
	var lines []string
	var b strings.Builder
	for _, w := range strings.Fields(s) {
		if b.Len() > 0 && b.Len()+1+len(w) > n {
			lines = append(lines, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() > 0 {
		lines = append(lines, b.String())
	}
	return lines
}
