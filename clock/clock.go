package clock

import (
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
)

// UTCDescription is shown on the pinned UTC clock instead of an offset.
const UTCDescription = "Coordinated Universal Time"

// Placeholders shown by clocks whose zone could not be loaded.
const (
	NoTime = "--:--:--"
	NoDate = "----------"
)

// Phase is the part of the day at a clock's location.
type Phase string

const (
	PhaseDawn  Phase = "dawn"
	PhaseDay   Phase = "day"
	PhaseDusk  Phase = "dusk"
	PhaseNight Phase = "night"
)

// Clock is one card in the grid: a stored entry bound to its time.Location
type Clock struct {
	ID          string
	Name        string
	Label       string
	Region      string
	Timezone    string
	Description string
	Pinned      bool
	Location    *time.Location

	src clockwork.Clock
}

// New creates a new Clock instance. A nil src uses the real wall clock.
func New(name, timezone string, src clockwork.Clock) (*Clock, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone '%s': %w", timezone, err)
	}
	if src == nil {
		src = clockwork.NewRealClock()
	}

	return &Clock{
		Name:     name,
		Label:    name,
		Timezone: timezone,
		Location: loc,
		src:      src,
	}, nil
}

// NewUnresolved creates a clock for a zone that failed to load. It keeps
// the name and timezone for display and formats placeholders.
func NewUnresolved(name, timezone string, src clockwork.Clock) *Clock {
	if src == nil {
		src = clockwork.NewRealClock()
	}
	return &Clock{Name: name, Label: name, Timezone: timezone, src: src}
}

// Valid reports whether the clock's zone was loaded.
func (c *Clock) Valid() bool {
	return c.Location != nil
}

// NewUTC creates the pinned UTC clock.
func NewUTC(src clockwork.Clock) *Clock {
	c, _ := New("UTC", "UTC", src)
	c.Description = UTCDescription
	c.Pinned = true
	return c
}

// Now returns the current instant from the clock's time source.
func (c *Clock) Now() time.Time {
	return c.src.Now()
}

// GetTime returns the source time converted to the clock's zone
func (c *Clock) GetTime() time.Time {
	if !c.Valid() {
		return c.Now().UTC()
	}
	return c.Now().In(c.Location)
}

// FormatTime returns the time in 24-hour format (HH:MM:SS)
func (c *Clock) FormatTime() string {
	if !c.Valid() {
		return NoTime
	}
	return c.GetTime().Format("15:04:05")
}

// FormatDate returns the local date as YYYY-MM-DD
func (c *Clock) FormatDate() string {
	if !c.Valid() {
		return NoDate
	}
	return c.GetTime().Format("2006-01-02")
}

// FormatUTCOffset returns the offset line, e.g. "UTC+09:00" or
// "UTC-05:00 (DST: UTC-04:00)". Pinned clocks show their description.
func (c *Clock) FormatUTCOffset() string {
	if c.Description != "" {
		return c.Description
	}
	return DescribeOffset(c.Timezone, c.Now())
}

// FormatDateWithOffset returns the date and UTC offset
// Format: "YYYY-MM-DD - UTC±HH:MM"
func (c *Clock) FormatDateWithOffset() string {
	return fmt.Sprintf("%s - %s", c.FormatDate(), c.FormatUTCOffset())
}

// GetUTCOffset returns the current UTC offset in minutes
func (c *Clock) GetUTCOffset() int {
	if !c.Valid() {
		return 0
	}
	return OffsetMinutes(c.Now(), c.Location)
}

// Phase classifies the local hour: dawn 04-06, day 07-16, dusk 17-19,
// night otherwise.
func (c *Clock) Phase() Phase {
	if !c.Valid() {
		return PhaseNight
	}
	return PhaseAt(c.GetTime().Hour())
}

// PhaseAt classifies an hour of the day.
func PhaseAt(hour int) Phase {
	switch {
	case hour >= 4 && hour <= 6:
		return PhaseDawn
	case hour >= 7 && hour <= 16:
		return PhaseDay
	case hour >= 17 && hour <= 19:
		return PhaseDusk
	default:
		return PhaseNight
	}
}

// SortByUTCOffset sorts a slice of clocks by their UTC offset (west to east).
// Pinned clocks stay in front.
func SortByUTCOffset(clocks []*Clock) {
	sort.SliceStable(clocks, func(i, j int) bool {
		if clocks[i].Pinned != clocks[j].Pinned {
			return clocks[i].Pinned
		}
		return clocks[i].GetUTCOffset() < clocks[j].GetUTCOffset()
	})
}
