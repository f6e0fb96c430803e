package clock

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// ErrInvalidZone is returned when a time zone identifier cannot be loaded.
var ErrInvalidZone = errors.New("invalid time zone")

// fallbackOffset is shown when a zone cannot be resolved.
const fallbackOffset = "UTC"

var locations sync.Map // name -> *time.Location

// LoadLocation loads an IANA zone, caching successful lookups.
// The empty name is rejected rather than treated as UTC, and "Local" is
// rejected because it names the host zone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidZone)
	}
	if name == "Local" {
		return nil, fmt.Errorf("%w %q: host zone is not an IANA name", ErrInvalidZone, name)
	}
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidZone, name, err)
	}
	locations.Store(name, loc)
	return loc, nil
}

// OffsetMinutes returns the UTC offset of loc at t, in minutes. The wall
// clock fields of t in loc are reinterpreted as UTC and compared with t.
func OffsetMinutes(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	y, mo, d := local.Date()
	h, mi, s := local.Clock()
	synthetic := time.Date(y, mo, d, h, mi, s, 0, time.UTC)

	minutes := int(math.Round(synthetic.Sub(t).Minutes()))
	if minutes == 1440 || minutes == -1440 {
		minutes = 0
	}
	return minutes
}

// Offset describes a zone at an instant.
type Offset struct {
	// Standard is the offset outside daylight-saving time, in minutes.
	Standard int
	// Current is the offset in effect at the instant, in minutes.
	Current int
}

// IsDST reports whether daylight-saving time is in effect.
func (o Offset) IsDST() bool {
	return o.Current != o.Standard
}

// String formats the offset, e.g. "UTC+09:00" or
// "UTC-08:00 (DST: UTC-07:00)".
func (o Offset) String() string {
	if o.IsDST() {
		return fmt.Sprintf("%s (DST: %s)", FormatOffset(o.Standard), FormatOffset(o.Current))
	}
	return FormatOffset(o.Standard)
}

// ZoneOffset computes the standard and current offsets of timezone at the
// given instant. The standard offset is inferred from January 1 and July 1
// of the instant's year, sampled at midday UTC.
func ZoneOffset(timezone string, at time.Time) (Offset, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Offset{}, err
	}

	year := at.UTC().Year()
	jan := OffsetMinutes(time.Date(year, time.January, 1, 12, 0, 0, 0, time.UTC), loc)
	jul := OffsetMinutes(time.Date(year, time.July, 1, 12, 0, 0, 0, time.UTC), loc)

	return Offset{
		Standard: standardOffset(jan, jul),
		Current:  OffsetMinutes(at, loc),
	}, nil
}

// standardOffset picks the standard offset from the two samples. DST adds
// exactly one hour; any other difference falls back to January.
func standardOffset(jan, jul int) int {
	switch {
	case jan == jul:
		return jan
	case jan+60 == jul:
		return jan
	case jul+60 == jan:
		return jul
	default:
		return jan
	}
}

// DescribeOffset returns the display offset of timezone at the instant.
// Zones that cannot be loaded yield "UTC".
func DescribeOffset(timezone string, at time.Time) string {
	off, err := ZoneOffset(timezone, at)
	if err != nil {
		return fallbackOffset
	}
	return off.String()
}

// FormatOffset formats minutes as UTC±HH:MM.
func FormatOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, minutes/60, minutes%60)
}
