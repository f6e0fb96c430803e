package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockFormatting(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		timezone string
		wantTime string
		wantDate string
		wantLine string
	}{
		{"Asia/Tokyo", "21:00:00", "2026-02-15", "2026-02-15 - UTC+09:00"},
		{"America/New_York", "07:00:00", "2026-02-15", "2026-02-15 - UTC-05:00"},
		{"Pacific/Honolulu", "02:00:00", "2026-02-15", "2026-02-15 - UTC-10:00"},
		{"Pacific/Auckland", "01:00:00", "2026-02-16", "2026-02-16 - UTC+12:00 (DST: UTC+13:00)"},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			c, err := New(tt.timezone, tt.timezone, fc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, c.FormatTime())
			assert.Equal(t, tt.wantDate, c.FormatDate())
			assert.Equal(t, tt.wantLine, c.FormatDateWithOffset())
		})
	}
}

func TestClockFollowsTimeSource(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC))
	c, err := New("London", "Europe/London", fc)
	require.NoError(t, err)

	assert.Equal(t, "23:59:59", c.FormatTime())
	fc.Advance(time.Second)
	assert.Equal(t, "00:00:00", c.FormatTime())
	assert.Equal(t, "2026-03-02", c.FormatDate())
}

func TestNew_InvalidTimezone(t *testing.T) {
	_, err := New("Nowhere", "Invalid/Zone", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidZone))
}

func TestNewUnresolved(t *testing.T) {
	c := NewUnresolved("Nowhere", "Invalid/Zone", clockwork.NewFakeClock())
	assert.False(t, c.Valid())
	assert.Equal(t, NoTime, c.FormatTime())
	assert.Equal(t, NoDate, c.FormatDate())
	assert.Equal(t, "UTC", c.FormatUTCOffset())
	assert.Equal(t, 0, c.GetUTCOffset())
}

func TestNewUTC(t *testing.T) {
	c := NewUTC(clockwork.NewFakeClockAt(time.Date(2026, 7, 1, 8, 30, 0, 0, time.UTC)))
	assert.True(t, c.Pinned)
	assert.Equal(t, "08:30:00", c.FormatTime())
	assert.Equal(t, UTCDescription, c.FormatUTCOffset())
}

func TestPhaseAt(t *testing.T) {
	want := map[int]Phase{
		0: PhaseNight, 3: PhaseNight, 4: PhaseDawn, 6: PhaseDawn, 7: PhaseDay,
		16: PhaseDay, 17: PhaseDusk, 19: PhaseDusk, 20: PhaseNight, 23: PhaseNight,
	}
	for hour, phase := range want {
		assert.Equal(t, phase, PhaseAt(hour), "hour %d", hour)
	}
}

func TestClockPhase(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC))
	tokyo, err := New("Tokyo", "Asia/Tokyo", fc)
	require.NoError(t, err)
	london, err := New("London", "Europe/London", fc)
	require.NoError(t, err)

	assert.Equal(t, PhaseNight, tokyo.Phase())
	assert.Equal(t, PhaseDay, london.Phase())
}

func TestSortByUTCOffset(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC))

	var clocks []*Clock
	for _, tz := range []string{"Asia/Tokyo", "America/New_York", "Europe/London"} {
		c, err := New(tz, tz, fc)
		require.NoError(t, err)
		clocks = append(clocks, c)
	}
	clocks = append(clocks, NewUTC(fc))

	SortByUTCOffset(clocks)

	var got []string
	for _, c := range clocks {
		got = append(got, c.Timezone)
	}
	assert.Equal(t, []string{"UTC", "America/New_York", "Europe/London", "Asia/Tokyo"}, got)
}
