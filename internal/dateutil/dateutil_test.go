package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTruncateToMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	in := time.Date(2012, time.November, 16, 17, 15, 42, 123, loc)

	got := TruncateToMidnight(in)

	assert.Equal(t, time.Date(2012, time.November, 16, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location(), "truncation must stay in the calendar-local zone")
}

func TestSameDay(t *testing.T) {
	a := time.Date(2013, time.January, 5, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, a.Add(23*time.Hour+59*time.Minute)))
	assert.False(t, SameDay(a, a.AddDate(0, 0, 1)))
	assert.False(t, SameDay(a, a.AddDate(1, 0, 0)), "same month/day in another year")
	assert.False(t, SameDay(a, a.AddDate(0, 1, 0)), "same day in another month")
}

func TestBetweenWith(t *testing.T) {
	min := day(2013, time.January, 5)
	max := day(2013, time.January, 10)

	cases := []struct {
		name     string
		date     time.Time
		min, max *time.Time
		inMin    bool
		inMax    bool
		want     bool
	}{
		{"no min never matches", min, nil, &max, true, true, false},
		{"no min no max", min, nil, nil, true, true, false},
		{"no max exact min", min, &min, nil, true, false, true},
		{"no max exact min excluded", min, &min, nil, false, false, false},
		{"no max later date", max, &min, nil, true, true, false},
		{"inside", day(2013, time.January, 7), &min, &max, false, false, true},
		{"min inclusive", min, &min, &max, true, false, true},
		{"min exclusive", min, &min, &max, false, false, false},
		{"max inclusive", max, &min, &max, true, true, true},
		{"max exclusive", max, &min, &max, true, false, false},
		{"before", day(2013, time.January, 4), &min, &max, true, true, false},
		{"after", day(2013, time.January, 11), &min, &max, true, true, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, BetweenWith(c.date, c.min, c.max, c.inMin, c.inMax))
		})
	}
}

func TestBetweenIsHalfOpen(t *testing.T) {
	min := day(2013, time.January, 1)
	max := day(2013, time.February, 1)

	assert.True(t, Between(min, &min, &max))
	assert.False(t, Between(max, &min, &max))
	assert.True(t, Between(max.Add(-time.Minute), &min, &max))
}

func TestMonthAfter(t *testing.T) {
	assert.True(t, MonthAfter(2014, time.January, 2013, time.December))
	assert.True(t, MonthAfter(2013, time.March, 2013, time.February))
	assert.False(t, MonthAfter(2013, time.February, 2013, time.February))
	assert.False(t, MonthAfter(2012, time.December, 2013, time.January))
}

func TestFirstOfMonth(t *testing.T) {
	got := FirstOfMonth(time.Date(2013, time.February, 28, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, day(2013, time.February, 1), got)
}

func TestDayStartNormalizes(t *testing.T) {
	assert.Equal(t, day(2012, time.December, 31), DayStart(2013, time.January, 0, time.UTC))
	assert.Equal(t, day(2014, time.January, 1), DayStart(2013, time.December, 32, time.UTC))
	assert.Equal(t, day(2013, time.March, 1), DayStart(2013, time.February, 29, time.UTC))
}

func TestDayStartSkippedMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// Chile moved clocks from 00:00 to 01:00 on 2019-09-08.
	start := DayStart(2019, time.September, 8, loc)
	assert.Equal(t, 8, start.Day(), start.String())
	assert.Equal(t, 1, start.Hour())
	assert.True(t, start.Add(-time.Minute).Day() == 7, "nothing on the 8th precedes the returned instant")

	noon := time.Date(2019, time.September, 8, 12, 0, 0, 0, loc)
	truncated := TruncateToMidnight(noon)
	assert.True(t, SameDay(truncated, noon), truncated.String())
	assert.True(t, truncated.Equal(start))

	parsed, err := ParseDay("2019-09-08", loc)
	assert.NoError(t, err)
	assert.True(t, parsed.Equal(start), parsed.String())

	assert.Equal(t, time.September, FirstOfMonth(noon).Month())
	assert.Equal(t, 1, FirstOfMonth(noon).Day())
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2013-01-05", time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, day(2013, time.January, 5), got)

	_, err = ParseDay("2013-1-5", time.UTC)
	assert.Error(t, err)
}
