package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(t *testing.T, min, max time.Time) []string {
	t.Helper()
	months, err := Months(min, max, "Jan 2006")
	require.NoError(t, err)
	out := make([]string, 0, len(months))
	for _, m := range months {
		out = append(out, m.Label)
	}
	return out
}

func TestMonths(t *testing.T) {
	t.Run("single month", func(t *testing.T) {
		got := labels(t, day(2013, time.January, 10), day(2013, time.January, 20))
		assert.Equal(t, []string{"Jan 2013"}, got)
	})

	t.Run("last included minute before a month start", func(t *testing.T) {
		got := labels(t, day(2013, time.January, 1), day(2013, time.March, 1).Add(-time.Minute))
		assert.Equal(t, []string{"Jan 2013", "Feb 2013"}, got)
	})

	t.Run("year rollover", func(t *testing.T) {
		got := labels(t, day(2012, time.November, 16), day(2013, time.November, 16).Add(-time.Minute))
		require.Len(t, got, 13)
		assert.Equal(t, "Nov 2012", got[0])
		assert.Equal(t, "Jan 2013", got[2])
		assert.Equal(t, "Nov 2013", got[12])
	})

	t.Run("min after max", func(t *testing.T) {
		_, err := Months(day(2013, time.March, 1), day(2013, time.January, 1), "Jan 2006")
		assert.Error(t, err)
	})
}
