package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateParsing(t *testing.T) {
	t.Run("connected on", func(t *testing.T) {
		d := ParseConnectedOn("16 Aug 2023")
		require.True(t, d.Valid)
		assert.Equal(t, 2023, d.Time.Year())
		assert.Equal(t, time.August, d.Time.Month())
		assert.Equal(t, 16, d.Time.Day())
		assert.Equal(t, "2023-08-16", d.Param())
	})

	t.Run("followed on", func(t *testing.T) {
		ts := ParseFollowedOn("Wed Aug 16 08:30:00 UTC 2023")
		require.True(t, ts.Valid)
		assert.Equal(t, 2023, ts.Time.Year())
		assert.Equal(t, 8, int(ts.Time.Month()))

		// zone name occasionally absent
		ts = ParseFollowedOn("Wed Aug 16 08:30:00 2023")
		assert.True(t, ts.Valid)
	})

	t.Run("endorsed on", func(t *testing.T) {
		ts := ParseEndorsedOn("2023/08/16 08:30:00 UTC")
		require.True(t, ts.Valid)
		assert.Equal(t, 16, ts.Time.Day())

		ts = ParseEndorsedOn("2023/08/16 08:30:00")
		assert.True(t, ts.Valid)
	})

	t.Run("message time", func(t *testing.T) {
		ts := ParseMessageTime("2023-08-16 08:30:05 UTC")
		require.True(t, ts.Valid)
		assert.Equal(t, 5, ts.Time.Second())

		ts = ParseMessageTime("2023-08-16 08:30:05")
		assert.True(t, ts.Valid)
	})

	t.Run("unparseable values become null params", func(t *testing.T) {
		for _, v := range []string{"", "  ", "not a date", "2023-08-16", "16/08/2023"} {
			d := ParseConnectedOn(v)
			assert.False(t, d.Valid, "value %q", v)
			assert.Nil(t, d.Param(), "value %q", v)
		}
		ts := ParseMessageTime("yesterday")
		assert.False(t, ts.Valid)
		assert.Nil(t, ts.Param())
	})

	t.Run("timestamp param is utc", func(t *testing.T) {
		ts := ParseMessageTime("2023-08-16 08:30:05 UTC")
		require.True(t, ts.Valid)
		v, ok := ts.Param().(time.Time)
		require.True(t, ok)
		assert.Equal(t, time.UTC, v.Location())
	})

	t.Run("surrounding whitespace tolerated", func(t *testing.T) {
		d := ParseConnectedOn("  16 Aug 2023  ")
		assert.True(t, d.Valid)
	})
}
