package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"2024-02-29 23:59:59", true},
		{"1970-01-01 00:00:00", true},
		{"2023-02-29 00:00:00", false},
		{"2024-13-01 00:00:00", false},
		{"2024-01-01T00:00:00", false},
		{"2024-01-01 00:00:0", false},
		{"2024-01-01 0:00:000", false},
		{"abcd-ef-gh ij:kl:mn", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			if !tt.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, d.String())
		})
	}
}

func TestDateRoundTrip(t *testing.T) {
	for _, s := range []string{"2001-09-09 01:46:40", "2099-12-31 23:59:59", "2016-06-01 12:00:00"} {
		d, err := ParseDate(s)
		require.NoError(t, err)
		assert.Equal(t, s, d.String())

		again, err := ParseDate(d.String())
		require.NoError(t, err)
		assert.True(t, d.Equal(again.Time))
	}
}

func TestNewDateIsUTC(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	d := NewDate(time.Date(2020, 1, 1, 9, 0, 0, 500, loc))
	assert.Equal(t, "2020-01-01 00:00:00", d.String())
}

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2020-05-06 07:08:09")
	require.NoError(t, err)

	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2020-05-06 07:08:09"`, string(data))

	var back DateValue
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, d, back)
}
