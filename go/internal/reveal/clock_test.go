package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:05")
	assert.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	for _, bad := range []string{"9:05", "24:00", "12:60", "12-30", "", "12:3"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
		assert.False(t, ValidClock(bad), bad)
	}
}

func TestFormatClock(t *testing.T) {
	tests := map[string]string{
		"00:00": "12:00 AM",
		"09:30": "9:30 AM",
		"12:00": "12:00 PM",
		"14:00": "2:00 PM",
		"23:59": "11:59 PM",
		"bogus": "bogus",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatClock(in), in)
	}
}
