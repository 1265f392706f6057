package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"zero months", date(2024, time.January, 15), 0, date(2024, time.January, 15)},
		{"keeps day of month", date(2024, time.January, 15), 1, date(2024, time.February, 15)},
		{"clamps to leap day", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"clamps to end of february", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"clamping does not carry over", date(2024, time.January, 31), 2, date(2024, time.March, 31)},
		{"clamps to 30 day month", date(2024, time.March, 31), 1, date(2024, time.April, 30)},
		{"crosses year boundary", date(2024, time.November, 30), 3, date(2025, time.February, 28)},
		{"whole horizon", date(2024, time.January, 1), 359, date(2053, time.December, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.start, tt.months))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 5419.0, DaysBetween(Genesis, date(2024, time.January, 1)))
	assert.Equal(t, 366.0, DaysBetween(date(2024, time.January, 1), date(2025, time.January, 1)))
	assert.Equal(t, -1.0, DaysBetween(Genesis, date(2009, time.February, 28)))
	assert.Equal(t, 113499.0, DaysBetween(Genesis, date(2319, time.December, 1)))
	assert.Equal(t, 2918562.0, DaysBetween(Genesis, date(9999, time.December, 1)))
}

func TestParseDate(t *testing.T) {
	t.Run("should parse ISO date", func(t *testing.T) {
		parsed, err := ParseDate("2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.January, 1), parsed)
	})

	t.Run("should truncate timestamps to their date", func(t *testing.T) {
		parsed, err := ParseDate(" 2024-06-30T23:15:00+02:00 ")
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.June, 30), parsed)
	})

	t.Run("should reject malformed dates", func(t *testing.T) {
		for _, value := range []string{"", "2024-13-01", "2024-02-30", "01/02/2024", "tomorrow"} {
			_, err := ParseDate(value)
			assert.Error(t, err, value)
		}
	})
}
