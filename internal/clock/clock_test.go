package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixed struct {
	t time.Time
}

func (f fixed) Now() time.Time { return f.t }

func TestToday(t *testing.T) {
	c := fixed{t: time.Date(2025, 3, 9, 23, 59, 0, 0, time.Local)}
	assert.Equal(t, "2025-03-09", Today(c))
	assert.Equal(t, "2025-03-08", Yesterday(c))
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2025-03-09")
	require.NoError(t, err)

	_, err = ParseDate("03/09/2025")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	end, err := EndOfDay("2025-03-09")
	require.NoError(t, err)

	assert.Equal(t, "2025-03-09", end.Format(DateLayout))
	assert.Equal(t, 23, end.Hour())
}

func TestMonthRange(t *testing.T) {
	first, last := (Month{Year: 2025, Month: time.February}).Range()
	assert.Equal(t, "2025-02-01", first)
	assert.Equal(t, "2025-02-28", last)

	first, last = (Month{Year: 2024, Month: time.February}).Range()
	assert.Equal(t, "2024-02-01", first)
	assert.Equal(t, "2024-02-29", last)
}

func TestTrailingMonths(t *testing.T) {
	c := fixed{t: time.Date(2025, 3, 31, 12, 0, 0, 0, time.Local)}

	months := TrailingMonths(c, 6)
	require.Len(t, months, 6)
	assert.Equal(t, Month{Year: 2024, Month: time.October}, months[0])
	assert.Equal(t, Month{Year: 2025, Month: time.March}, months[5])
}
