package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("10:00")
	require.NoError(t, err)
	assert.Equal(t, "10:00", ts.String())

	// "24:00" допустимо как время закрытия
	ts, err = NewTimeStringFromString("24:00")
	require.NoError(t, err)
	assert.Equal(t, "24:00", ts.String())

	for _, bad := range []string{"", "10", "10:0", "25:00", "10:60", "24:01", "ab:cd", "10-00"} {
		_, err := NewTimeStringFromString(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}

func TestTimeString_Minutes(t *testing.T) {
	ts := TimeString("11:30")
	minutes, err := ts.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 690, minutes)
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := TimeString("18:30")

	end, err := ts.AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, TimeString("20:00"), end)

	// Выход за границу суток
	_, err = ts.AddMinutes(6 * 60)
	assert.ErrorIs(t, err, ErrTimeOutOfRange)
}

func TestTimeString_Comparisons(t *testing.T) {
	a := TimeString("09:00")
	b := TimeString("17:30")

	assert.True(t, a.IsBefore(b))
	assert.False(t, b.IsBefore(a))
	assert.True(t, b.IsAfter(a))
	assert.True(t, a.Equal(TimeString("09:00")))
	assert.False(t, a.Equal(b))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	// Postgres отдаёт колонку time как "HH:MM:SS"
	require.NoError(t, ts.Scan("14:30:00"))
	assert.Equal(t, TimeString("14:30"), ts)

	require.NoError(t, ts.Scan([]byte("08:15:00")))
	assert.Equal(t, TimeString("08:15"), ts)

	require.NoError(t, ts.Scan(time.Date(2025, 10, 15, 16, 45, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("16:45"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(12345))
}

func TestTimeString_Value(t *testing.T) {
	v, err := TimeString("10:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "10:00", v)

	v, err = TimeString("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = TimeString("bad").Value()
	assert.Error(t, err)
}
