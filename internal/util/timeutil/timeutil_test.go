package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidTimezone(t *testing.T) {
	require.True(t, ValidTimezone("Europe/Madrid"))
	require.True(t, ValidTimezone("UTC"))
	require.False(t, ValidTimezone(""))
	require.False(t, ValidTimezone("Local"))
	require.False(t, ValidTimezone("Mars/Olympus"))
}

func TestAcademicYearBounds(t *testing.T) {
	// Spring belongs to the year that started the previous September.
	start, end := AcademicYearBounds(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC).Unix(), start)
	require.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Unix(), end)

	// September itself opens a new year.
	start, end = AcademicYearBounds(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Unix(), start)
	require.Equal(t, time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC).Unix(), end)
}
