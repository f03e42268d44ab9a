package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateFormats(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{"2024-03-15", "03/15/2024", " 2024-03-15 "} {
		got := parseDate(input)
		require.True(t, got.Valid, "input %q", input)
		assert.Equal(t, want, got.Time, "input %q", input)
	}

	rfc := parseDate("2024-03-15T10:30:00Z")
	require.True(t, rfc.Valid)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), rfc.Time)
}

func TestParseDateInvalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "2024-13-45", "15 March"} {
		assert.False(t, parseDate(input).Valid, "input %q", input)
	}
}
