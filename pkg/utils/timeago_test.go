package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, want, ParseTimestamp("2024-05-01T10:00:00Z"))
	assert.Equal(t, want, ParseTimestamp("2024-05-01T12:00:00+02:00"))
	assert.Equal(t, want, ParseTimestamp("1714557600000"))
	assert.True(t, ParseTimestamp("").IsZero())
	assert.True(t, ParseTimestamp("not a date").IsZero())
	assert.True(t, ParseTimestamp("12abc").IsZero())
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "Just now", TimeAgo(now.Add(-30*time.Second), now))
	assert.Equal(t, "5m ago", TimeAgo(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", TimeAgo(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d ago", TimeAgo(now.Add(-49*time.Hour), now))
	assert.Equal(t, UnknownTimeLabel, TimeAgo(time.Time{}, now))
}
