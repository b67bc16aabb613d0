package chatbot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"iso with seconds", "2025-10-25T14:00:00", time.Date(2025, 10, 25, 14, 0, 0, 0, time.UTC)},
		{"iso with fraction", "2025-10-25T14:00:00.5", time.Date(2025, 10, 25, 14, 0, 0, 500_000_000, time.UTC)},
		{"iso without seconds", "2025-10-25T14:30", time.Date(2025, 10, 25, 14, 30, 0, 0, time.UTC)},
		{"space separated", "  2025-10-25 14:00 ", time.Date(2025, 10, 25, 14, 0, 0, 0, time.UTC)},
		{"us month first", "10/25/2025 09:15", time.Date(2025, 10, 25, 9, 15, 0, 0, time.UTC)},
		{"ambiguous prefers month first", "03/04/2025 10:00", time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)},
		{"day first when month invalid", "25/10/2025 14:00", time.Date(2025, 10, 25, 14, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDateTime(tt.input, time.UTC)
			assert.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseDateTimeRejects(t *testing.T) {
	for _, input := range []string{"", "not a date", "tomorrow at 2pm", "2025-13-01 10:00", "2025-10-25"} {
		_, ok := ParseDateTime(input, time.UTC)
		assert.False(t, ok, input)
	}
}

func TestParseDateTimeUsesLocation(t *testing.T) {
	loc := time.FixedZone("clinic", -5*3600)
	got, ok := ParseDateTime("2025-10-25 14:00", loc)
	assert.True(t, ok)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 14, got.Hour())
}

func TestParseDateTimeRejectsOutOfRangeDays(t *testing.T) {
	for _, input := range []string{"2025-02-30 14:00", "2025-02-29T09:00", "04/31/2025 10:00", "31/04/2025 10:00"} {
		_, ok := ParseDateTime(input, time.UTC)
		assert.False(t, ok, "%q must not be clamped to the month end", input)
	}
	got, ok := ParseDateTime("2024-02-29 09:00", time.UTC)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC), got)
}
