package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRelative(t *testing.T) {
	// late evening so a naive 24h truncation would be off by one
	today := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		due     Date
		days    int
		overdue bool
		label   string
	}{
		{"2024-03-10", 0, false, "today"},
		{"2024-03-11", 1, false, "tomorrow"},
		{"2024-03-15", 5, false, "in 5 days"},
		{"2024-03-09", -1, true, "yesterday"},
		{"2024-02-29", -10, true, "10 days overdue"},
		{"2025-03-10", 365, false, "in 365 days"},
	}
	for _, tt := range tests {
		t.Run(string(tt.due), func(t *testing.T) {
			n, err := tt.due.DaysUntil(today)
			require.NoError(t, err)
			assert.Equal(t, tt.days, n)
			assert.Equal(t, tt.overdue, tt.due.IsOverdue(today))
			assert.Equal(t, tt.label, tt.due.DueLabel(today))
		})
	}
}

func TestDateRelativeUsesTodaysLocation(t *testing.T) {
	// 2024-03-10 20:00 in UTC-5 is already 2024-03-11 in UTC
	loc := time.FixedZone("EST", -5*60*60)
	today := time.Date(2024, 3, 10, 20, 0, 0, 0, loc)

	n, err := Date("2024-03-10").DaysUntil(today)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, Date("2024-03-10").IsOverdue(today))
}

func TestDateRelativeMalformed(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	d := Date("next week")

	_, err := d.DaysUntil(today)
	assert.Error(t, err)
	assert.False(t, d.IsOverdue(today))
	assert.Equal(t, "next week", d.DueLabel(today))
}
