package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", NewTimeOfDay(9, 0), false},
		{"18:30:15", NewTimeOfDay(18, 30) + 15, false},
		{"00:00", 0, false},
		{"24:00", NewTimeOfDay(24, 0), false},
		{"24:01", 0, true},
		{"9", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	data, err := json.Marshal(NewTimeOfDay(7, 5))
	require.NoError(t, err)
	assert.JSONEq(t, `"07:05"`, string(data))

	var got TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"23:59:59"`), &got))
	assert.Equal(t, "23:59:59", got.String())
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	assert.Equal(t, NewDate(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, NewDate(2024, time.March, 1), d.AddDays(2))
	assert.Equal(t, NewDate(2023, time.December, 31), NewDate(2024, time.January, 1).AddDays(-1))

	assert.Equal(t, 366, NewDate(2024, time.January, 1).DaysUntil(NewDate(2025, time.January, 1)))
	assert.Equal(t, -1, NewDate(2025, time.January, 1).DaysUntil(NewDate(2024, time.December, 31)))

	assert.Equal(t, time.Wednesday, NewDate(2025, time.January, 1).Weekday())
	assert.True(t, NewDate(2024, time.December, 31).Before(NewDate(2025, time.January, 1)))
}

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(NewDate(2025, time.March, 9))
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-03-09"`, string(data))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-02-29"`), &d))
	assert.Equal(t, NewDate(2024, time.February, 29), d)
	assert.Error(t, json.Unmarshal([]byte(`"2025-02-29"`), &d))
}

func TestMonthDayIn(t *testing.T) {
	leap := MonthDay{Month: time.February, Day: 29}
	assert.Equal(t, leap, leap.In(2024))
	assert.Equal(t, MonthDay{Month: time.February, Day: 28}, leap.In(2025))
	assert.Equal(t, MonthDay{Month: time.February, Day: 28}, leap.In(1900))
	assert.Equal(t, leap, leap.In(2000))
}

func TestParseInstant(t *testing.T) {
	tests := []struct {
		in   string
		want Instant
	}{
		{"2025-01-02T10:00", Instant{Date: NewDate(2025, time.January, 2), Time: NewTimeOfDay(10, 0), HasTime: true}},
		{"2025-01-02 10:00:30", Instant{Date: NewDate(2025, time.January, 2), Time: NewTimeOfDay(10, 0) + 30, HasTime: true}},
		{"2025-01-02T23:30:00+08:00", Instant{Date: NewDate(2025, time.January, 2), Time: NewTimeOfDay(23, 30), HasTime: true}},
		{"2025-01-02", Instant{Date: NewDate(2025, time.January, 2)}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInstant(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseInstant("next tuesday")
	assert.Error(t, err)
}

func TestAtUsesWallClock(t *testing.T) {
	zone := time.FixedZone("venue", -5*3600)
	at := At(time.Date(2025, time.July, 4, 23, 15, 0, 0, zone))

	assert.Equal(t, NewDate(2025, time.July, 4), at.Date)
	assert.Equal(t, NewTimeOfDay(23, 15), at.Time)
	assert.Equal(t, "2025-07-04T23:15", at.String())
}
