package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeek(t *testing.T) {
	target := LocationSchedule(uuid.New())
	week := DefaultWeek(target)
	require.Len(t, week, 7)

	for day, e := range week {
		assert.Equal(t, time.Weekday(day), e.DayOfWeek)
		assert.True(t, e.IsDefault)
		assert.Equal(t, target, e.Target)

		weekend := e.DayOfWeek == time.Saturday || e.DayOfWeek == time.Sunday
		assert.Equal(t, weekend, e.IsClosed)
		if !weekend {
			assert.Equal(t, NewTimeOfDay(9, 0), *e.OpenTime)
			assert.Equal(t, NewTimeOfDay(18, 0), *e.CloseTime)
		}
	}
}

func TestCompleteWeekKeepsStoredEntries(t *testing.T) {
	target := LocationSchedule(uuid.New())
	stored := []ScheduleEntry{
		ClosedEntry(target, time.Wednesday),
		OpenEntry(target, time.Saturday, NewTimeOfDay(10, 0), NewTimeOfDay(14, 0)),
	}

	week := CompleteWeek(target, stored)
	require.Len(t, week, 7)
	assert.Equal(t, stored[0], week[time.Wednesday])
	assert.Equal(t, stored[1], week[time.Saturday])
	assert.True(t, week[time.Monday].IsDefault)
	assert.False(t, week[time.Wednesday].IsDefault)
}

func TestScheduleEntryContains(t *testing.T) {
	e := OpenEntry(LocationSchedule(uuid.New()), time.Monday, NewTimeOfDay(9, 0), NewTimeOfDay(18, 0))

	assert.False(t, e.Contains(NewTimeOfDay(8, 59)))
	assert.True(t, e.Contains(NewTimeOfDay(9, 0)))
	assert.True(t, e.Contains(NewTimeOfDay(17, 59)+59))
	assert.False(t, e.Contains(NewTimeOfDay(18, 0)))

	closed := ClosedEntry(LocationSchedule(uuid.New()), time.Monday)
	assert.False(t, closed.Contains(NewTimeOfDay(12, 0)))
}

func TestValidateWeek(t *testing.T) {
	target := ResourceSchedule(uuid.New())
	nine, six := NewTimeOfDay(9, 0), NewTimeOfDay(18, 0)

	full := DefaultWeek(target)
	assert.NoError(t, ValidateWeek(full, true))
	assert.NoError(t, ValidateWeek(full[:3], false))
	assert.NoError(t, ValidateWeek(nil, false))
	assert.ErrorIs(t, ValidateWeek(full[:3], true), ErrInvalidSchedule)
	assert.ErrorIs(t, ValidateWeek(append(full, full[0]), false), ErrInvalidSchedule)

	tests := []struct {
		name  string
		entry ScheduleEntry
	}{
		{"inverted", OpenEntry(target, time.Monday, six, nine)},
		{"empty window", OpenEntry(target, time.Monday, nine, nine)},
		{"missing close", ScheduleEntry{Target: target, DayOfWeek: time.Monday, OpenTime: &nine}},
		{"closed with hours", ScheduleEntry{Target: target, DayOfWeek: time.Monday, IsClosed: true, OpenTime: &nine, CloseTime: &six}},
		{"day out of range", ClosedEntry(target, time.Weekday(7))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateWeek([]ScheduleEntry{tt.entry}, false), ErrInvalidSchedule)
		})
	}

	dup := []ScheduleEntry{ClosedEntry(target, time.Friday), OpenEntry(target, time.Friday, nine, six)}
	assert.ErrorIs(t, ValidateWeek(dup, false), ErrInvalidSchedule)
}

func TestScheduleEntryJSON(t *testing.T) {
	id := uuid.New()
	e := OpenEntry(ResourceSchedule(id), time.Tuesday, NewTimeOfDay(7, 0), NewTimeOfDay(12, 30))

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"target": {"scope": "resource", "resourceId": "`+id.String()+`"},
		"dayOfWeek": 2,
		"isClosed": false,
		"openTime": "07:00",
		"closeTime": "12:30",
		"isDefault": false
	}`, string(data))
}
