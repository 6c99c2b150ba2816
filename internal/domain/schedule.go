package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ScheduleScope string

const (
	ScheduleScopeLocation ScheduleScope = "location"
	ScheduleScopeResource ScheduleScope = "resource"
)

// ScheduleTarget is either a location or a single resource, never both.
type ScheduleTarget struct {
	scope ScheduleScope
	id    uuid.UUID
}

func LocationSchedule(locationID uuid.UUID) ScheduleTarget {
	return ScheduleTarget{scope: ScheduleScopeLocation, id: locationID}
}

func ResourceSchedule(resourceID uuid.UUID) ScheduleTarget {
	return ScheduleTarget{scope: ScheduleScopeResource, id: resourceID}
}

func (t ScheduleTarget) Scope() ScheduleScope { return t.scope }
func (t ScheduleTarget) ID() uuid.UUID        { return t.id }

func (t ScheduleTarget) MarshalJSON() ([]byte, error) {
	out := struct {
		Scope      ScheduleScope `json:"scope"`
		LocationID *uuid.UUID    `json:"locationId,omitempty"`
		ResourceID *uuid.UUID    `json:"resourceId,omitempty"`
	}{Scope: t.scope}
	id := t.id
	switch t.scope {
	case ScheduleScopeLocation:
		out.LocationID = &id
	case ScheduleScopeResource:
		out.ResourceID = &id
	}
	return json.Marshal(out)
}

// ScheduleEntry is one weekly-recurring open/closed rule. OpenTime and CloseTime are nil
// when IsClosed is true. IsDefault marks entries synthesized for days with no stored row.
type ScheduleEntry struct {
	Target    ScheduleTarget `json:"target"`
	DayOfWeek time.Weekday   `json:"dayOfWeek"`
	IsClosed  bool           `json:"isClosed"`
	OpenTime  *TimeOfDay     `json:"openTime"`
	CloseTime *TimeOfDay     `json:"closeTime"`
	IsDefault bool           `json:"isDefault"`
}

func OpenEntry(target ScheduleTarget, day time.Weekday, open, close TimeOfDay) ScheduleEntry {
	return ScheduleEntry{Target: target, DayOfWeek: day, OpenTime: &open, CloseTime: &close}
}

func ClosedEntry(target ScheduleTarget, day time.Weekday) ScheduleEntry {
	return ScheduleEntry{Target: target, DayOfWeek: day, IsClosed: true}
}

// Contains reports whether t falls in [OpenTime, CloseTime).
func (e ScheduleEntry) Contains(t TimeOfDay) bool {
	if e.IsClosed || e.OpenTime == nil || e.CloseTime == nil {
		return false
	}
	return t >= *e.OpenTime && t < *e.CloseTime
}

func (e ScheduleEntry) Validate() error {
	if e.DayOfWeek < time.Sunday || e.DayOfWeek > time.Saturday {
		return fmt.Errorf("%w: day of week %d out of range 0-6", ErrInvalidSchedule, e.DayOfWeek)
	}
	if e.IsClosed {
		if e.OpenTime != nil || e.CloseTime != nil {
			return fmt.Errorf("%w: %s is closed but has opening hours", ErrInvalidSchedule, e.DayOfWeek)
		}
		return nil
	}
	if e.OpenTime == nil || e.CloseTime == nil {
		return fmt.Errorf("%w: %s requires open and close time", ErrInvalidSchedule, e.DayOfWeek)
	}
	if !e.OpenTime.Valid() || !e.CloseTime.Valid() {
		return fmt.Errorf("%w: %s has a time outside 00:00-24:00", ErrInvalidSchedule, e.DayOfWeek)
	}
	if *e.OpenTime >= *e.CloseTime {
		return fmt.Errorf("%w: %s open time %s must be before close time %s", ErrInvalidSchedule, e.DayOfWeek, e.OpenTime, e.CloseTime)
	}
	return nil
}

// The single default policy: weekdays open 09:00-18:00, Saturday and Sunday closed.
var (
	DefaultOpenTime  = NewTimeOfDay(9, 0)
	DefaultCloseTime = NewTimeOfDay(18, 0)
)

func DefaultScheduleEntry(target ScheduleTarget, day time.Weekday) ScheduleEntry {
	var e ScheduleEntry
	if day == time.Saturday || day == time.Sunday {
		e = ClosedEntry(target, day)
	} else {
		e = OpenEntry(target, day, DefaultOpenTime, DefaultCloseTime)
	}
	e.IsDefault = true
	return e
}

func DefaultWeek(target ScheduleTarget) []ScheduleEntry {
	return CompleteWeek(target, nil)
}

// CompleteWeek returns exactly seven entries ordered Sunday to Saturday. Stored entries
// are kept as they are (the first one wins if a day repeats), missing days get defaults.
func CompleteWeek(target ScheduleTarget, entries []ScheduleEntry) []ScheduleEntry {
	week := make([]ScheduleEntry, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		if e, ok := EntryForDay(entries, day); ok {
			week[day] = e
		} else {
			week[day] = DefaultScheduleEntry(target, day)
		}
	}
	return week
}

func EntryForDay(entries []ScheduleEntry, day time.Weekday) (ScheduleEntry, bool) {
	for _, e := range entries {
		if e.DayOfWeek == day {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}

// ValidateWeek checks every entry and that no day appears twice. A location week must
// have all seven days; a resource override may have any subset.
func ValidateWeek(entries []ScheduleEntry, requireFull bool) error {
	if len(entries) > 7 {
		return fmt.Errorf("%w: %d entries, at most 7 allowed", ErrInvalidSchedule, len(entries))
	}
	if requireFull && len(entries) != 7 {
		return fmt.Errorf("%w: a full week needs 7 entries, got %d", ErrInvalidSchedule, len(entries))
	}

	seen := make(map[time.Weekday]bool, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
		if seen[e.DayOfWeek] {
			return fmt.Errorf("%w: %s appears more than once", ErrInvalidSchedule, e.DayOfWeek)
		}
		seen[e.DayOfWeek] = true
	}
	return nil
}
