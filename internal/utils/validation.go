package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
)

// ScheduleRow is one weekday as submitted by the weekly schedule form.
type ScheduleRow struct {
	DayOfWeek *int   `json:"dayOfWeek" validate:"required,gte=0,lte=6"`
	IsClosed  bool   `json:"isClosed"`
	OpenTime  string `json:"openTime" validate:"omitempty,timeofday"`
	CloseTime string `json:"closeTime" validate:"omitempty,timeofday"`
}

// ScheduleEntries converts form rows into entries for target. Times sent for a closed day
// are dropped, the form keeps them around while the day is toggled.
func ScheduleEntries(target domain.ScheduleTarget, rows []ScheduleRow) ([]domain.ScheduleEntry, error) {
	entries := make([]domain.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		if row.DayOfWeek == nil {
			return nil, fmt.Errorf("%w: day of week is required", domain.ErrInvalidSchedule)
		}
		day := time.Weekday(*row.DayOfWeek)

		if row.IsClosed {
			entries = append(entries, domain.ClosedEntry(target, day))
			continue
		}

		openAt, err := domain.ParseTimeOfDay(row.OpenTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSchedule, day, err)
		}
		closeAt, err := domain.ParseTimeOfDay(row.CloseTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSchedule, day, err)
		}
		entries = append(entries, domain.OpenEntry(target, day, openAt, closeAt))
	}

	// per-entry checks happen again in the repository, this only fails fast
	if err := domain.ValidateWeek(entries, false); err != nil {
		return nil, err
	}
	return entries, nil
}

// ClosureTarget builds a target from the scope dependent fields of the closure editor.
func ClosureTarget(scope string, locationID *uuid.UUID, resourceType string, resourceID *uuid.UUID) (domain.ClosureTarget, error) {
	var loc, res uuid.UUID
	if locationID != nil {
		loc = *locationID
	}
	if resourceID != nil {
		res = *resourceID
	}
	return domain.NewClosureTarget(domain.ClosureScope(scope), loc, resourceType, res)
}

// DateRange parses an inclusive from..to pair.
func DateRange(from, to string) (domain.Date, domain.Date, error) {
	start, err := domain.ParseDate(from)
	if err != nil {
		return domain.Date{}, domain.Date{}, err
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		return domain.Date{}, domain.Date{}, err
	}
	if end.Before(start) {
		return domain.Date{}, domain.Date{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return start, end, nil
}
