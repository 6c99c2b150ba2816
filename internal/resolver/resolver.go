// Package resolver merges closures and weekly schedules into a single open/closed verdict.
//
// Precedence, most specific first:
//
//  1. closures (resource > resource_type > location), any match closes the resource
//  2. the resource's own entry for the weekday, when an override exists for that day
//  3. the location's entry for the weekday, defaulted when no row exists
//
// The resolver holds no state and never retries: repository errors are returned unchanged.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
)

// MaxCalendarDays bounds a single Calendar call.
const MaxCalendarDays = 90

var ErrInvalidRange = errors.New("invalid calendar range")

type ScheduleReader interface {
	GetLocationSchedule(ctx context.Context, partnerID, locationID uuid.UUID) ([]domain.ScheduleEntry, error)
	GetResourceScheduleOverride(ctx context.Context, partnerID, resourceID uuid.UUID) ([]domain.ScheduleEntry, error)
}

type ClosureReader interface {
	ListClosuresForLocation(ctx context.Context, partnerID, locationID uuid.UUID) ([]domain.ClosureEntry, error)
}

// Observer is told about every verdict produced. It must not block.
type Observer interface {
	ObserveVerdict(v domain.Verdict)
}

type Resolver struct {
	schedules ScheduleReader
	closures  ClosureReader
	observer  Observer
}

func New(schedules ScheduleReader, closures ClosureReader) *Resolver {
	return &Resolver{schedules: schedules, closures: closures}
}

func (r *Resolver) WithObserver(o Observer) *Resolver {
	r.observer = o
	return r
}

// IsOpen answers whether res is open at the given instant.
func (r *Resolver) IsOpen(ctx context.Context, res domain.Resource, at domain.Instant) (domain.Verdict, error) {
	closures, err := r.closures.ListClosuresForLocation(ctx, res.PartnerID, res.LocationID)
	if err != nil {
		return domain.Verdict{}, err
	}
	if c := matchClosure(closures, res, at.Date); c != nil {
		return r.observe(domain.Verdict{Open: false, Reason: c, Basis: domain.BasisClosure}), nil
	}

	entry, basis, err := r.entryForDay(ctx, res, at.Date.Weekday())
	if err != nil {
		return domain.Verdict{}, err
	}
	return r.observe(verdictFromEntry(entry, basis, at)), nil
}

// EffectiveWeek returns the seven entries actually applied to res, one per weekday,
// taking the override where it exists and the location entry otherwise.
func (r *Resolver) EffectiveWeek(ctx context.Context, res domain.Resource) ([]domain.ScheduleEntry, error) {
	layers, err := r.loadSchedules(ctx, res)
	if err != nil {
		return nil, err
	}

	week := make([]domain.ScheduleEntry, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		week[day], _ = layers.entryForDay(res, day)
	}
	return week, nil
}

// Calendar resolves every day in [from, to] as a date-only query. Repositories are read
// once for the whole range.
func (r *Resolver) Calendar(ctx context.Context, res domain.Resource, from, to domain.Date) ([]domain.DayAvailability, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, to, from)
	}
	if n := from.DaysUntil(to) + 1; n > MaxCalendarDays {
		return nil, fmt.Errorf("%w: %d days exceeds %d", ErrInvalidRange, n, MaxCalendarDays)
	}

	closures, err := r.closures.ListClosuresForLocation(ctx, res.PartnerID, res.LocationID)
	if err != nil {
		return nil, err
	}
	layers, err := r.loadSchedules(ctx, res)
	if err != nil {
		return nil, err
	}

	days := make([]domain.DayAvailability, 0, from.DaysUntil(to)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		var v domain.Verdict
		if c := matchClosure(closures, res, d); c != nil {
			v = domain.Verdict{Open: false, Reason: c, Basis: domain.BasisClosure}
		} else {
			entry, basis := layers.entryForDay(res, d.Weekday())
			v = verdictFromEntry(entry, basis, domain.OnDate(d))
		}
		days = append(days, domain.DayAvailability{
			Date:   d,
			Open:   v.Open,
			Reason: v.Reason,
			Basis:  v.Basis,
			Hours:  v.Hours,
		})
	}
	return days, nil
}

func (r *Resolver) observe(v domain.Verdict) domain.Verdict {
	if r.observer != nil {
		r.observer.ObserveVerdict(v)
	}
	return v
}

// entryForDay reads the override first and only falls back to the location schedule
// when the override has nothing for that day.
func (r *Resolver) entryForDay(ctx context.Context, res domain.Resource, day time.Weekday) (domain.ScheduleEntry, domain.VerdictBasis, error) {
	override, err := r.schedules.GetResourceScheduleOverride(ctx, res.PartnerID, res.ID)
	if err != nil {
		return domain.ScheduleEntry{}, "", err
	}
	if e, ok := domain.EntryForDay(override, day); ok {
		return e, domain.BasisResourceSchedule, nil
	}

	week, err := r.schedules.GetLocationSchedule(ctx, res.PartnerID, res.LocationID)
	if err != nil {
		return domain.ScheduleEntry{}, "", err
	}
	e, basis := locationEntry(week, res, day)
	return e, basis, nil
}

type scheduleLayers struct {
	override []domain.ScheduleEntry
	location []domain.ScheduleEntry
}

func (r *Resolver) loadSchedules(ctx context.Context, res domain.Resource) (scheduleLayers, error) {
	override, err := r.schedules.GetResourceScheduleOverride(ctx, res.PartnerID, res.ID)
	if err != nil {
		return scheduleLayers{}, err
	}
	week, err := r.schedules.GetLocationSchedule(ctx, res.PartnerID, res.LocationID)
	if err != nil {
		return scheduleLayers{}, err
	}
	return scheduleLayers{override: override, location: week}, nil
}

func (l scheduleLayers) entryForDay(res domain.Resource, day time.Weekday) (domain.ScheduleEntry, domain.VerdictBasis) {
	if e, ok := domain.EntryForDay(l.override, day); ok {
		return e, domain.BasisResourceSchedule
	}
	return locationEntry(l.location, res, day)
}

// locationEntry falls back to the default policy when the repository returned no row for
// the day, so a verdict never depends on data being present.
func locationEntry(week []domain.ScheduleEntry, res domain.Resource, day time.Weekday) (domain.ScheduleEntry, domain.VerdictBasis) {
	if e, ok := domain.EntryForDay(week, day); ok {
		if e.IsDefault {
			return e, domain.BasisDefault
		}
		return e, domain.BasisLocationSchedule
	}
	return domain.DefaultScheduleEntry(domain.LocationSchedule(res.LocationID), day), domain.BasisDefault
}

// matchClosure returns the most specific closure covering date that targets res. Among
// equally specific matches the first one in repository order wins.
func matchClosure(closures []domain.ClosureEntry, res domain.Resource, date domain.Date) *domain.ClosureEntry {
	var best *domain.ClosureEntry
	for i := range closures {
		c := &closures[i]
		if !c.Target.AppliesTo(res) || !c.Covers(date) {
			continue
		}
		if best == nil || c.Target.Specificity() > best.Target.Specificity() {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

func verdictFromEntry(entry domain.ScheduleEntry, basis domain.VerdictBasis, at domain.Instant) domain.Verdict {
	v := domain.Verdict{Basis: basis, Hours: &entry}
	switch {
	case entry.IsClosed:
		v.Open = false
	case !at.HasTime:
		v.Open = true
	default:
		v.Open = entry.Contains(at.Time)
	}
	return v
}
