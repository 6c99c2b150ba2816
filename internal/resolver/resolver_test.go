package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeStore answers from fixed data and fills missing location days like a repository does.
type fakeStore struct {
	location  map[uuid.UUID][]domain.ScheduleEntry
	overrides map[uuid.UUID][]domain.ScheduleEntry
	closures  []domain.ClosureEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		location:  make(map[uuid.UUID][]domain.ScheduleEntry),
		overrides: make(map[uuid.UUID][]domain.ScheduleEntry),
	}
}

func (f *fakeStore) GetLocationSchedule(_ context.Context, _, locationID uuid.UUID) ([]domain.ScheduleEntry, error) {
	return domain.CompleteWeek(domain.LocationSchedule(locationID), f.location[locationID]), nil
}

func (f *fakeStore) GetResourceScheduleOverride(_ context.Context, _, resourceID uuid.UUID) ([]domain.ScheduleEntry, error) {
	return f.overrides[resourceID], nil
}

func (f *fakeStore) ListClosuresForLocation(_ context.Context, _, _ uuid.UUID) ([]domain.ClosureEntry, error) {
	return f.closures, nil
}

func (f *fakeStore) addClosure(target domain.ClosureTarget, start, end domain.Date, recurring bool) domain.ClosureEntry {
	c := domain.ClosureEntry{
		ID:          uuid.New(),
		Target:      target,
		StartDate:   start,
		EndDate:     end,
		Type:        domain.ClosureTypeCustom,
		IsRecurring: recurring,
	}
	c.Normalize()
	f.closures = append(f.closures, c)
	return c
}

type recordingObserver struct {
	verdicts []domain.Verdict
}

func (o *recordingObserver) ObserveVerdict(v domain.Verdict) {
	o.verdicts = append(o.verdicts, v)
}

var (
	nine     = domain.NewTimeOfDay(9, 0)
	six      = domain.NewTimeOfDay(18, 0)
	newYear  = domain.NewDate(2025, time.January, 1)  // Wednesday
	thursday = domain.NewDate(2025, time.January, 2)  // Thursday
	saturday = domain.NewDate(2025, time.January, 4)  // Saturday
	monday   = domain.NewDate(2025, time.January, 6)  // Monday
	tuesday  = domain.NewDate(2025, time.January, 7)  // Tuesday
	sunday   = domain.NewDate(2025, time.January, 12) // Sunday
)

func at(d domain.Date, hour, minute int) domain.Instant {
	return domain.Instant{Date: d, Time: domain.NewTimeOfDay(hour, minute), HasTime: true}
}

func newResource(typ string) domain.Resource {
	return domain.Resource{ID: uuid.New(), PartnerID: uuid.New(), LocationID: uuid.New(), Type: typ}
}

func isOpen(t *testing.T, r *Resolver, res domain.Resource, when domain.Instant) domain.Verdict {
	t.Helper()
	v, err := r.IsOpen(context.Background(), res, when)
	require.NoError(t, err)
	return v
}

func TestIsOpen_DefaultsWithoutData(t *testing.T) {
	store := newFakeStore()
	r := New(store, store)
	res := newResource("desk")

	for d := monday; d.Before(monday.AddDays(5)); d = d.AddDays(1) {
		v := isOpen(t, r, res, at(d, 9, 0))
		assert.True(t, v.Open, d.String())
		assert.Equal(t, domain.BasisDefault, v.Basis)
		assert.Nil(t, v.Reason)

		assert.True(t, isOpen(t, r, res, at(d, 17, 59)).Open)
		assert.False(t, isOpen(t, r, res, at(d, 8, 59)).Open)
		assert.False(t, isOpen(t, r, res, at(d, 18, 0)).Open)
	}

	for _, d := range []domain.Date{saturday, sunday} {
		v := isOpen(t, r, res, at(d, 12, 0))
		assert.False(t, v.Open)
		assert.Equal(t, domain.BasisDefault, v.Basis)
	}
}

func TestIsOpen_NilRepositoryData(t *testing.T) {
	m := &mockStore{}
	res := newResource("desk")
	m.On("ListClosuresForLocation", mock.Anything, res.PartnerID, res.LocationID).Return([]domain.ClosureEntry(nil), nil)
	m.On("GetResourceScheduleOverride", mock.Anything, res.PartnerID, res.ID).Return([]domain.ScheduleEntry(nil), nil)
	m.On("GetLocationSchedule", mock.Anything, res.PartnerID, res.LocationID).Return([]domain.ScheduleEntry(nil), nil)

	v, err := New(m, m).IsOpen(context.Background(), res, at(monday, 10, 0))
	require.NoError(t, err)
	assert.True(t, v.Open)
	assert.Equal(t, domain.BasisDefault, v.Basis)
	m.AssertExpectations(t)
}

func TestIsOpen_LocationClosedDay(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	store.location[res.LocationID] = []domain.ScheduleEntry{domain.ClosedEntry(domain.LocationSchedule(res.LocationID), time.Monday)}
	r := New(store, store)

	for hour := 0; hour < 24; hour++ {
		v := isOpen(t, r, res, at(monday, hour, 0))
		assert.False(t, v.Open)
		assert.Equal(t, domain.BasisLocationSchedule, v.Basis)
	}
	assert.False(t, isOpen(t, r, res, domain.OnDate(monday)).Open)
	assert.True(t, isOpen(t, r, res, at(tuesday, 10, 0)).Open)
}

func TestIsOpen_OverrideWinsBothWays(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	loc := domain.LocationSchedule(res.LocationID)
	own := domain.ResourceSchedule(res.ID)

	store.location[res.LocationID] = []domain.ScheduleEntry{
		domain.OpenEntry(loc, time.Monday, nine, six),
		domain.ClosedEntry(loc, time.Saturday),
	}
	store.overrides[res.ID] = []domain.ScheduleEntry{
		domain.OpenEntry(own, time.Monday, domain.NewTimeOfDay(7, 0), domain.NewTimeOfDay(12, 0)),
		domain.OpenEntry(own, time.Saturday, nine, six),
	}
	r := New(store, store)

	v := isOpen(t, r, res, at(monday, 8, 0))
	assert.True(t, v.Open)
	assert.Equal(t, domain.BasisResourceSchedule, v.Basis)
	assert.False(t, isOpen(t, r, res, at(monday, 14, 0)).Open)

	// less restrictive than the location
	assert.True(t, isOpen(t, r, res, at(saturday, 10, 0)).Open)

	// days without an override inherit
	v = isOpen(t, r, res, at(tuesday, 14, 0))
	assert.True(t, v.Open)
	assert.Equal(t, domain.BasisDefault, v.Basis)

	// other resources never see the override
	other := res
	other.ID = uuid.New()
	assert.False(t, isOpen(t, r, other, at(saturday, 10, 0)).Open)
}

func TestIsOpen_ClosureBeatsOpenSchedule(t *testing.T) {
	res := newResource("desk")
	targets := map[string]domain.ClosureTarget{
		"location":      domain.LocationClosure(res.LocationID),
		"resource_type": domain.ResourceTypeClosure(res.LocationID, "desk"),
		"resource":      domain.ResourceClosure(res.ID),
	}

	for name, target := range targets {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore()
			store.overrides[res.ID] = []domain.ScheduleEntry{
				domain.OpenEntry(domain.ResourceSchedule(res.ID), time.Monday, 0, domain.NewTimeOfDay(24, 0)),
			}
			c := store.addClosure(target, monday, monday, false)
			r := New(store, store)

			v := isOpen(t, r, res, at(monday, 12, 0))
			assert.False(t, v.Open)
			assert.Equal(t, domain.BasisClosure, v.Basis)
			require.NotNil(t, v.Reason)
			assert.Equal(t, c.ID, v.Reason.ID)

			assert.False(t, isOpen(t, r, res, domain.OnDate(monday)).Open)
		})
	}
}

func TestIsOpen_ResourceTypeClosureScope(t *testing.T) {
	store := newFakeStore()
	desk := newResource("desk")
	room := desk
	room.ID, room.Type = uuid.New(), "meeting_room"
	otherDesk := newResource("desk")

	store.addClosure(domain.ResourceTypeClosure(desk.LocationID, "desk"), monday, monday, false)
	r := New(store, store)

	assert.False(t, isOpen(t, r, desk, at(monday, 10, 0)).Open)
	assert.True(t, isOpen(t, r, room, at(monday, 10, 0)).Open)
	assert.True(t, isOpen(t, r, otherDesk, at(monday, 10, 0)).Open)

	// the type is read from the resource at query time
	desk.Type = "meeting_room"
	assert.True(t, isOpen(t, r, desk, at(monday, 10, 0)).Open)
}

func TestIsOpen_SingleDayClosure(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	store.addClosure(domain.LocationClosure(res.LocationID), tuesday, tuesday, false)
	r := New(store, store)

	assert.True(t, isOpen(t, r, res, at(monday, 10, 0)).Open)
	assert.False(t, isOpen(t, r, res, at(tuesday, 10, 0)).Open)
	assert.True(t, isOpen(t, r, res, at(tuesday.AddDays(1), 10, 0)).Open)
}

func TestIsOpen_RecurringClosure(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	store.addClosure(domain.LocationClosure(res.LocationID), domain.NewDate(2024, time.December, 24), domain.NewDate(2024, time.December, 26), true)
	r := New(store, store)

	// 2025-12-25 is a Thursday, 2023-12-24 a Sunday, 2024-06-24 a Monday
	v := isOpen(t, r, res, domain.OnDate(domain.NewDate(2025, time.December, 25)))
	assert.False(t, v.Open)
	assert.Equal(t, domain.BasisClosure, v.Basis)

	v = isOpen(t, r, res, domain.OnDate(domain.NewDate(2023, time.December, 24)))
	assert.Equal(t, domain.BasisClosure, v.Basis)

	v = isOpen(t, r, res, at(domain.NewDate(2024, time.June, 24), 10, 0))
	assert.True(t, v.Open)
	assert.NotEqual(t, domain.BasisClosure, v.Basis)
}

func TestIsOpen_MostSpecificClosureIsReported(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	byLocation := store.addClosure(domain.LocationClosure(res.LocationID), monday, tuesday, false)
	byType := store.addClosure(domain.ResourceTypeClosure(res.LocationID, "desk"), monday, monday, false)
	byResource := store.addClosure(domain.ResourceClosure(res.ID), sunday.AddDays(-7), monday, false)
	r := New(store, store)

	v := isOpen(t, r, res, at(monday, 10, 0))
	require.NotNil(t, v.Reason)
	assert.Equal(t, byResource.ID, v.Reason.ID)

	room := res
	room.ID, room.Type = uuid.New(), "meeting_room"
	v = isOpen(t, r, room, at(monday, 10, 0))
	require.NotNil(t, v.Reason)
	assert.Equal(t, byLocation.ID, v.Reason.ID)

	otherDesk := res
	otherDesk.ID = uuid.New()
	v = isOpen(t, r, otherDesk, at(monday, 10, 0))
	require.NotNil(t, v.Reason)
	assert.Equal(t, byType.ID, v.Reason.ID)

	// ties go to repository order
	first := store.addClosure(domain.LocationClosure(res.LocationID), sunday, sunday, false)
	store.addClosure(domain.LocationClosure(res.LocationID), sunday, sunday, false)
	v = isOpen(t, r, room, domain.OnDate(sunday))
	assert.Equal(t, first.ID, v.Reason.ID)
}

func TestIsOpen_ReasonIsACopy(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	store.addClosure(domain.LocationClosure(res.LocationID), monday, monday, false)
	r := New(store, store)

	v := isOpen(t, r, res, at(monday, 10, 0))
	v.Reason.Reason = "changed"
	assert.Empty(t, store.closures[0].Reason)
}

func TestIsOpen_DateOnlyIgnoresHours(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	store.overrides[res.ID] = []domain.ScheduleEntry{
		domain.OpenEntry(domain.ResourceSchedule(res.ID), time.Monday, domain.NewTimeOfDay(23, 0), domain.NewTimeOfDay(23, 30)),
	}
	r := New(store, store)

	assert.True(t, isOpen(t, r, res, domain.OnDate(monday)).Open)
	assert.False(t, isOpen(t, r, res, domain.OnDate(sunday)).Open)
}

func TestScenario_ResourceTypeHoliday(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	loc := domain.LocationSchedule(res.LocationID)
	week := make([]domain.ScheduleEntry, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		if day == time.Sunday || day == time.Saturday {
			week = append(week, domain.ClosedEntry(loc, day))
			continue
		}
		week = append(week, domain.OpenEntry(loc, day, nine, six))
	}
	store.location[res.LocationID] = week
	store.addClosure(domain.ResourceTypeClosure(res.LocationID, "desk"), newYear, newYear, false)
	r := New(store, store)

	v := isOpen(t, r, res, at(newYear, 10, 0))
	assert.False(t, v.Open)
	assert.Equal(t, domain.BasisClosure, v.Basis)

	v = isOpen(t, r, res, at(thursday, 10, 0))
	assert.True(t, v.Open)
	assert.Equal(t, domain.BasisLocationSchedule, v.Basis)

	v = isOpen(t, r, res, at(saturday, 10, 0))
	assert.False(t, v.Open)
	assert.Equal(t, domain.BasisLocationSchedule, v.Basis)
	assert.Nil(t, v.Reason)
}

func TestScenario_MorningOverride(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	store.location[res.LocationID] = []domain.ScheduleEntry{
		domain.OpenEntry(domain.LocationSchedule(res.LocationID), time.Monday, nine, six),
	}
	store.overrides[res.ID] = []domain.ScheduleEntry{
		domain.OpenEntry(domain.ResourceSchedule(res.ID), time.Monday, domain.NewTimeOfDay(7, 0), domain.NewTimeOfDay(12, 0)),
	}
	r := New(store, store)

	assert.True(t, isOpen(t, r, res, at(monday, 8, 0)).Open)
	assert.False(t, isOpen(t, r, res, at(monday, 14, 0)).Open)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetLocationSchedule(ctx context.Context, partnerID, locationID uuid.UUID) ([]domain.ScheduleEntry, error) {
	args := m.Called(ctx, partnerID, locationID)
	return args.Get(0).([]domain.ScheduleEntry), args.Error(1)
}

func (m *mockStore) GetResourceScheduleOverride(ctx context.Context, partnerID, resourceID uuid.UUID) ([]domain.ScheduleEntry, error) {
	args := m.Called(ctx, partnerID, resourceID)
	return args.Get(0).([]domain.ScheduleEntry), args.Error(1)
}

func (m *mockStore) ListClosuresForLocation(ctx context.Context, partnerID, locationID uuid.UUID) ([]domain.ClosureEntry, error) {
	args := m.Called(ctx, partnerID, locationID)
	return args.Get(0).([]domain.ClosureEntry), args.Error(1)
}

func TestIsOpen_RepositoryErrorsPropagateUnchanged(t *testing.T) {
	boom := errors.New("connection reset by peer")
	res := newResource("desk")
	ctx := context.Background()

	t.Run("closures", func(t *testing.T) {
		m := &mockStore{}
		m.On("ListClosuresForLocation", ctx, res.PartnerID, res.LocationID).Return([]domain.ClosureEntry(nil), boom).Once()

		_, err := New(m, m).IsOpen(ctx, res, at(monday, 10, 0))
		assert.Same(t, boom, err)
		m.AssertExpectations(t)
		m.AssertNotCalled(t, "GetLocationSchedule", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("override", func(t *testing.T) {
		m := &mockStore{}
		m.On("ListClosuresForLocation", ctx, res.PartnerID, res.LocationID).Return([]domain.ClosureEntry{}, nil)
		m.On("GetResourceScheduleOverride", ctx, res.PartnerID, res.ID).Return([]domain.ScheduleEntry(nil), boom).Once()

		_, err := New(m, m).IsOpen(ctx, res, at(monday, 10, 0))
		assert.Same(t, boom, err)
		m.AssertExpectations(t)
	})

	t.Run("location", func(t *testing.T) {
		m := &mockStore{}
		m.On("ListClosuresForLocation", ctx, res.PartnerID, res.LocationID).Return([]domain.ClosureEntry{}, nil)
		m.On("GetResourceScheduleOverride", ctx, res.PartnerID, res.ID).Return([]domain.ScheduleEntry{}, nil)
		m.On("GetLocationSchedule", ctx, res.PartnerID, res.LocationID).Return([]domain.ScheduleEntry(nil), boom).Once()

		_, err := New(m, m).IsOpen(ctx, res, at(monday, 10, 0))
		assert.Same(t, boom, err)
		m.AssertExpectations(t)
	})

	t.Run("calendar", func(t *testing.T) {
		m := &mockStore{}
		m.On("ListClosuresForLocation", ctx, res.PartnerID, res.LocationID).Return([]domain.ClosureEntry(nil), boom).Once()

		_, err := New(m, m).Calendar(ctx, res, monday, tuesday)
		assert.Same(t, boom, err)
	})
}

func TestIsOpen_SkipsLocationWhenOverrideCoversDay(t *testing.T) {
	m := &mockStore{}
	res := newResource("desk")
	ctx := context.Background()
	m.On("ListClosuresForLocation", ctx, res.PartnerID, res.LocationID).Return([]domain.ClosureEntry{}, nil)
	m.On("GetResourceScheduleOverride", ctx, res.PartnerID, res.ID).Return([]domain.ScheduleEntry{
		domain.ClosedEntry(domain.ResourceSchedule(res.ID), time.Monday),
	}, nil)

	v, err := New(m, m).IsOpen(ctx, res, at(monday, 10, 0))
	require.NoError(t, err)
	assert.False(t, v.Open)
	m.AssertNotCalled(t, "GetLocationSchedule", mock.Anything, mock.Anything, mock.Anything)
}

func TestIsOpen_IsDeterministic(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	store.addClosure(domain.ResourceTypeClosure(res.LocationID, "desk"), monday, monday, false)
	r := New(store, store)

	first := isOpen(t, r, res, at(monday, 10, 0))
	for range 10 {
		assert.Equal(t, first, isOpen(t, r, res, at(monday, 10, 0)))
	}
}

func TestObserver(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	obs := &recordingObserver{}
	r := New(store, store).WithObserver(obs)

	isOpen(t, r, res, at(monday, 10, 0))
	isOpen(t, r, res, at(sunday, 10, 0))

	require.Len(t, obs.verdicts, 2)
	assert.True(t, obs.verdicts[0].Open)
	assert.False(t, obs.verdicts[1].Open)
}

func TestEffectiveWeek(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	store.location[res.LocationID] = []domain.ScheduleEntry{
		domain.ClosedEntry(domain.LocationSchedule(res.LocationID), time.Wednesday),
	}
	store.overrides[res.ID] = []domain.ScheduleEntry{
		domain.OpenEntry(domain.ResourceSchedule(res.ID), time.Sunday, nine, six),
	}

	week, err := New(store, store).EffectiveWeek(context.Background(), res)
	require.NoError(t, err)
	require.Len(t, week, 7)

	assert.False(t, week[time.Sunday].IsClosed)
	assert.Equal(t, domain.ScheduleScopeResource, week[time.Sunday].Target.Scope())
	assert.True(t, week[time.Wednesday].IsClosed)
	assert.False(t, week[time.Wednesday].IsDefault)
	assert.True(t, week[time.Saturday].IsClosed)
	assert.True(t, week[time.Saturday].IsDefault)
}

func TestCalendar(t *testing.T) {
	store := newFakeStore()
	res := newResource("desk")
	store.addClosure(domain.LocationClosure(res.LocationID), newYear, newYear, false)
	r := New(store, store)
	ctx := context.Background()

	days, err := r.Calendar(ctx, res, newYear.AddDays(-1), saturday)
	require.NoError(t, err)
	require.Len(t, days, 5)

	wantOpen := []bool{true, false, true, true, false}
	for i, d := range days {
		assert.Equal(t, newYear.AddDays(i-1), d.Date)
		assert.Equal(t, wantOpen[i], d.Open, d.Date.String())

		// every day agrees with a date-only IsOpen
		v := isOpen(t, r, res, domain.OnDate(d.Date))
		assert.Equal(t, v.Open, d.Open)
		assert.Equal(t, v.Basis, d.Basis)
	}
	require.NotNil(t, days[1].Reason)
	assert.NotNil(t, days[2].Hours)

	_, err = r.Calendar(ctx, res, saturday, newYear)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = r.Calendar(ctx, res, newYear, newYear.AddDays(MaxCalendarDays))
	assert.ErrorIs(t, err, ErrInvalidRange)

	days, err = r.Calendar(ctx, res, newYear, newYear.AddDays(MaxCalendarDays-1))
	require.NoError(t, err)
	assert.Len(t, days, MaxCalendarDays)
}

func TestCalendar_ReadsRepositoriesOnce(t *testing.T) {
	m := &mockStore{}
	res := newResource("desk")
	ctx := context.Background()
	m.On("ListClosuresForLocation", ctx, res.PartnerID, res.LocationID).Return([]domain.ClosureEntry{}, nil).Once()
	m.On("GetResourceScheduleOverride", ctx, res.PartnerID, res.ID).Return([]domain.ScheduleEntry{}, nil).Once()
	m.On("GetLocationSchedule", ctx, res.PartnerID, res.LocationID).Return([]domain.ScheduleEntry{}, nil).Once()

	days, err := New(m, m).Calendar(ctx, res, monday, monday.AddDays(29))
	require.NoError(t, err)
	assert.Len(t, days, 30)
	m.AssertExpectations(t)
}
