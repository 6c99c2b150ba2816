package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
)

// MemoryRepository keeps everything in process. It honours the same contract as
// Repository and backs DATABASE_DRIVER=memory and the tests.
type MemoryRepository struct {
	mu sync.RWMutex

	partners      map[uuid.UUID]domain.Partner
	locations     map[uuid.UUID]domain.Location
	resourceTypes map[uuid.UUID]map[string]domain.ResourceType // partnerID -> code -> type
	resources     map[uuid.UUID]domain.Resource
	locationWeeks map[uuid.UUID][]domain.ScheduleEntry
	overrides     map[uuid.UUID][]domain.ScheduleEntry
	closures      map[uuid.UUID]domain.ClosureEntry

	now func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		partners:      make(map[uuid.UUID]domain.Partner),
		locations:     make(map[uuid.UUID]domain.Location),
		resourceTypes: make(map[uuid.UUID]map[string]domain.ResourceType),
		resources:     make(map[uuid.UUID]domain.Resource),
		locationWeeks: make(map[uuid.UUID][]domain.ScheduleEntry),
		overrides:     make(map[uuid.UUID][]domain.ScheduleEntry),
		closures:      make(map[uuid.UUID]domain.ClosureEntry),
		now:           time.Now,
	}
}

func (m *MemoryRepository) CreatePartner(_ context.Context, p *domain.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = uuid.New()
	p.CreatedAt = m.now()
	m.partners[p.ID] = *p
	return nil
}

func (m *MemoryRepository) CreateLocation(_ context.Context, l *domain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.partners[l.PartnerID]; !ok {
		return domain.ErrUnknownPartner
	}

	for _, existing := range m.locations {
		if existing.PartnerID == l.PartnerID && existing.Name == l.Name {
			return fmt.Errorf("%w: location name", domain.ErrDuplicate)
		}
	}

	l.ID = uuid.New()
	l.CreatedAt = m.now()
	m.locations[l.ID] = *l
	return nil
}

func (m *MemoryRepository) GetLocation(_ context.Context, partnerID, id uuid.UUID) (*domain.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.locations[id]
	if !ok || l.PartnerID != partnerID {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (m *MemoryRepository) ListLocations(_ context.Context, partnerID uuid.UUID) ([]*domain.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	locations := make([]*domain.Location, 0)
	for _, l := range m.locations {
		if l.PartnerID == partnerID {
			locations = append(locations, &l)
		}
	}
	slices.SortFunc(locations, func(a, b *domain.Location) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return locations, nil
}

func (m *MemoryRepository) UpsertResourceType(_ context.Context, rt *domain.ResourceType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.partners[rt.PartnerID]; !ok {
		return domain.ErrUnknownPartner
	}

	types, ok := m.resourceTypes[rt.PartnerID]
	if !ok {
		types = make(map[string]domain.ResourceType)
		m.resourceTypes[rt.PartnerID] = types
	}
	types[rt.Code] = *rt
	return nil
}

func (m *MemoryRepository) ListResourceTypes(_ context.Context, partnerID uuid.UUID) ([]*domain.ResourceType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	types := make([]*domain.ResourceType, 0, len(m.resourceTypes[partnerID]))
	for _, rt := range m.resourceTypes[partnerID] {
		types = append(types, &rt)
	}
	slices.SortFunc(types, func(a, b *domain.ResourceType) int {
		return strings.Compare(a.Code, b.Code)
	})
	return types, nil
}

func (m *MemoryRepository) CreateResource(_ context.Context, res *domain.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.locations[res.LocationID]; !ok || l.PartnerID != res.PartnerID {
		return fmt.Errorf("%w: unknown location", domain.ErrInvalidResource)
	}
	if _, ok := m.resourceTypes[res.PartnerID][res.Type]; !ok {
		return fmt.Errorf("%w: unknown resource type", domain.ErrInvalidResource)
	}

	res.ID = uuid.New()
	res.CreatedAt = m.now()
	m.resources[res.ID] = *res
	return nil
}

func (m *MemoryRepository) GetResource(_ context.Context, partnerID, id uuid.UUID) (*domain.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res, ok := m.resources[id]
	if !ok || res.PartnerID != partnerID {
		return nil, domain.ErrNotFound
	}
	return &res, nil
}

func (m *MemoryRepository) ListResourcesByLocation(_ context.Context, partnerID, locationID uuid.UUID) ([]*domain.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resources := make([]*domain.Resource, 0)
	for _, res := range m.resources {
		if res.PartnerID == partnerID && res.LocationID == locationID {
			resources = append(resources, &res)
		}
	}
	slices.SortFunc(resources, func(a, b *domain.Resource) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return resources, nil
}

func (m *MemoryRepository) GetLocationSchedule(_ context.Context, partnerID, locationID uuid.UUID) ([]domain.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stored []domain.ScheduleEntry
	if l, ok := m.locations[locationID]; ok && l.PartnerID == partnerID {
		stored = m.locationWeeks[locationID]
	}
	return domain.CompleteWeek(domain.LocationSchedule(locationID), stored), nil
}

func (m *MemoryRepository) GetResourceScheduleOverride(_ context.Context, partnerID, resourceID uuid.UUID) ([]domain.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if res, ok := m.resources[resourceID]; !ok || res.PartnerID != partnerID {
		return []domain.ScheduleEntry{}, nil
	}
	return slices.Clone(m.overrides[resourceID]), nil
}

func (m *MemoryRepository) ReplaceLocationSchedule(_ context.Context, partnerID, locationID uuid.UUID, entries []domain.ScheduleEntry) error {
	if err := domain.ValidateWeek(entries, true); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.locations[locationID]; !ok || l.PartnerID != partnerID {
		return domain.ErrNotFound
	}
	m.locationWeeks[locationID] = storedWeek(domain.LocationSchedule(locationID), entries)
	return nil
}

func (m *MemoryRepository) ReplaceResourceSchedule(_ context.Context, partnerID, resourceID uuid.UUID, entries []domain.ScheduleEntry) error {
	if err := domain.ValidateWeek(entries, false); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if res, ok := m.resources[resourceID]; !ok || res.PartnerID != partnerID {
		return domain.ErrNotFound
	}
	m.overrides[resourceID] = storedWeek(domain.ResourceSchedule(resourceID), entries)
	return nil
}

// storedWeek mirrors what a row round trip does: the target is taken from the key and
// entries come back ordered by weekday.
func storedWeek(target domain.ScheduleTarget, entries []domain.ScheduleEntry) []domain.ScheduleEntry {
	out := make([]domain.ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		e.Target = target
		e.IsDefault = false
		if e.IsClosed {
			e.OpenTime, e.CloseTime = nil, nil
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.ScheduleEntry) int {
		return int(a.DayOfWeek) - int(b.DayOfWeek)
	})
	return out
}

func (m *MemoryRepository) ListClosuresForLocation(_ context.Context, partnerID, locationID uuid.UUID) ([]domain.ClosureEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	closures := make([]domain.ClosureEntry, 0)
	for _, c := range m.closures {
		if c.PartnerID != partnerID {
			continue
		}
		switch c.Target.Scope() {
		case domain.ClosureScopeLocation, domain.ClosureScopeResourceType:
			if c.Target.LocationID() != locationID {
				continue
			}
		case domain.ClosureScopeResource:
			res, ok := m.resources[c.Target.ResourceID()]
			if !ok || res.LocationID != locationID {
				continue
			}
		}
		closures = append(closures, c)
	}
	slices.SortFunc(closures, func(a, b domain.ClosureEntry) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return closures, nil
}

func (m *MemoryRepository) GetClosure(_ context.Context, partnerID, id uuid.UUID) (*domain.ClosureEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.closures[id]
	if !ok || c.PartnerID != partnerID {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *MemoryRepository) CreateClosure(_ context.Context, c *domain.ClosureEntry) error {
	if err := c.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkClosureTarget(c.PartnerID, c.Target); err != nil {
		return err
	}

	c.ID = uuid.New()
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt
	c.Normalize()
	m.closures[c.ID] = *c
	return nil
}

func (m *MemoryRepository) UpdateClosure(_ context.Context, c *domain.ClosureEntry) error {
	if err := c.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.closures[c.ID]
	if !ok || existing.PartnerID != c.PartnerID {
		return domain.ErrNotFound
	}
	if err := m.checkClosureTarget(c.PartnerID, c.Target); err != nil {
		return err
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = m.now()
	c.Normalize()
	m.closures[c.ID] = *c
	return nil
}

func (m *MemoryRepository) DeleteClosure(_ context.Context, partnerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.closures[id]
	if !ok || c.PartnerID != partnerID {
		return domain.ErrNotFound
	}
	delete(m.closures, id)
	return nil
}

func (m *MemoryRepository) checkClosureTarget(partnerID uuid.UUID, t domain.ClosureTarget) error {
	switch t.Scope() {
	case domain.ClosureScopeLocation, domain.ClosureScopeResourceType:
		if l, ok := m.locations[t.LocationID()]; !ok || l.PartnerID != partnerID {
			return fmt.Errorf("%w: location %s not found", domain.ErrInvalidClosure, t.LocationID())
		}
		if t.Scope() == domain.ClosureScopeResourceType {
			if _, ok := m.resourceTypes[partnerID][t.ResourceType()]; !ok {
				return fmt.Errorf("%w: resource type %q not found", domain.ErrInvalidClosure, t.ResourceType())
			}
		}
	case domain.ClosureScopeResource:
		if res, ok := m.resources[t.ResourceID()]; !ok || res.PartnerID != partnerID {
			return fmt.Errorf("%w: resource %s not found", domain.ErrInvalidClosure, t.ResourceID())
		}
	}
	return nil
}
