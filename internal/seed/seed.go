// Package seed loads demo partners, their locations and operating hours from a YAML fixture.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
	"github.com/spacehub-dev/operating-schedule/backend/internal/utils"
	"gopkg.in/yaml.v3"
)

// Store is the write side of the repository the loader needs.
type Store interface {
	CreatePartner(ctx context.Context, p *domain.Partner) error
	UpsertResourceType(ctx context.Context, rt *domain.ResourceType) error
	CreateLocation(ctx context.Context, l *domain.Location) error
	CreateResource(ctx context.Context, res *domain.Resource) error
	ReplaceLocationSchedule(ctx context.Context, partnerID, locationID uuid.UUID, entries []domain.ScheduleEntry) error
	ReplaceResourceSchedule(ctx context.Context, partnerID, resourceID uuid.UUID, entries []domain.ScheduleEntry) error
	CreateClosure(ctx context.Context, c *domain.ClosureEntry) error
}

type Fixture struct {
	Partners []PartnerFixture `yaml:"partners"`
}

type PartnerFixture struct {
	Name          string                `yaml:"name"`
	ResourceTypes []ResourceTypeFixture `yaml:"resourceTypes"`
	Locations     []LocationFixture     `yaml:"locations"`
}

// ResourceTypeFixture derives Code from Label when it is left empty.
type ResourceTypeFixture struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
}

// LocationFixture leaves days missing from Schedule on the default policy. An empty
// Schedule stores nothing.
type LocationFixture struct {
	Name      string            `yaml:"name"`
	Address   string            `yaml:"address"`
	Schedule  []DayFixture      `yaml:"schedule"`
	Resources []ResourceFixture `yaml:"resources"`
	Closures  []ClosureFixture  `yaml:"closures"`
}

type ResourceFixture struct {
	Name     string       `yaml:"name"`
	Type     string       `yaml:"type"`
	Schedule []DayFixture `yaml:"schedule"`
}

type DayFixture struct {
	Day    int    `yaml:"day"`
	Closed bool   `yaml:"closed"`
	Open   string `yaml:"open"`
	Close  string `yaml:"close"`
}

// ClosureFixture targets its location unless ResourceType or Resource is set. Resource
// refers to a resource of the same location by name.
type ClosureFixture struct {
	ResourceType string `yaml:"resourceType"`
	Resource     string `yaml:"resource"`
	Start        string `yaml:"start"`
	End          string `yaml:"end"`
	Type         string `yaml:"type"`
	Recurring    bool   `yaml:"recurring"`
	Reason       string `yaml:"reason"`
}

// Summary counts what Load wrote.
type Summary struct {
	Partners  []uuid.UUID
	Locations int
	Resources int
	Closures  int
}

func Parse(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Load writes the fixture through store, stopping at the first error.
func Load(ctx context.Context, store Store, f *Fixture) (*Summary, error) {
	sum := &Summary{}
	for _, pf := range f.Partners {
		partner := &domain.Partner{Name: pf.Name}
		if err := store.CreatePartner(ctx, partner); err != nil {
			return sum, fmt.Errorf("partner %q: %w", pf.Name, err)
		}
		sum.Partners = append(sum.Partners, partner.ID)

		for _, rtf := range pf.ResourceTypes {
			code := rtf.Code
			if code == "" {
				code = utils.ResourceTypeCode(rtf.Label)
			}
			rt := &domain.ResourceType{PartnerID: partner.ID, Code: code, Label: rtf.Label}
			if err := store.UpsertResourceType(ctx, rt); err != nil {
				return sum, fmt.Errorf("resource type %q: %w", rtf.Label, err)
			}
		}

		for _, lf := range pf.Locations {
			if err := loadLocation(ctx, store, partner.ID, lf, sum); err != nil {
				return sum, fmt.Errorf("location %q: %w", lf.Name, err)
			}
		}

		slog.Info("partner seeded", slog.String("partner_id", partner.ID.String()), slog.String("name", partner.Name))
	}
	return sum, nil
}

func loadLocation(ctx context.Context, store Store, partnerID uuid.UUID, lf LocationFixture, sum *Summary) error {
	loc := &domain.Location{PartnerID: partnerID, Name: lf.Name, Address: lf.Address}
	if err := store.CreateLocation(ctx, loc); err != nil {
		return err
	}
	sum.Locations++

	if len(lf.Schedule) > 0 {
		target := domain.LocationSchedule(loc.ID)
		entries, err := scheduleEntries(target, lf.Schedule)
		if err != nil {
			return err
		}
		// locations always store a full week
		week := domain.CompleteWeek(target, entries)
		for i := range week {
			week[i].IsDefault = false
		}
		if err := store.ReplaceLocationSchedule(ctx, partnerID, loc.ID, week); err != nil {
			return err
		}
	}

	byName := make(map[string]uuid.UUID, len(lf.Resources))
	for _, rf := range lf.Resources {
		res := &domain.Resource{PartnerID: partnerID, LocationID: loc.ID, Name: rf.Name, Type: rf.Type}
		if err := store.CreateResource(ctx, res); err != nil {
			return fmt.Errorf("resource %q: %w", rf.Name, err)
		}
		byName[rf.Name] = res.ID
		sum.Resources++

		if len(rf.Schedule) == 0 {
			continue
		}
		entries, err := scheduleEntries(domain.ResourceSchedule(res.ID), rf.Schedule)
		if err != nil {
			return fmt.Errorf("resource %q: %w", rf.Name, err)
		}
		if err := store.ReplaceResourceSchedule(ctx, partnerID, res.ID, entries); err != nil {
			return fmt.Errorf("resource %q: %w", rf.Name, err)
		}
	}

	for i, cf := range lf.Closures {
		c, err := closureEntry(partnerID, loc.ID, byName, cf)
		if err != nil {
			return fmt.Errorf("closure %d: %w", i, err)
		}
		if err := store.CreateClosure(ctx, c); err != nil {
			return fmt.Errorf("closure %d: %w", i, err)
		}
		sum.Closures++
	}
	return nil
}

func scheduleEntries(target domain.ScheduleTarget, days []DayFixture) ([]domain.ScheduleEntry, error) {
	rows := make([]utils.ScheduleRow, 0, len(days))
	for _, d := range days {
		day := d.Day
		rows = append(rows, utils.ScheduleRow{DayOfWeek: &day, IsClosed: d.Closed, OpenTime: d.Open, CloseTime: d.Close})
	}
	return utils.ScheduleEntries(target, rows)
}

func closureEntry(partnerID, locationID uuid.UUID, resources map[string]uuid.UUID, cf ClosureFixture) (*domain.ClosureEntry, error) {
	var target domain.ClosureTarget
	switch {
	case cf.Resource != "" && cf.ResourceType != "":
		return nil, fmt.Errorf("%w: resource and resourceType are exclusive", domain.ErrInvalidClosure)
	case cf.Resource != "":
		id, ok := resources[cf.Resource]
		if !ok {
			return nil, fmt.Errorf("%w: unknown resource %q", domain.ErrInvalidClosure, cf.Resource)
		}
		target = domain.ResourceClosure(id)
	case cf.ResourceType != "":
		target = domain.ResourceTypeClosure(locationID, cf.ResourceType)
	default:
		target = domain.LocationClosure(locationID)
	}

	start, end, err := utils.DateRange(cf.Start, cf.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidClosure, err)
	}
	ct := domain.ClosureType(cf.Type)
	if ct == "" {
		ct = domain.ClosureTypeCustom
	}

	return &domain.ClosureEntry{
		PartnerID:   partnerID,
		Target:      target,
		StartDate:   start,
		EndDate:     end,
		Type:        ct,
		IsRecurring: cf.Recurring,
		Reason:      cf.Reason,
	}, nil
}
