package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ClosureScope string

const (
	ClosureScopeLocation     ClosureScope = "location"
	ClosureScopeResourceType ClosureScope = "resource_type"
	ClosureScopeResource     ClosureScope = "resource"
)

// ClosureType is informational only and never affects resolution.
type ClosureType string

const (
	ClosureTypeHoliday      ClosureType = "holiday"
	ClosureTypeMaintenance  ClosureType = "maintenance"
	ClosureTypeSpecialEvent ClosureType = "special_event"
	ClosureTypeEmergency    ClosureType = "emergency"
	ClosureTypeCustom       ClosureType = "custom"
)

func (t ClosureType) Valid() bool {
	switch t {
	case ClosureTypeHoliday, ClosureTypeMaintenance, ClosureTypeSpecialEvent, ClosureTypeEmergency, ClosureTypeCustom:
		return true
	}
	return false
}

// ClosureTarget selects what a closure applies to. Only the constructors can build one,
// so a target always carries exactly the fields its scope needs.
type ClosureTarget struct {
	scope        ClosureScope
	locationID   uuid.UUID
	resourceType string
	resourceID   uuid.UUID
}

func LocationClosure(locationID uuid.UUID) ClosureTarget {
	return ClosureTarget{scope: ClosureScopeLocation, locationID: locationID}
}

func ResourceTypeClosure(locationID uuid.UUID, resourceType string) ClosureTarget {
	return ClosureTarget{scope: ClosureScopeResourceType, locationID: locationID, resourceType: resourceType}
}

func ResourceClosure(resourceID uuid.UUID) ClosureTarget {
	return ClosureTarget{scope: ClosureScopeResource, resourceID: resourceID}
}

// NewClosureTarget builds a target from loosely typed input, such as nullable row columns
// or a request body, rejecting any combination of fields that does not match scope.
func NewClosureTarget(scope ClosureScope, locationID uuid.UUID, resourceType string, resourceID uuid.UUID) (ClosureTarget, error) {
	hasLocation := locationID != uuid.Nil
	hasType := resourceType != ""
	hasResource := resourceID != uuid.Nil

	switch scope {
	case ClosureScopeLocation:
		if hasLocation && !hasType && !hasResource {
			return LocationClosure(locationID), nil
		}
		return ClosureTarget{}, fmt.Errorf("%w: location scope takes only a location id", ErrInvalidClosure)
	case ClosureScopeResourceType:
		if hasLocation && hasType && !hasResource {
			return ResourceTypeClosure(locationID, resourceType), nil
		}
		return ClosureTarget{}, fmt.Errorf("%w: resource_type scope takes a location id and a resource type only", ErrInvalidClosure)
	case ClosureScopeResource:
		if hasResource && !hasLocation && !hasType {
			return ResourceClosure(resourceID), nil
		}
		return ClosureTarget{}, fmt.Errorf("%w: resource scope takes only a resource id", ErrInvalidClosure)
	default:
		return ClosureTarget{}, fmt.Errorf("%w: unknown scope %q", ErrInvalidClosure, scope)
	}
}

func (t ClosureTarget) Scope() ClosureScope   { return t.scope }
func (t ClosureTarget) LocationID() uuid.UUID { return t.locationID }
func (t ClosureTarget) ResourceType() string  { return t.resourceType }
func (t ClosureTarget) ResourceID() uuid.UUID { return t.resourceID }
func (t ClosureTarget) IsZero() bool          { return t.scope == "" }

// AppliesTo reports whether the closure targets r. The resource type is compared with
// r's current type.
func (t ClosureTarget) AppliesTo(r Resource) bool {
	switch t.scope {
	case ClosureScopeResource:
		return t.resourceID == r.ID
	case ClosureScopeResourceType:
		return t.locationID == r.LocationID && t.resourceType == r.Type
	case ClosureScopeLocation:
		return t.locationID == r.LocationID
	}
	return false
}

// Specificity orders scopes when several closures match: resource > resource_type > location.
func (t ClosureTarget) Specificity() int {
	switch t.scope {
	case ClosureScopeResource:
		return 3
	case ClosureScopeResourceType:
		return 2
	case ClosureScopeLocation:
		return 1
	}
	return 0
}

type closureTargetJSON struct {
	Scope        ClosureScope `json:"scope"`
	LocationID   *uuid.UUID   `json:"locationId,omitempty"`
	ResourceType string       `json:"resourceType,omitempty"`
	ResourceID   *uuid.UUID   `json:"resourceId,omitempty"`
}

func (t ClosureTarget) MarshalJSON() ([]byte, error) {
	out := closureTargetJSON{Scope: t.scope, ResourceType: t.resourceType}
	if t.locationID != uuid.Nil {
		id := t.locationID
		out.LocationID = &id
	}
	if t.resourceID != uuid.Nil {
		id := t.resourceID
		out.ResourceID = &id
	}
	return json.Marshal(out)
}

func (t *ClosureTarget) UnmarshalJSON(data []byte) error {
	var in closureTargetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var locationID, resourceID uuid.UUID
	if in.LocationID != nil {
		locationID = *in.LocationID
	}
	if in.ResourceID != nil {
		resourceID = *in.ResourceID
	}
	target, err := NewClosureTarget(in.Scope, locationID, in.ResourceType, resourceID)
	if err != nil {
		return err
	}
	*t = target
	return nil
}

// ClosurePeriod answers whether a closure is in effect on a given date.
type ClosurePeriod interface {
	Covers(d Date) bool
}

// DateRange is an inclusive one-off range.
type DateRange struct {
	Start Date
	End   Date
}

func (r DateRange) Covers(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// AnnualRange is an inclusive month/day range repeating every year. When Start is later
// in the year than End the range wraps over New Year: [Start..Dec 31] and [Jan 1..End].
type AnnualRange struct {
	Start MonthDay
	End   MonthDay
}

func (r AnnualRange) Covers(d Date) bool {
	md := d.MonthDay()
	start, end := r.Start.In(d.Year), r.End.In(d.Year)
	if r.Start.Compare(r.End) > 0 {
		return md.Compare(start) >= 0 || md.Compare(end) <= 0
	}
	return md.Compare(start) >= 0 && md.Compare(end) <= 0
}

// ClosureEntry is a date-range override evaluated before any weekly schedule.
type ClosureEntry struct {
	ID          uuid.UUID     `json:"id"`
	PartnerID   uuid.UUID     `json:"partnerId"`
	Target      ClosureTarget `json:"target"`
	StartDate   Date          `json:"startDate"`
	EndDate     Date          `json:"endDate"`
	Type        ClosureType   `json:"closureType"`
	IsRecurring bool          `json:"isRecurring"`
	Reason      string        `json:"reason,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	period ClosurePeriod
}

// Normalize converts the stored dates into the period used for matching. Recurring
// closures drop the stored year here, once, instead of on every resolve.
func (c *ClosureEntry) Normalize() {
	c.period = c.buildPeriod()
}

func (c ClosureEntry) Period() ClosurePeriod {
	if c.period != nil {
		return c.period
	}
	return c.buildPeriod()
}

func (c ClosureEntry) buildPeriod() ClosurePeriod {
	if c.IsRecurring {
		return AnnualRange{Start: c.StartDate.MonthDay(), End: c.EndDate.MonthDay()}
	}
	return DateRange{Start: c.StartDate, End: c.EndDate}
}

func (c ClosureEntry) Covers(d Date) bool {
	return c.Period().Covers(d)
}

func (c ClosureEntry) Validate() error {
	if c.Target.IsZero() {
		return fmt.Errorf("%w: missing scope", ErrInvalidClosure)
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end date are required", ErrInvalidClosure)
	}
	if c.StartDate.After(c.EndDate) {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidClosure, c.StartDate, c.EndDate)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: unknown closure type %q", ErrInvalidClosure, c.Type)
	}
	if c.IsRecurring && !c.EndDate.Time().Before(c.StartDate.Time().AddDate(1, 0, 0)) {
		return fmt.Errorf("%w: a recurring closure must span less than one year", ErrInvalidClosure)
	}
	return nil
}
