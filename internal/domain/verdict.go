package domain

// VerdictBasis names the layer that decided a verdict.
type VerdictBasis string

const (
	BasisClosure          VerdictBasis = "closure"
	BasisResourceSchedule VerdictBasis = "resource_schedule"
	BasisLocationSchedule VerdictBasis = "location_schedule"
	BasisDefault          VerdictBasis = "default"
)

// Verdict is the resolved answer to "is this resource open at this instant".
// Reason is set only when a closure decided it.
type Verdict struct {
	Open   bool           `json:"open"`
	Reason *ClosureEntry  `json:"reason"`
	Basis  VerdictBasis   `json:"basis"`
	Hours  *ScheduleEntry `json:"hours,omitempty"`
}

type DayAvailability struct {
	Date   Date           `json:"date"`
	Open   bool           `json:"open"`
	Reason *ClosureEntry  `json:"reason"`
	Basis  VerdictBasis   `json:"basis"`
	Hours  *ScheduleEntry `json:"hours,omitempty"`
}
