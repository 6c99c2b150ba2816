package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/mozillazg/go-pinyin"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
)

var districtNames = []string{
	"徐汇", "静安", "浦东", "天河", "海淀", "朝阳", "南山", "福田", "西湖", "武侯",
}
var buildingNames = []string{
	"创新中心", "科技园", "大厦", "广场", "社区", "空间", "工场", "港",
}

func GenerateRandomLocationName() string {
	district := districtNames[rand.Intn(len(districtNames))]
	building := buildingNames[rand.Intn(len(buildingNames))]
	return fmt.Sprintf("%s%s %d", district, building, rand.Intn(90)+10)
}

// Labels of the resource types every random partner gets.
var ResourceTypeLabels = []string{"工位", "会议室", "电话亭", "Private Office"}

// ResourceTypeCode derives a type code from a display label. Han characters become their
// pinyin, ASCII letters and digits are lowercased, everything else turns into a single
// underscore: "会议室" -> "huiyishi", "Private Office" -> "private_office".
func ResourceTypeCode(label string) string {
	var b strings.Builder
	pendingSep := false

	write := func(s string) {
		if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
		b.WriteString(s)
	}

	for _, r := range label {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			write(string(unicode.ToLower(r)))
		case unicode.Is(unicode.Han, r):
			syllables := pinyin.LazyConvert(string(r), nil)
			if len(syllables) == 0 {
				pendingSep = true
				continue
			}
			write(syllables[0])
		default:
			pendingSep = true
		}
	}
	return b.String()
}

func GenerateRandomResourceName(label string, n int) string {
	return fmt.Sprintf("%s %02d", label, n)
}

// GenerateRandomLocationWeek returns a full week: weekdays open with a random start
// between 07:00 and 09:30 and a random end between 17:00 and 22:00, Sunday closed and
// Saturday open half of the time.
func GenerateRandomLocationWeek(locationID uuid.UUID) []domain.ScheduleEntry {
	target := domain.LocationSchedule(locationID)
	week := make([]domain.ScheduleEntry, 0, 7)

	for day := time.Sunday; day <= time.Saturday; day++ {
		switch {
		case day == time.Sunday, day == time.Saturday && rand.Intn(2) == 0:
			week = append(week, domain.ClosedEntry(target, day))
		default:
			week = append(week, domain.OpenEntry(target, day, randomOpening(), randomClosing()))
		}
	}
	return week
}

// GenerateRandomOverride returns up to three override days for a resource.
func GenerateRandomOverride(resourceID uuid.UUID) []domain.ScheduleEntry {
	target := domain.ResourceSchedule(resourceID)
	days := GenerateRandomDays(rand.Intn(4))

	entries := make([]domain.ScheduleEntry, 0, len(days))
	for _, day := range days {
		if rand.Intn(3) == 0 {
			entries = append(entries, domain.ClosedEntry(target, day))
			continue
		}
		entries = append(entries, domain.OpenEntry(target, day, randomOpening(), randomClosing()))
	}
	return entries
}

// GenerateRandomDays picks n distinct weekdays with a Fisher-Yates shuffle.
func GenerateRandomDays(n int) []time.Weekday {
	days := []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	if n > len(days) {
		n = len(days)
	}
	return days[:n]
}

var closureReasons = map[domain.ClosureType][]string{
	domain.ClosureTypeHoliday:      {"Public holiday", "Spring Festival"},
	domain.ClosureTypeMaintenance:  {"HVAC service", "Network upgrade", "Deep cleaning"},
	domain.ClosureTypeSpecialEvent: {"Community meetup", "Private booking"},
	domain.ClosureTypeEmergency:    {"Power outage"},
	domain.ClosureTypeCustom:       {"Team offsite"},
}

var closureTypes = []domain.ClosureType{
	domain.ClosureTypeHoliday,
	domain.ClosureTypeMaintenance,
	domain.ClosureTypeSpecialEvent,
	domain.ClosureTypeEmergency,
	domain.ClosureTypeCustom,
}

// GenerateRandomClosure returns a one to five day closure of target starting within the
// next 60 days of from. Holidays recur every year.
func GenerateRandomClosure(partnerID uuid.UUID, target domain.ClosureTarget, from domain.Date) *domain.ClosureEntry {
	ct := closureTypes[rand.Intn(len(closureTypes))]
	reasons := closureReasons[ct]
	start := from.AddDays(rand.Intn(60))

	return &domain.ClosureEntry{
		PartnerID:   partnerID,
		Target:      target,
		StartDate:   start,
		EndDate:     start.AddDays(rand.Intn(5)),
		Type:        ct,
		IsRecurring: ct == domain.ClosureTypeHoliday,
		Reason:      reasons[rand.Intn(len(reasons))],
	}
}

func randomOpening() domain.TimeOfDay {
	return domain.NewTimeOfDay(7, 0) + domain.TimeOfDay(rand.Intn(6)*30*60) // 07:00~09:30
}

func randomClosing() domain.TimeOfDay {
	return domain.NewTimeOfDay(17, 0) + domain.TimeOfDay(rand.Intn(11)*30*60) // 17:00~22:00
}
