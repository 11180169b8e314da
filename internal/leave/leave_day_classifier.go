package leave

import (
	"fmt"
	"strings"
	"time"
)

type DayType string

const (
	DayWorkday DayType = "WORKDAY"
	DayWeekend DayType = "WEEKEND"
	DayHoliday DayType = "HOLIDAY"
)

// HolidayLookup is satisfied by *holiday.Calendar.
type HolidayLookup interface {
	IsHoliday(date time.Time) bool
}

var DefaultWeekend = []time.Weekday{time.Saturday, time.Sunday}

type DayClassifier struct {
	weekend  map[time.Weekday]struct{}
	holidays HolidayLookup
}

func NewDayClassifier(weekend []time.Weekday, holidays HolidayLookup) *DayClassifier {
	set := make(map[time.Weekday]struct{}, len(weekend))
	for _, d := range weekend {
		set[d] = struct{}{}
	}
	return &DayClassifier{weekend: set, holidays: holidays}
}

// Classify checks the weekend first and lets a holiday override it, so a
// holiday falling on a Saturday is reported as HOLIDAY.
func (c *DayClassifier) Classify(date time.Time) DayType {
	dayType := DayWorkday
	if _, ok := c.weekend[date.Weekday()]; ok {
		dayType = DayWeekend
	}
	if c.holidays != nil && c.holidays.IsHoliday(date) {
		dayType = DayHoliday
	}
	return dayType
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdays accepts names like "Sat", "saturday" or "SUN".
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if len(name) < 3 {
			return nil, fmt.Errorf("unknown weekday %q", raw)
		}
		d, ok := weekdayNames[name[:3]]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", raw)
		}
		out = append(out, d)
	}
	return out, nil
}
