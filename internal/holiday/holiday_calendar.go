package holiday

import "time"

const (
	dateLayout     = "2006-01-02"
	monthDayLayout = "01-02"
)

// Calendar is an immutable holiday snapshot for one company. Lookups do no I/O.
type Calendar struct {
	exact     map[string]Holiday
	recurring map[string]Holiday
}

func NewCalendar(holidays []Holiday) *Calendar {
	c := &Calendar{
		exact:     make(map[string]Holiday, len(holidays)),
		recurring: make(map[string]Holiday),
	}
	for _, h := range holidays {
		if h.Recurring {
			c.recurring[h.Date.Format(monthDayLayout)] = h
			continue
		}
		c.exact[h.Date.Format(dateLayout)] = h
	}
	return c
}

func (c *Calendar) Lookup(date time.Time) (Holiday, bool) {
	if c == nil {
		return Holiday{}, false
	}
	if h, ok := c.exact[date.Format(dateLayout)]; ok {
		return h, true
	}
	h, ok := c.recurring[date.Format(monthDayLayout)]
	return h, ok
}

func (c *Calendar) IsHoliday(date time.Time) bool {
	_, ok := c.Lookup(date)
	return ok
}
