package leave

import "strings"

const (
	StatusRejected        = "REJECTED"
	StatusCancelled       = "CANCELLED"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusScheduled       = "SCHEDULED"
	StatusTaken           = "TAKEN"
	StatusWeekend         = "WEEKEND"
	StatusHoliday         = "HOLIDAY"
)

var statusTable = map[string]struct{}{
	StatusRejected:        {},
	StatusCancelled:       {},
	StatusPendingApproval: {},
	StatusScheduled:       {},
	StatusTaken:           {},
	StatusWeekend:         {},
	StatusHoliday:         {},
}

// LookupStatus maps a workflow state name such as "PENDING APPROVAL" to its
// leave status code.
func LookupStatus(name string) (string, bool) {
	code := strings.ToUpper(strings.Join(strings.Fields(name), "_"))
	_, ok := statusTable[code]
	return code, ok
}

// StatusDisplayName renders a status code for people: "Pending approval".
func StatusDisplayName(code string) string {
	s := strings.ToLower(strings.ReplaceAll(code, "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
