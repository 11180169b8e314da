package entitlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Day struct {
	Date   time.Time
	Length decimal.Decimal
}

type ReserveRequest struct {
	EmployeeID  string
	LeaveTypeID string
	Days        []Day
	AllowExceed bool
}

type Allocation struct {
	EntitlementID *uuid.UUID
	Date          time.Time
	Length        decimal.Decimal
}

// Result is a successful reservation. Overdraft is the part no entitlement
// covered and is only non-zero when the request allowed exceeding.
type Result struct {
	Allocations []Allocation
	Overdraft   decimal.Decimal
}

func (r *Result) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.Allocations {
		total = total.Add(a.Length)
	}
	return total
}
