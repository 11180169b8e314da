package leave

import (
	"context"
	"time"

	"go-hris-leave/internal/workflow"

	"github.com/shopspring/decimal"
)

const (
	PeriodMorning   = "MORNING"
	PeriodAfternoon = "AFTERNOON"

	dateLayout = "2006-01-02"
)

var (
	lengthFull = decimal.NewFromInt(1)
	lengthHalf = decimal.NewFromFloat(0.5)
)

type Classifier interface {
	Classify(date time.Time) DayType
}

// ApplyResolver is satisfied by *workflow.Resolver.
type ApplyResolver interface {
	ResolveApply(ctx context.Context, flow string, actor workflow.Actor, targetEmployeeID string) (*workflow.Transition, bool)
}

type BuildInput struct {
	Start      time.Time
	End        time.Time
	EmployeeID string
	Actor      workflow.Actor
	// PartialDays maps YYYY-MM-DD to MORNING or AFTERNOON.
	PartialDays map[string]string
}

// BuildLeaves returns one record per calendar day of [Start, End] in order.
// An inverted range yields no records.
func BuildLeaves(ctx context.Context, in BuildInput, classifier Classifier, resolver ApplyResolver) []Leave {
	var days []Leave
	for d := in.Start; !d.After(in.End); d = d.AddDate(0, 0, 1) {
		day := Leave{Date: d}

		switch classifier.Classify(d) {
		case DayWeekend:
			day.Status = StatusWeekend
			day.LengthDays = decimal.Zero
			day.DurationType = DurationNonWorking
		case DayHoliday:
			day.Status = StatusHoliday
			day.LengthDays = decimal.Zero
			day.DurationType = DurationNonWorking
		default:
			day.Status = workdayStatus(ctx, in, resolver)
			day.LengthDays, day.DurationType = workdayLength(in.PartialDays[d.Format(dateLayout)])
		}

		days = append(days, day)
	}
	return days
}

func workdayStatus(ctx context.Context, in BuildInput, resolver ApplyResolver) string {
	t, ok := resolver.ResolveApply(ctx, workflow.FlowLeave, in.Actor, in.EmployeeID)
	if !ok {
		return StatusPendingApproval
	}
	if code, found := LookupStatus(t.ResultingState); found {
		return code
	}
	return StatusPendingApproval
}

func workdayLength(period string) (decimal.Decimal, string) {
	switch period {
	case PeriodMorning:
		return lengthHalf, DurationHalfDayMorning
	case PeriodAfternoon:
		return lengthHalf, DurationHalfDayAfternoon
	default:
		return lengthFull, DurationFullDay
	}
}

func partition(days []Leave) (workdays, nonWorking []Leave) {
	for _, d := range days {
		if d.IsWorkday() {
			workdays = append(workdays, d)
		} else {
			nonWorking = append(nonWorking, d)
		}
	}
	return workdays, nonWorking
}

func totalLength(days []Leave) decimal.Decimal {
	total := decimal.Zero
	for _, d := range days {
		total = total.Add(d.LengthDays)
	}
	return total
}
