package consumer

import (
	"context"

	"go-hris-leave/internal/events"

	"go.uber.org/zap"
)

// Notifier tells interested parties (approvers, the applicant) that a leave
// request was applied.
type Notifier interface {
	NotifyLeaveApplied(ctx context.Context, event events.LeaveAppliedEvent) error
}

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

func (n *LogNotifier) NotifyLeaveApplied(ctx context.Context, event events.LeaveAppliedEvent) error {
	n.logger.Info("leave applied notification",
		zap.String("leave_request_id", event.LeaveRequestID),
		zap.String("reference_no", event.ReferenceNo),
		zap.String("company_id", event.CompanyID),
		zap.String("employee_id", event.EmployeeID),
		zap.String("start_date", event.StartDate),
		zap.String("end_date", event.EndDate),
		zap.String("total_days", event.TotalDays),
		zap.String("status", event.Status),
	)
	return nil
}
