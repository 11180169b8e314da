package events

import "time"

const (
	LeaveAppliedTopic     = "hr.leave.applied.v1"
	LeaveAppliedEventType = "leave.applied"
	LeaveRequestAggregate = "leave_request"
)

type LeaveAppliedEvent struct {
	EventType      string    `json:"event_type"`
	LeaveRequestID string    `json:"leave_request_id"`
	ReferenceNo    string    `json:"reference_no"`
	CompanyID      string    `json:"company_id"`
	EmployeeID     string    `json:"employee_id"`
	LeaveTypeID    string    `json:"leave_type_id"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	TotalDays      string    `json:"total_days"`
	Status         string    `json:"status"`
	AppliedBy      string    `json:"applied_by"`
	RequestID      string    `json:"request_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
