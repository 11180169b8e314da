package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor is the authenticated caller, taken from verified token claims.
type Actor struct {
	UserID     uuid.UUID
	EmployeeID uuid.UUID
	CompanyID  uuid.UUID
}

type PartialDayRequest struct {
	Date   string `json:"date" binding:"required,datetime=2006-01-02"`
	Period string `json:"period" binding:"required,oneof=MORNING AFTERNOON"`
}

// ApplyLeaveRequest omits employee_id when employees apply for themselves.
type ApplyLeaveRequest struct {
	EmployeeID  string              `json:"employee_id" binding:"omitempty,uuid"`
	LeaveTypeID string              `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string              `json:"start_date" binding:"required"`
	EndDate     string              `json:"end_date" binding:"required"`
	PartialDays []PartialDayRequest `json:"partial_days" binding:"omitempty,dive"`
	Comment     string              `json:"comment" binding:"max=2000"`
}

type LeaveDayResponse struct {
	Date         string          `json:"date"`
	Status       string          `json:"status"`
	StatusName   string          `json:"status_name"`
	LengthDays   decimal.Decimal `json:"length_days"`
	DurationType string          `json:"duration_type"`
}

type LeaveCommentResponse struct {
	ID                  string    `json:"id"`
	Comment             string    `json:"comment"`
	CreatedByUserID     string    `json:"created_by_user_id"`
	CreatedByEmployeeID string    `json:"created_by_employee_id"`
	CreatedAt           time.Time `json:"created_at"`
}

type LeaveRequestResponse struct {
	ID            string                 `json:"id"`
	CompanyID     string                 `json:"company_id"`
	EmployeeID    string                 `json:"employee_id"`
	LeaveTypeID   string                 `json:"leave_type_id"`
	LeaveTypeName string                 `json:"leave_type_name,omitempty"`
	ReferenceNo   string                 `json:"reference_no"`
	StartDate     string                 `json:"start_date"`
	EndDate       string                 `json:"end_date"`
	TotalDays     decimal.Decimal        `json:"total_days"`
	Comment       *string                `json:"comment,omitempty"`
	Days          []LeaveDayResponse     `json:"days"`
	Comments      []LeaveCommentResponse `json:"comments"`
	CreatedBy     string                 `json:"created_by"`
	CreatedAt     time.Time              `json:"created_at"`
}
