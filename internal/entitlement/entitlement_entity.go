package entitlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Entitlement is a block of leave days granted to an employee for one leave
// type, usable on dates inside [FromDate, ToDate].
type Entitlement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	EmployeeID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_entitlements_employee_type" json:"employee_id"`
	LeaveTypeID uuid.UUID       `gorm:"type:uuid;not null;index:idx_entitlements_employee_type" json:"leave_type_id"`
	FromDate    time.Time       `gorm:"type:date;not null" json:"from_date"`
	ToDate      time.Time       `gorm:"type:date;not null" json:"to_date"`
	NoOfDays    decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"no_of_days"`
	DaysUsed    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"days_used"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Entitlement) TableName() string {
	return "leave_entitlements"
}

func (e Entitlement) Remaining() decimal.Decimal {
	return e.NoOfDays.Sub(e.DaysUsed)
}

func (e Entitlement) Covers(date time.Time) bool {
	return !date.Before(e.FromDate) && !date.After(e.ToDate)
}

// Usage links a persisted leave day to the entitlement it consumed. A nil
// EntitlementID marks overdraft.
type Usage struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EntitlementID  *uuid.UUID      `gorm:"type:uuid;index" json:"entitlement_id"`
	LeaveRequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"leave_request_id"`
	LeaveDate      time.Time       `gorm:"type:date;not null" json:"leave_date"`
	LengthDays     decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"length_days"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (Usage) TableName() string {
	return "leave_entitlement_usages"
}
