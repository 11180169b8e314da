package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DurationFullDay          = "FULL_DAY"
	DurationHalfDayMorning   = "HALF_DAY_MORNING"
	DurationHalfDayAfternoon = "HALF_DAY_AFTERNOON"
	DurationNonWorking       = "NON_WORKING"
)

type LeaveType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// LeaveRequest is the aggregate saved by one application. It owns its days
// and comments.
type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_requests_company_ref"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`
	ReferenceNo string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_leave_requests_company_ref"`
	Comment     *string   `gorm:"type:text"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`

	LeaveType *LeaveType            `gorm:"foreignKey:LeaveTypeID"`
	Days      []Leave               `gorm:"foreignKey:LeaveRequestID"`
	Comments  []LeaveRequestComment `gorm:"foreignKey:LeaveRequestID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Leave is a single calendar day of a request. Weekend and holiday days are
// kept with zero length so the request shows the whole range.
type Leave struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeaveRequestID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null"`
	EmployeeID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_leaves_employee_date"`
	LeaveTypeID    uuid.UUID       `gorm:"type:uuid;not null"`
	Date           time.Time       `gorm:"type:date;not null;index:idx_leaves_employee_date"`
	LengthDays     decimal.Decimal `gorm:"type:decimal(4,2);not null"`
	DurationType   string          `gorm:"type:varchar(20);not null"`
	Status         string          `gorm:"type:varchar(30);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l Leave) IsWorkday() bool {
	return l.Status != StatusWeekend && l.Status != StatusHoliday
}

type LeaveRequestComment struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeaveRequestID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Comment             string    `gorm:"type:text;not null"`
	CreatedByUserID     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedByEmployeeID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt           time.Time
}
