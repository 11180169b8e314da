package workflow

import (
	"time"

	"github.com/google/uuid"
)

const (
	FlowLeave = "LEAVE"

	StateInitial = "INITIAL"

	ActionApply = "APPLY"

	// RoleESS is granted implicitly when an employee acts on their own record.
	RoleESS = "ESS"
)

// Transition is one row of the state machine: an actor holding Role may
// perform Action on an item of Flow in State, moving it to ResultingState.
type Transition struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Flow           string    `gorm:"type:varchar(50);not null;index:idx_workflow_flow_state" json:"flow"`
	State          string    `gorm:"type:varchar(100);not null;index:idx_workflow_flow_state" json:"state"`
	Role           string    `gorm:"type:varchar(100);not null" json:"role"`
	Action         string    `gorm:"type:varchar(100);not null" json:"action"`
	ResultingState string    `gorm:"type:varchar(100);not null" json:"resulting_state"`
	Priority       int       `gorm:"not null;default:0" json:"priority"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Transition) TableName() string {
	return "workflow_state_machines"
}

type Actor struct {
	CompanyID  string
	EmployeeID string
}
