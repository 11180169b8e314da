package holiday

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Holiday struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_holidays_company_date" json:"company_id"`
	Date      time.Time `gorm:"type:date;not null;index:idx_holidays_company_date" json:"date"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	// Recurring holidays repeat on the same month/day every year.
	Recurring bool `gorm:"not null;default:false" json:"recurring"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
