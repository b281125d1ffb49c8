package alert

import (
	"time"

	"github.com/trezcool/nabha/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusResolved = "resolved"
)

type Alert struct {
	ID         string     `json:"id" db:"id"`
	StudentID  string     `json:"student_id" db:"student_id"`
	ResolvedBy *string    `json:"resolved_by" db:"resolved_by"`
	Message    string     `json:"message" db:"message"`
	Status     string     `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at" db:"resolved_at"`
}

type NewAlert struct {
	Message string `json:"message" validate:"required,max=1000"`
}

func (na *NewAlert) Validate() error {
	na.Message = core.CleanString(na.Message)
	return core.Validate.Struct(na)
}

// emailData feeds the emergency_alert templates.
type emailData struct {
	StudentName string
	Message     string
	CreatedAt   time.Time
}
