package school

import (
	"time"

	"github.com/trezcool/nabha/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type School struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Location      string    `json:"location" db:"location"`
	ContactNumber string    `json:"contact_number" db:"contact_number"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewSchool is posted by admins to register a school.
type NewSchool struct {
	Name          string `json:"name" validate:"required,max=200"`
	Location      string `json:"location" validate:"required,max=200"`
	ContactNumber string `json:"contact_number" validate:"omitempty,max=20,e164|numeric"`
}

func (ns *NewSchool) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Location = core.CleanString(ns.Location)
	ns.ContactNumber = core.CleanString(ns.ContactNumber)
	return core.Validate.Struct(ns)
}
