package booking

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusFinished Status = "finished"
)

// Booking is the reservation record. Provider, Date, Time, CustomerEmail and
// CreatedAt are write-once: nothing mutates them after creation, and there is
// no reschedule operation. Cancellation removes the record instead of setting
// a status.
type Booking struct {
	ID            uuid.UUID `json:"id"`
	Provider      string    `json:"provider"`
	Date          string    `json:"date"` // ISO calendar date, no time part
	Time          string    `json:"time"` // slot label, e.g. "10:30AM"
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
