package api

import (
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	Provider      string `json:"provider"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

type BookingResponse struct {
	ID            uuid.UUID `json:"id"`
	Provider      string    `json:"provider"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type CatalogResponse struct {
	Providers []string `json:"providers,omitempty"`
	TimeSlots []string `json:"time_slots,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
