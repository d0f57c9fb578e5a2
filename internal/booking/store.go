package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
)

// Store contains all persistence interactions needed by the service.
type Store interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// For the one-active-booking check
	FindPendingByEmail(ctx context.Context, email string) (*Booking, error)

	List(ctx context.Context) ([]Booking, error)

	// Conditional status move: the update applies only while the current
	// status equals from, otherwise ErrBookingNotFound.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Booking, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
