package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/barbershop-reservations/internal/auth"
	"github.com/hackgods/barbershop-reservations/internal/catalog"
	redisclient "github.com/hackgods/barbershop-reservations/internal/redis"
)

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrUnauthorized        = errors.New("not authorized for admin operations")
	ErrActiveBookingExists = errors.New("customer already has a pending booking")
	ErrInvalidTransition   = errors.New("invalid booking status transition")
	ErrValidation          = errors.New("invalid booking request")
	ErrCustomerBusy        = errors.New("a booking for this customer is already in flight, please retry")
)

type CreateRequest struct {
	Provider      string
	Date          string
	Time          string
	CustomerName  string
	CustomerPhone string
}

type Service struct {
	store  Store
	guard  *auth.Guard
	locker redisclient.Locker
	feed   FeedSource
	now    func() time.Time
}

func NewService(store Store, guard *auth.Guard, locker redisclient.Locker, feed FeedSource) *Service {
	return &Service{
		store:  store,
		guard:  guard,
		locker: locker,
		feed:   feed,
		now:    time.Now,
	}
}

// CreateBooking validates the request and creates a pending booking for the
// authenticated customer. A customer may hold at most one pending booking at
// a time; the check and the insert are separate store operations, so a
// per-customer lock narrows (but does not eliminate) the window in which
// concurrent requests could both pass the check.
//
// No cross-customer slot check is performed: two customers may book the same
// provider, date and time.
func (s *Service) CreateBooking(ctx context.Context, principal *auth.Principal, req CreateRequest) (*Booking, error) {
	if principal == nil || principal.Email == "" {
		return nil, ErrUnauthenticated
	}

	if err := s.validate(req); err != nil {
		return nil, err
	}

	var created *Booking

	err := s.locker.WithCustomerLock(ctx, principal.Email, func(lockCtx context.Context) error {
		existing, err := s.store.FindPendingByEmail(lockCtx, principal.Email)
		if err != nil && !errors.Is(err, ErrBookingNotFound) {
			return fmt.Errorf("check pending booking: %w", err)
		}
		if existing != nil {
			return ErrActiveBookingExists
		}

		b := &Booking{
			ID:            uuid.New(),
			Provider:      req.Provider,
			Date:          req.Date,
			Time:          req.Time,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			CustomerEmail: principal.Email,
			Status:        StatusPending,
			CreatedAt:     s.now(),
		}

		if err := s.store.Create(lockCtx, b); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		created = b
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrCustomerBusy
		}
		return nil, err
	}

	return created, nil
}

func (s *Service) validate(req CreateRequest) error {
	if !catalog.ValidProvider(req.Provider) {
		return fmt.Errorf("%w: unknown provider %q", ErrValidation, req.Provider)
	}
	if !catalog.ValidTimeSlot(req.Time) {
		return fmt.Errorf("%w: unknown time slot %q", ErrValidation, req.Time)
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return fmt.Errorf("%w: customer phone is required", ErrValidation)
	}

	if _, err := catalog.ParseDate(req.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// ISO dates compare lexicographically.
	today := s.now().Format(catalog.DateLayout)
	if req.Date < today {
		return fmt.Errorf("%w: date %s is in the past", ErrValidation, req.Date)
	}

	return nil
}

// MarkFinished moves a pending booking to finished. Calling it on a booking
// that is no longer pending reports ErrInvalidTransition; callers that raced
// another admin can treat that as confirmation the work already happened.
func (s *Service) MarkFinished(ctx context.Context, actor *auth.Principal, id uuid.UUID) (*Booking, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	updated, err := s.store.UpdateStatus(ctx, id, StatusPending, StatusFinished)
	if err != nil {
		// The status moved between the read and the conditional update.
		if errors.Is(err, ErrBookingNotFound) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("finish booking: %w", err)
	}

	return updated, nil
}

// Delete removes a booking regardless of its status. An already-absent
// booking is benign success: the end state the caller asked for holds.
func (s *Service) Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil
		}
		return fmt.Errorf("delete booking: %w", err)
	}

	return nil
}

func (s *Service) GetBooking(ctx context.Context, actor *auth.Principal, id uuid.UUID) (*Booking, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListBookings(ctx context.Context, actor *auth.Principal) ([]Booking, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// Watch opens an admin change-feed subscription: current bookings first, then
// incremental changes until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, actor *auth.Principal) (<-chan Event, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if s.feed == nil {
		return nil, errors.New("change feed not configured")
	}
	return s.feed.Subscribe(ctx)
}

func (s *Service) requireAdmin(actor *auth.Principal) error {
	if actor == nil || actor.Email == "" {
		return ErrUnauthenticated
	}
	if !s.guard.Authorize(actor.Email) {
		return ErrUnauthorized
	}
	return nil
}
