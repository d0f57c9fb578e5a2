package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/barbershop-reservations/internal/auth"
	redisclient "github.com/hackgods/barbershop-reservations/internal/redis"
)

// fakeStore is an in-memory Store used by the service tests.
type fakeStore struct {
	bookings map[uuid.UUID]*Booking

	createErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: make(map[uuid.UUID]*Booking)}
}

func (f *fakeStore) Create(ctx context.Context, b *Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) FindPendingByEmail(ctx context.Context, email string) (*Booking, error) {
	for _, b := range f.bookings {
		if b.CustomerEmail == email && b.Status == StatusPending {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (f *fakeStore) List(ctx context.Context) ([]Booking, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Booking, 0, len(f.bookings))
	for _, b := range f.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return nil, ErrBookingNotFound
	}
	b.Status = to
	cp := *b
	return &cp, nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(f.bookings, id)
	return nil
}

// passthroughLocker runs the critical section without any locking.
type passthroughLocker struct{}

func (passthroughLocker) WithCustomerLock(ctx context.Context, email string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// contentionLocker simulates a concurrent booking attempt holding the lock.
type contentionLocker struct{ err error }

func (l contentionLocker) WithCustomerLock(ctx context.Context, email string, fn func(ctx context.Context) error) error {
	return l.err
}

const adminEmail = "root@shop.com"

func newTestService(store Store) *Service {
	svc := NewService(store, auth.NewGuard([]string{adminEmail}), passthroughLocker{}, nil)
	svc.now = func() time.Time { return time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC) }
	return svc
}

func validRequest() CreateRequest {
	return CreateRequest{
		Provider:      "Ejie",
		Date:          "2025-06-01",
		Time:          "10:30AM",
		CustomerName:  "Ana",
		CustomerPhone: "09171234567",
	}
}

func customer(email string) *auth.Principal {
	return &auth.Principal{ID: "cust-" + email, Email: email}
}

func admin() *auth.Principal {
	return &auth.Principal{ID: "admin-1", Email: adminEmail}
}

func TestCreateBooking(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	b, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())

	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, "a@x.com", b.CustomerEmail)
	assert.Equal(t, "Ejie", b.Provider)
	assert.Equal(t, "2025-06-01", b.Date)
	assert.Equal(t, "10:30AM", b.Time)
	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.False(t, b.CreatedAt.IsZero())

	stored, err := store.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, *b, *stored)
}

func TestCreateBookingRejectsSecondPending(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Provider = "Marco"
	req.Time = "12:00PM"
	_, err = svc.CreateBooking(context.Background(), customer("a@x.com"), req)

	assert.ErrorIs(t, err, ErrActiveBookingExists)
	bookings, _ := store.List(context.Background())
	assert.Len(t, bookings, 1)
}

func TestCreateBookingAllowedAfterFinish(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	first, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	require.NoError(t, err)

	_, err = svc.MarkFinished(context.Background(), admin(), first.ID)
	require.NoError(t, err)

	_, err = svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	assert.NoError(t, err)
}

func TestCreateBookingUnauthenticated(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.CreateBooking(context.Background(), nil, validRequest())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.CreateBooking(context.Background(), &auth.Principal{ID: "x"}, validRequest())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateBookingValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	cases := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"unknown provider", func(r *CreateRequest) { r.Provider = "Nobody" }},
		{"unknown time slot", func(r *CreateRequest) { r.Time = "9:00AM" }},
		{"empty name", func(r *CreateRequest) { r.CustomerName = "  " }},
		{"empty phone", func(r *CreateRequest) { r.CustomerPhone = "" }},
		{"malformed date", func(r *CreateRequest) { r.Date = "01/06/2025" }},
		{"past date", func(r *CreateRequest) { r.Date = "2025-05-19" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)

			_, err := svc.CreateBooking(context.Background(), customer("a@x.com"), req)

			assert.ErrorIs(t, err, ErrValidation)
			bookings, _ := store.List(context.Background())
			assert.Empty(t, bookings, "rejected request must not persist anything")
		})
	}
}

func TestCreateBookingSameDayAllowed(t *testing.T) {
	svc := newTestService(newFakeStore())

	req := validRequest()
	req.Date = "2025-05-20" // the fixed test clock's current date

	_, err := svc.CreateBooking(context.Background(), customer("a@x.com"), req)
	assert.NoError(t, err)
}

// Two different customers may book the identical provider/date/time. First
// come is served in person; the system does not arbitrate slots.
func TestCreateBookingNoSlotExclusivity(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	require.NoError(t, err)

	_, err = svc.CreateBooking(context.Background(), customer("b@x.com"), validRequest())
	require.NoError(t, err)

	bookings, _ := store.List(context.Background())
	assert.Len(t, bookings, 2)
}

func TestCreateBookingLockContention(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, auth.NewGuard([]string{adminEmail}), contentionLocker{err: redisclient.ErrLockNotAcquired}, nil)
	svc.now = func() time.Time { return time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC) }

	_, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())

	assert.ErrorIs(t, err, ErrCustomerBusy)
	bookings, _ := store.List(context.Background())
	assert.Empty(t, bookings)
}

func TestCreateBookingStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection refused")
	svc := newTestService(store)

	_, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrActiveBookingExists)
}

func TestMarkFinished(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	b, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	require.NoError(t, err)

	updated, err := svc.MarkFinished(context.Background(), admin(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, updated.Status)

	// Immutable fields survive the transition untouched.
	assert.Equal(t, b.Provider, updated.Provider)
	assert.Equal(t, b.Date, updated.Date)
	assert.Equal(t, b.Time, updated.Time)
	assert.Equal(t, b.CustomerEmail, updated.CustomerEmail)
	assert.Equal(t, b.CreatedAt, updated.CreatedAt)

	// Second call is rejected, status stays finished.
	_, err = svc.MarkFinished(context.Background(), admin(), b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := store.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, stored.Status)
}

func TestMarkFinishedNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.MarkFinished(context.Background(), admin(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestMarkFinishedUnauthorized(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	b, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	require.NoError(t, err)

	_, err = svc.MarkFinished(context.Background(), customer("a@x.com"), b.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	stored, err := store.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status, "denied call must not mutate the store")
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	b, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), admin(), b.ID))

	_, err = store.GetByID(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	// Deleting again is benign success: the record is already absent.
	assert.NoError(t, svc.Delete(context.Background(), admin(), b.ID))
}

func TestDeleteFinishedBooking(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	b, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	require.NoError(t, err)
	_, err = svc.MarkFinished(context.Background(), admin(), b.ID)
	require.NoError(t, err)

	assert.NoError(t, svc.Delete(context.Background(), admin(), b.ID))
}

func TestDeleteUnauthorized(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	b, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), customer("b@x.com"), b.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = store.GetByID(context.Background(), b.ID)
	assert.NoError(t, err, "denied delete must leave the booking in place")
}

func TestListBookings(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	require.NoError(t, err)
	_, err = svc.CreateBooking(context.Background(), customer("b@x.com"), validRequest())
	require.NoError(t, err)

	bookings, err := svc.ListBookings(context.Background(), admin())
	require.NoError(t, err)
	assert.Len(t, bookings, 2)

	_, err = svc.ListBookings(context.Background(), customer("a@x.com"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetBookingUnauthorized(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	b, err := svc.CreateBooking(context.Background(), customer("a@x.com"), validRequest())
	require.NoError(t, err)

	_, err = svc.GetBooking(context.Background(), customer("a@x.com"), b.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	got, err := svc.GetBooking(context.Background(), admin(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestWatchUnauthorized(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Watch(context.Background(), customer("a@x.com"))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Watch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

// Admin allow-listing is case sensitive: a differently-cased copy of an admin
// email stays denied.
func TestAdminEmailCaseSensitive(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.ListBookings(context.Background(), &auth.Principal{ID: "x", Email: "Root@shop.com"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
