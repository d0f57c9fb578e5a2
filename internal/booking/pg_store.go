package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
	pub  Publisher // optional; nil disables feed publishing
}

func NewPgStore(pool *pgxpool.Pool, pub Publisher) *PgStore {
	return &PgStore{pool: pool, pub: pub}
}

// Helpers

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking

	err := row.Scan(
		&b.ID,
		&b.Provider,
		&b.Date,
		&b.Time,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.CustomerEmail,
		&b.Status,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (s *PgStore) publishUpsert(ctx context.Context, b *Booking) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(ctx, Event{Type: EventUpsert, ID: b.ID, Booking: b})
}

func (s *PgStore) publishDelete(ctx context.Context, id uuid.UUID) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(ctx, Event{Type: EventDelete, ID: id})
}

// Interface methods

func (s *PgStore) Create(ctx context.Context, b *Booking) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bookings (id, provider, booking_date, time_slot, customer_name, customer_phone, customer_email, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, b.ID, b.Provider, b.Date, b.Time, b.CustomerName, b.CustomerPhone, b.CustomerEmail, b.Status, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	s.publishUpsert(ctx, b)
	return nil
}

func (s *PgStore) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, provider, booking_date, time_slot, customer_name, customer_phone, customer_email, status, created_at
		FROM bookings
		WHERE id = $1
	`, id)
	return scanBooking(row)
}

func (s *PgStore) FindPendingByEmail(ctx context.Context, email string) (*Booking, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, provider, booking_date, time_slot, customer_name, customer_phone, customer_email, status, created_at
		FROM bookings
		WHERE customer_email = $1 AND status = 'pending'
		LIMIT 1
	`, email)
	return scanBooking(row)
}

func (s *PgStore) List(ctx context.Context) ([]Booking, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, provider, booking_date, time_slot, customer_name, customer_phone, customer_email, status, created_at
		FROM bookings
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Booking, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE bookings
		SET status = $2
		WHERE id = $1
		  AND status = $3
		RETURNING id, provider, booking_date, time_slot, customer_name, customer_phone, customer_email, status, created_at
	`, id, to, from)

	b, err := scanBooking(row)
	if err != nil {
		return nil, err
	}

	s.publishUpsert(ctx, b)
	return b, nil
}

func (s *PgStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM bookings
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	s.publishDelete(ctx, id)
	return nil
}
