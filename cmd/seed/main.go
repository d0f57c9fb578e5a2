package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/barbershop-reservations/internal/booking"
	"github.com/hackgods/barbershop-reservations/internal/catalog"
	"github.com/hackgods/barbershop-reservations/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedBookings(context.Background(), pool, 500); err != nil {
		log.Fatalf("seed bookings: %v", err)
	}

	log.Println("seed complete")
}

// seedBookings inserts fake bookings spread over the next two weeks. At most
// one pending booking per generated email, matching the rule the service
// enforces; older finished bookings may share an email.
func seedBookings(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d bookings", count)

	providers := catalog.Providers()
	slots := catalog.TimeSlots()

	const batchSize = 100

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			provider := providers[gofakeit.Number(0, len(providers)-1)]
			slot := slots[gofakeit.Number(0, len(slots)-1)]
			date := time.Now().AddDate(0, 0, gofakeit.Number(0, 14)).Format(catalog.DateLayout)

			status := booking.StatusPending
			if gofakeit.Number(0, 2) == 0 {
				status = booking.StatusFinished
			}

			email := gofakeit.Email()
			if status == booking.StatusPending {
				// unique email per pending row keeps the seeded data legal
				email = uuid.NewString()[:8] + "@" + gofakeit.DomainName()
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO bookings (id, provider, booking_date, time_slot, customer_name, customer_phone, customer_email, status, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			`, id, provider, date, slot, gofakeit.Name(), gofakeit.Phone(), email, status)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("seeded %d/%d bookings", end, count)
	}

	log.Println("bookings seeded")
	return nil
}
