// admin-watcher tails the booking change feed as an allow-listed admin and
// logs every upsert and delete. It is the console counterpart of the admin
// dashboard: point it at the same Postgres and Redis as the api-server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/barbershop-reservations/internal/auth"
	"github.com/hackgods/barbershop-reservations/internal/booking"
	"github.com/hackgods/barbershop-reservations/internal/config"
	"github.com/hackgods/barbershop-reservations/internal/db"
	"github.com/hackgods/barbershop-reservations/internal/feed"
	redisclient "github.com/hackgods/barbershop-reservations/internal/redis"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("admin-watcher starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	adminEmail := os.Getenv("WATCHER_EMAIL")
	if adminEmail == "" && len(cfg.AdminEmails) > 0 {
		adminEmail = cfg.AdminEmails[0]
	}
	if adminEmail == "" {
		log.Fatal("WATCHER_EMAIL or ADMIN_EMAILS is required")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	store := booking.NewPgStore(pgPool, nil)
	subscriber := feed.NewSubscriber(rdb, store)
	guard := auth.NewGuard(cfg.AdminEmails)
	locker := redisclient.NewRedisCustomerLocker(rdb, cfg.LockTTL)
	svc := booking.NewService(store, guard, locker, subscriber)

	identity := auth.Static("admin-watcher", adminEmail)
	actor, err := identity.CurrentPrincipal(rootCtx)
	if err != nil {
		log.Fatalf("resolve watcher identity: %v", err)
	}

	events, err := svc.Watch(rootCtx, actor)
	if err != nil {
		log.Fatalf("open change feed: %v", err)
	}

	log.Printf("watching bookings as %s", adminEmail)

	for ev := range events {
		switch ev.Type {
		case booking.EventDelete:
			log.Printf("booking %s deleted", ev.ID)
		case booking.EventUpsert:
			b := ev.Booking
			if b == nil {
				log.Printf("booking %s upserted", ev.ID)
				continue
			}
			log.Printf("booking %s status=%s provider=%s date=%s time=%s customer=%s",
				b.ID, b.Status, b.Provider, b.Date, b.Time, b.CustomerEmail)
		}
	}

	log.Println("change feed closed, shutting down")
}
