package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/memory"
	mysqlledger "hotel_booking/internal/storage/mysql"
)

// seedBooking is one line item of the seed file.
type seedBooking struct {
	RoomID  int64  `json:"room_id"`
	GuestID int64  `json:"guest_id"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	raw, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("read seed file failed")
	}
	var seeds []seedBooking
	if err := json.Unmarshal(raw, &seeds); err != nil {
		log.Fatal().Err(err).Msg("parse seed file failed")
	}

	log.Info().
		Str("file", cfg.SeedFile).
		Int("bookings", len(seeds)).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	var ledger domain.ReservationLedger
	switch cfg.Ledger {
	case "memory":
		ledger = memory.New()
		log.Warn().Msg("seeding in-memory ledger: data is gone when this process exits")
	default:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("db ping ok")
		ledger = mysqlledger.New(db)
	}

	svc := app.NewBookingService(ledger, nil, time.Minute)
	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, s := range seeds {
		s := s

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(s seedBooking) {
			defer wg.Done()
			defer sem.Release(1)

			b, err := svc.CreateBooking(ctx, s.RoomID, s.GuestID, s.Start, s.End)
			if err != nil {
				log.Warn().
					Int64("room", s.RoomID).
					Str("start", s.Start).
					Str("end", s.End).
					Err(err).
					Msg("seed booking failed")
				return
			}
			log.Info().Int64("booking", b.ID).Int64("room", b.RoomID).Msg("seed booking ok")
		}(s)
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}
