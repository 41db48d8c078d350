package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"cinematickets/internal/seats"
	"cinematickets/internal/shared/config"
	"cinematickets/internal/shared/database"
	"cinematickets/internal/shared/middleware"
)

type Seeder struct {
	db  *database.DB
	cfg *config.Config
}

func main() {
	accountID := flag.Int64("account", 1, "account id to issue a development token for")
	keepLedger := flag.Bool("keep-ledger", false, "do not truncate the payment ledger")
	flag.Parse()

	fmt.Println("🌱 Starting cinematickets seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, cfg: cfg}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !*keepLedger {
		fmt.Println("\n🧹 Cleaning payment ledger...")
		if err := seeder.CleanLedger(ctx); err != nil {
			log.Fatalf("Failed to clean ledger: %v", err)
		}
		fmt.Println("✅ Ledger cleaned")
	}

	fmt.Println("\n🎟️  Resetting venue capacity...")
	if err := seeder.ResetVenue(ctx); err != nil {
		log.Fatalf("Failed to reset venue: %v", err)
	}
	fmt.Printf("✅ Venue %q has %d seats\n", cfg.Venue.Name, cfg.Venue.SeatCapacity)

	token, err := middleware.IssueAccessToken(cfg.JWT.Secret, *accountID, cfg.JWT.JWTExpiresIn)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Printf("\n🔑 Access token for account %d (expires in %s):\n%s\n", *accountID, cfg.JWT.JWTExpiresIn, token)

	fmt.Println("\n🎉 Seeding completed!")
}

// CleanLedger removes every recorded charge
func (s *Seeder) CleanLedger(ctx context.Context) error {
	return s.db.PostgreSQL.WithContext(ctx).Exec("TRUNCATE TABLE payment_charges").Error
}

// ResetVenue overwrites the seat counter and clears per-account reservations
func (s *Seeder) ResetVenue(ctx context.Context) error {
	return seats.NewReservationService(s.db.Redis, s.cfg.Venue.Name).
		ResetCapacity(ctx, s.cfg.Venue.SeatCapacity)
}
