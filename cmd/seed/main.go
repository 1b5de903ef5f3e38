package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"aviato/internal/flashsales"
	"aviato/internal/flights"
	"aviato/internal/seats"
	"aviato/internal/shared/config"
	"aviato/internal/shared/database"
	"aviato/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db            *database.DB
	flightService flights.Service
	flashSaleRepo flashsales.Repository
}

func main() {
	fmt.Println("🌱 Starting Aviato Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	flightRepo := flights.NewRepository(db.GetPostgreSQL())
	seatRepo := seats.NewRepository(db.GetPostgreSQL())

	seeder := &Seeder{
		db:            db,
		flightService: flights.NewService(flightRepo, seatRepo),
		flashSaleRepo: flashsales.NewRepository(db.GetPostgreSQL()),
	}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"refund_requests",
		"tickets",
		"flash_sales",
		"seats",
		"flights",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds users, flights with seat maps, and one running flash sale
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	if err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	flightIDs, err := s.SeedFlights(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed flights: %w", err)
	}

	if err := s.SeedFlashSale(ctx, flightIDs[0]); err != nil {
		return fmt.Errorf("failed to seed flash sale: %w", err)
	}

	return nil
}

func (s *Seeder) SeedUsers() error {
	fmt.Println("  Seeding users...")

	accounts := []struct {
		name     string
		email    string
		password string
		role     users.Role
	}{
		{"Aviato Admin", "admin@aviato.dev", "admin123", users.RoleAdmin},
		{"Counter Agent", "counter@aviato.dev", "counter123", users.RoleAdmin},
		{"Alice Traveler", "alice@example.com", "alice123", users.RoleCustomer},
		{"Bob Commuter", "bob@example.com", "bob12345", users.RoleCustomer},
		{"Carol Nomad", "carol@example.com", "carol123", users.RoleCustomer},
	}

	for _, account := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(account.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := &users.User{
			Name:         account.name,
			Email:        account.email,
			PasswordHash: string(hash),
			Role:         account.role,
		}
		if err := s.db.PostgreSQL.Create(user).Error; err != nil {
			return err
		}
		fmt.Printf("    %s (%s)\n", account.email, account.role)
	}

	return nil
}

func (s *Seeder) SeedFlights(ctx context.Context) ([]uuid.UUID, error) {
	fmt.Println("  Seeding flights...")

	departureBase := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	businessPrice := int64(260000)

	requests := []flights.CreateFlightRequest{
		{
			FlightNumber:  "AV101",
			Origin:        "JFK",
			Destination:   "SFO",
			DepartureTime: departureBase.Format(time.RFC3339),
			ArrivalTime:   departureBase.Add(6 * time.Hour).Format(time.RFC3339),
			BasePrice:     120000,
			EconomySeats:  24,
			BusinessSeats: 6,
			FirstSeats:    6,
		},
		{
			FlightNumber:  "AV102",
			Origin:        "SFO",
			Destination:   "JFK",
			DepartureTime: departureBase.Add(48 * time.Hour).Format(time.RFC3339),
			ArrivalTime:   departureBase.Add(54 * time.Hour).Format(time.RFC3339),
			BasePrice:     120000,
			EconomySeats:  24,
			BusinessSeats: 6,
			FirstSeats:    6,
		},
		{
			FlightNumber:  "AV201",
			Origin:        "LHR",
			Destination:   "CDG",
			DepartureTime: departureBase.Add(24 * time.Hour).Format(time.RFC3339),
			ArrivalTime:   departureBase.Add(25*time.Hour + 30*time.Minute).Format(time.RFC3339),
			BasePrice:     45000,
			BusinessPrice: &businessPrice,
			EconomySeats:  30,
			BusinessSeats: 6,
		},
	}

	ids := make([]uuid.UUID, 0, len(requests))
	for _, req := range requests {
		resp, err := s.flightService.CreateFlight(ctx, req)
		if err != nil {
			return nil, err
		}
		id, err := uuid.Parse(resp.ID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		fmt.Printf("    %s %s-%s (%d seats)\n", req.FlightNumber, req.Origin, req.Destination,
			req.EconomySeats+req.BusinessSeats+req.FirstSeats)
	}

	return ids, nil
}

func (s *Seeder) SeedFlashSale(ctx context.Context, flightID uuid.UUID) error {
	fmt.Println("  Seeding flash sale...")

	now := time.Now().UTC()
	sale := &flashsales.FlashSale{
		FlightID:        flightID,
		DiscountPercent: 25,
		StartsAt:        now.Add(-time.Hour),
		EndsAt:          now.Add(48 * time.Hour),
		MaxQuota:        10,
	}

	if err := s.flashSaleRepo.CreateFlashSale(ctx, sale); err != nil {
		return err
	}

	fmt.Printf("    25%% off, quota %d, open until %s\n", sale.MaxQuota, sale.EndsAt.Format(time.RFC3339))
	return nil
}
