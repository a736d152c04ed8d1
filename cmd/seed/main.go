package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookline/bookline/internal/booking"
	"github.com/bookline/bookline/internal/db"
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

	gofakeit.Seed(time.Now().UnixNano())

	tenantIDs, err := seedTenants(context.Background(), pool, 5)
	if err != nil {
		log.Fatalf("seed tenants: %v", err)
	}
	if err := seedProfessionals(context.Background(), pool, tenantIDs, 10); err != nil {
		log.Fatalf("seed professionals: %v", err)
	}
	if err := seedOfferings(context.Background(), pool, tenantIDs, 8); err != nil {
		log.Fatalf("seed offerings: %v", err)
	}
	if err := seedCustomers(context.Background(), pool, tenantIDs, 200); err != nil {
		log.Fatalf("seed customers: %v", err)
	}

	log.Println("seed complete")
}

func seedTenants(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d tenants", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Company()
		slug := gofakeit.Username()

		_, err := tx.Exec(ctx, `
			INSERT INTO tenants (id, name, slug, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, slug)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

func seedProfessionals(ctx context.Context, pool *pgxpool.Pool, tenantIDs []uuid.UUID, perTenant int) error {
	log.Printf("seeding %d professionals per tenant", perTenant)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, tenantID := range tenantIDs {
		for i := 0; i < perTenant; i++ {
			id := uuid.New()
			name := gofakeit.Name()

			// Roughly half the professionals get explicit working hours;
			// the rest fall back to the default window.
			var workingHours []byte
			if gofakeit.Bool() {
				schedule := booking.WeeklySchedule{
					{Day: "monday", Open: "08:00", Close: "16:00"},
					{Day: "tuesday", Open: "08:00", Close: "16:00"},
					{Day: "wednesday", Open: "08:00", Close: "16:00"},
					{Day: "thursday", Open: "10:00", Close: "19:00"},
					{Day: "friday", Open: "10:00", Close: "19:00"},
				}
				workingHours, err = json.Marshal(schedule)
				if err != nil {
					return err
				}
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO professionals (id, tenant_id, name, active, working_hours, created_at, updated_at)
				VALUES ($1, $2, $3, true, $4, now(), now())
			`, id, tenantID, name, workingHours)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func seedOfferings(ctx context.Context, pool *pgxpool.Pool, tenantIDs []uuid.UUID, perTenant int) error {
	log.Printf("seeding %d offerings per tenant", perTenant)

	durations := []int{15, 30, 45, 60, 90}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, tenantID := range tenantIDs {
		for i := 0; i < perTenant; i++ {
			id := uuid.New()
			name := gofakeit.ProductName()
			description := gofakeit.Sentence(8)
			priceCents := int64(gofakeit.Number(1500, 25000))
			duration := durations[gofakeit.Number(0, len(durations)-1)]

			_, err := tx.Exec(ctx, `
				INSERT INTO offerings (id, tenant_id, name, description, price_cents, duration_minutes, active, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, true, now(), now())
			`, id, tenantID, name, description, priceCents, duration)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, tenantIDs []uuid.UUID, perTenant int) error {
	log.Printf("seeding %d customers per tenant", perTenant)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, tenantID := range tenantIDs {
		for i := 0; i < perTenant; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()
			phone := gofakeit.Phone()

			_, err := tx.Exec(ctx, `
				INSERT INTO customers (id, tenant_id, full_name, email, phone, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
			`, id, tenantID, name, email, phone)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}
