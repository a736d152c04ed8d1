package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookline/bookline/internal/config"
	"github.com/bookline/bookline/internal/db"
)

// The simulator hammers the guest-booking endpoint with concurrent requests
// aimed at a small set of professionals and overlapping windows, then checks
// Postgres for double bookings. A healthy run ends with zero overlapping
// non-canceled appointments per professional.

type SimConfig struct {
	APIBaseURL        string
	Duration          time.Duration
	Workers           int
	ProfessionalLimit int
	PostgresDSN       string
}

type offeringRef struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	DurationMinutes int
}

type professionalRef struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

type DataPool struct {
	Professionals []professionalRef
	Offerings     map[uuid.UUID][]offeringRef // keyed by tenant
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	Latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, success, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case success:
		atomic.AddInt64(&om.Success, 1)
	case conflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))

	p50 = latencies[len(latencies)*50/100]
	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]
	return avg, p50, p95
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	booking OperationMetrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadSimConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}

	log.Printf("loaded: %d professionals across %d tenants",
		len(dataPool.Professionals), len(dataPool.Offerings))

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	sim.Run()
	sim.PrintReport()

	if err := verifyNoDoubleBookings(context.Background(), pgPool); err != nil {
		log.Fatalf("consistency check failed: %v", err)
	}
	log.Println("consistency check passed: no overlapping non-canceled appointments")
}

func loadSimConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	return SimConfig{
		APIBaseURL:        getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:          getDuration("SIM_DURATION", 30*time.Second),
		Workers:           getInt("SIM_WORKERS", 10),
		ProfessionalLimit: getInt("SIM_PROFESSIONAL_LIMIT", 5),
		PostgresDSN:       baseCfg.PostgresDSN,
	}
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{Offerings: make(map[uuid.UUID][]offeringRef)}

	rows, err := pool.Query(ctx, `
		SELECT id, tenant_id FROM professionals WHERE active LIMIT $1
	`, cfg.ProfessionalLimit)
	if err != nil {
		return nil, fmt.Errorf("load professionals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p professionalRef
		if err := rows.Scan(&p.ID, &p.TenantID); err != nil {
			return nil, err
		}
		dataPool.Professionals = append(dataPool.Professionals, p)
	}

	offRows, err := pool.Query(ctx, `
		SELECT id, tenant_id, duration_minutes FROM offerings WHERE active
	`)
	if err != nil {
		return nil, fmt.Errorf("load offerings: %w", err)
	}
	defer offRows.Close()

	for offRows.Next() {
		var o offeringRef
		if err := offRows.Scan(&o.ID, &o.TenantID, &o.DurationMinutes); err != nil {
			return nil, err
		}
		dataPool.Offerings[o.TenantID] = append(dataPool.Offerings[o.TenantID], o)
	}

	if len(dataPool.Professionals) == 0 {
		return nil, fmt.Errorf("no professionals loaded, run cmd/seed first")
	}

	return dataPool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			s.doGuestBooking(ctx, rng, workerID)
		}
	}
}

func (s *Simulator) doGuestBooking(ctx context.Context, rng *rand.Rand, workerID int) {
	prof := s.pool.Professionals[rng.Intn(len(s.pool.Professionals))]
	offerings := s.pool.Offerings[prof.TenantID]
	if len(offerings) == 0 {
		return
	}
	offering := offerings[rng.Intn(len(offerings))]

	// Everyone fights over tomorrow's 09:00-12:00 grid so conflicts are
	// common by construction.
	tomorrow := time.Now().AddDate(0, 0, 1)
	slotStart := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(),
		9, 0, 0, 0, time.UTC).Add(time.Duration(rng.Intn(12)) * 15 * time.Minute)

	reqBody := map[string]string{
		"customer_name":   fmt.Sprintf("Load Tester %d", workerID),
		"customer_email":  fmt.Sprintf("load-tester-%d@example.com", workerID),
		"professional_id": prof.ID.String(),
		"offering_id":     offering.ID.String(),
		"start_time":      slotStart.Format("2006-01-02T15:04:05"),
	}
	body, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("%s/api/public/%s/appointments/guest", s.config.APIBaseURL, prof.TenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.booking.Record(latency, false, false)
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	success := resp.StatusCode == http.StatusCreated
	conflict := resp.StatusCode == http.StatusConflict
	s.booking.Record(latency, success, conflict)
}

func (s *Simulator) PrintReport() {
	avg, p50, p95 := s.booking.Stats()
	log.Printf("guest bookings: total=%d success=%d conflict=%d error=%d",
		atomic.LoadInt64(&s.booking.Total),
		atomic.LoadInt64(&s.booking.Success),
		atomic.LoadInt64(&s.booking.Conflict),
		atomic.LoadInt64(&s.booking.Error))
	log.Printf("latency: avg=%s p50=%s p95=%s", avg, p50, p95)
}

// verifyNoDoubleBookings looks for pairs of non-canceled appointments for the
// same professional with intersecting half-open windows.
func verifyNoDoubleBookings(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	err := pool.QueryRow(ctx, `
		SELECT count(*)
		FROM appointments a
		JOIN appointments b
		  ON a.professional_id = b.professional_id
		 AND a.id < b.id
		 AND a.start_time < b.end_time
		 AND b.start_time < a.end_time
		WHERE a.status <> 'canceled'
		  AND b.status <> 'canceled'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("query overlaps: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("found %d overlapping appointment pairs", count)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
