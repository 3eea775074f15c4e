package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"FoodAdvisor_V0.1/internal/config"
	"FoodAdvisor_V0.1/internal/dataset"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health(ctx context.Context) map[string]string

	// Close terminates the database connection.
	Close()

	// Records reads the food knowledge table. Service satisfies dataset.Source.
	Records(ctx context.Context) ([]dataset.Record, error)
}

const listFoodKnowledge = `
SELECT food_item, condition, recommendation,
       COALESCE(explanation, '') AS explanation,
       COALESCE(biomarkers, '') AS biomarkers
FROM food_knowledge
ORDER BY food_item, condition`

type service struct {
	pool *pgxpool.Pool
	name string
}

// NewService opens a connection pool. The pool connects lazily; call Health to probe it.
func NewService(ctx context.Context, cfg config.DatabaseConfig) (Service, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return &service{pool: pool, name: cfg.Database}, nil
}

// Records implements dataset.Source.
func (s *service) Records(ctx context.Context) ([]dataset.Record, error) {
	rows, err := s.pool.Query(ctx, listFoodKnowledge)
	if err != nil {
		return nil, fmt.Errorf("query food_knowledge: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[dataset.Record])
	if err != nil {
		return nil, fmt.Errorf("scan food_knowledge: %w", err)
	}
	return records, nil
}

// Health checks the health of the database connection.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("db down")
		return stats
	}

	poolStats := s.pool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_conns"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["acquired_conns"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["max_conns"] = strconv.Itoa(int(poolStats.MaxConns()))
	stats["acquire_count"] = strconv.FormatInt(poolStats.AcquireCount(), 10)
	stats["acquire_duration_ms"] = strconv.FormatInt(poolStats.AcquireDuration().Milliseconds(), 10)
	stats["empty_acquire_count"] = strconv.FormatInt(poolStats.EmptyAcquireCount(), 10)

	if poolStats.AcquiredConns() > (poolStats.MaxConns() * 8 / 10) { // 80% capacity
		stats["message"] = "The database connection pool is experiencing heavy load."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() {
	log.Info().Str("database", s.name).Msg("Disconnected from database")
	s.pool.Close()
}
