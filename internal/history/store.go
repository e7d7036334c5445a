// Package history keeps a log of yield predictions in SQLite or Postgres.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fasalvikas/fasal-vikas/internal/logging"
	"github.com/fasalvikas/fasal-vikas/internal/models"
)

// ErrNotFound is returned by Get for an unknown ID
var ErrNotFound = errors.New("prediction not found")

// MaxLimit caps Recent
const MaxLimit = 500

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id              TEXT PRIMARY KEY,
	created_at      TIMESTAMP NOT NULL,
	state           TEXT NOT NULL,
	crop            TEXT NOT NULL,
	season          TEXT NOT NULL,
	ph              DOUBLE PRECISION NOT NULL,
	rainfall        DOUBLE PRECISION NOT NULL,
	temperature     DOUBLE PRECISION NOT NULL,
	area            DOUBLE PRECISION NOT NULL,
	production      DOUBLE PRECISION NOT NULL,
	predicted_yield DOUBLE PRECISION NOT NULL,
	language        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions (created_at);
`

// Store persists predictions
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to driver ("sqlite3" or "postgres") at dsn and creates the
// schema if needed.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite3":
		if !strings.Contains(dsn, "_busy_timeout") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_busy_timeout=5000"
		}
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logging.Info().Str("driver", driver).Msg("Prediction history ready")
	return s, nil
}

func (s *Store) createTables(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create history schema: %w", err)
		}
	}
	return nil
}

// Record stores p. Empty ID and zero CreatedAt are filled in; the stored
// record is returned.
func (s *Store) Record(ctx context.Context, p models.Prediction) (models.Prediction, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO predictions (
			id, created_at, state, crop, season,
			ph, rainfall, temperature, area, production,
			predicted_yield, language
		) VALUES (
			:id, :created_at, :state, :crop, :season,
			:ph, :rainfall, :temperature, :area, :production,
			:predicted_yield, :language
		)`

	if _, err := s.db.NamedExecContext(ctx, query, p); err != nil {
		return p, fmt.Errorf("failed to record prediction: %w", err)
	}
	return p, nil
}

// Recent returns up to limit predictions, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]models.Prediction, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}

	query := s.db.Rebind(`SELECT * FROM predictions ORDER BY created_at DESC, id LIMIT ?`)

	out := []models.Prediction{}
	if err := s.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return out, nil
}

// Get returns one prediction by ID
func (s *Store) Get(ctx context.Context, id string) (models.Prediction, error) {
	var p models.Prediction
	query := s.db.Rebind(`SELECT * FROM predictions WHERE id = ?`)

	if err := s.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
