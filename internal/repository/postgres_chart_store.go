package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/domain/repository"
	applogger "Astrolabe/pkg/logger"
)

const postgresChartSchema = `
CREATE TABLE IF NOT EXISTS charts (
    id         TEXT PRIMARY KEY,
    subject    TEXT NOT NULL DEFAULT '',
    document   JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
)`

// PostgresChartStore keeps each chart as one JSONB document.
type PostgresChartStore struct {
	db *sqlx.DB
	l  *applogger.Logger
}

func NewPostgresChartStore(db *sqlx.DB, l *applogger.Logger) *PostgresChartStore {
	return &PostgresChartStore{db: db, l: l}
}

type chartRow struct {
	ID        string    `db:"id"`
	Subject   string    `db:"subject"`
	Document  []byte    `db:"document"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *PostgresChartStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresChartSchema); err != nil {
		return fmt.Errorf("create charts table: %w", err)
	}
	return nil
}

func (s *PostgresChartStore) Save(ctx context.Context, c *models.StoredChart) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	const q = `
        INSERT INTO charts (id, subject, document, created_at)
        VALUES (:id, :subject, :document, :created_at)
        ON CONFLICT (id) DO UPDATE
        SET subject = EXCLUDED.subject, document = EXCLUDED.document`
	_, err = s.db.NamedExecContext(ctx, q, chartRow{
		ID:        c.ID,
		Subject:   c.Subject,
		Document:  doc,
		CreatedAt: c.CreatedAt,
	})
	if err != nil {
		s.l.Error("postgres save chart failed", applogger.String("chart_id", c.ID), applogger.Error(err))
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

func (s *PostgresChartStore) Get(ctx context.Context, id string) (*models.StoredChart, error) {
	const q = `SELECT id, subject, document, created_at FROM charts WHERE id = $1`
	var row chartRow
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrChartNotFound
		}
		return nil, fmt.Errorf("get chart: %w", err)
	}
	var c models.StoredChart
	if err := json.Unmarshal(row.Document, &c); err != nil {
		return nil, fmt.Errorf("decode chart %s: %w", id, err)
	}
	return &c, nil
}

func (s *PostgresChartStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresChartStore) Close() error {
	return s.db.Close()
}

var _ repository.ChartStore = (*PostgresChartStore)(nil)
