package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/domain/repository"
	pkgch "Astrolabe/pkg/clickhouse"
	applogger "Astrolabe/pkg/logger"
)

// ClickHouseSchema creates the chart tables. chart_aspects has one row per
// aspect so aspect frequencies can be queried without decoding documents.
var ClickHouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS charts (
        id         String,
        subject    String,
        created_at DateTime64(3, 'UTC'),
        document   String
    ) ENGINE = ReplacingMergeTree
    ORDER BY id`,
	`CREATE TABLE IF NOT EXISTS chart_aspects (
        chart_id    String,
        created_at  DateTime64(3, 'UTC'),
        body_a      LowCardinality(String),
        body_b      LowCardinality(String),
        aspect      LowCardinality(String),
        nature      LowCardinality(String),
        angle       Float64,
        orb         Float64,
        strength    Float64
    ) ENGINE = MergeTree
    ORDER BY (aspect, created_at)`,
}

// ClickHouseChartStore writes charts to ClickHouse.
type ClickHouseChartStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewClickHouseChartStore(ch *pkgch.Client, l *applogger.Logger) *ClickHouseChartStore {
	return &ClickHouseChartStore{ch: ch, db: ch.DB(), l: l}
}

func (s *ClickHouseChartStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, ClickHouseSchema)
}

func (s *ClickHouseChartStore) Save(ctx context.Context, c *models.StoredChart) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO charts (id, subject, created_at, document) VALUES (?, ?, ?, ?)",
		c.ID, c.Subject, c.CreatedAt, string(doc),
	); err != nil {
		s.l.Error("clickhouse insert chart failed", applogger.String("chart_id", c.ID), applogger.Error(err))
		return fmt.Errorf("insert chart: %w", err)
	}
	if len(c.Chart.Aspects) == 0 {
		return nil
	}
	if err := s.insertAspects(ctx, c); err != nil {
		s.l.Error("clickhouse insert aspects failed", applogger.String("chart_id", c.ID), applogger.Error(err))
		return err
	}
	return nil
}

// insertAspects sends all rows as one batch.
func (s *ClickHouseChartStore) insertAspects(ctx context.Context, c *models.StoredChart) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin aspects batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chart_aspects (chart_id, created_at, body_a, body_b, aspect, nature, angle, orb, strength)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare aspects batch: %w", err)
	}
	defer stmt.Close()

	for _, a := range c.Chart.Aspects {
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.CreatedAt, a.BodyA.String(), a.BodyB.String(),
			string(a.Type), string(a.Nature), a.AngularDifference, a.OrbDeviation, a.Strength,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append aspect: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("send aspects batch: %w", err)
	}
	return nil
}

func (s *ClickHouseChartStore) Get(ctx context.Context, id string) (*models.StoredChart, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM charts FINAL WHERE id = ? LIMIT 1", id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrChartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chart: %w", err)
	}
	var c models.StoredChart
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, fmt.Errorf("decode chart %s: %w", id, err)
	}
	return &c, nil
}

func (s *ClickHouseChartStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *ClickHouseChartStore) Close() error {
	return s.ch.Close()
}

var _ repository.ChartStore = (*ClickHouseChartStore)(nil)
