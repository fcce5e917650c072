package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/reportkit/internal/config"
	"github.com/JonMunkholm/reportkit/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS scheduled_reports (
	id               UUID PRIMARY KEY,
	index_pattern    TEXT NOT NULL,
	visualization_id TEXT NOT NULL,
	title            TEXT NOT NULL,
	request          TEXT NOT NULL,
	duration         INTEGER NOT NULL,
	duration_unit    TEXT NOT NULL,
	receiver         TEXT NOT NULL,
	time_filter      INTEGER NOT NULL,
	time_filter_unit TEXT NOT NULL,
	columns          TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const reportColumns = `id, index_pattern, visualization_id, title, request, duration,
	duration_unit, receiver, time_filter, time_filter_unit, columns, created_at`

// PostgresStore keeps scheduled reports in the scheduled_reports table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a connection pool from cfg and verifies connectivity.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewPostgresStore wraps pool. Call Migrate before first use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the scheduled_reports table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create scheduled_reports table: %w", err)
	}
	return nil
}

// Create implements core.ReportStore.
func (s *PostgresStore) Create(ctx context.Context, report core.ScheduledReport) error {
	id, err := toPgUUID(report.ID)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO scheduled_reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id,
		report.Index,
		report.VisualizationID,
		report.Title,
		report.Request,
		report.Duration,
		string(report.DurationUnit),
		report.Receiver,
		report.TimeFilter,
		string(report.TimeFilterUnit),
		report.Columns,
		pgtype.Timestamptz{Time: report.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert scheduled report: %w", err)
	}
	return nil
}

// Get implements core.ReportStore.
func (s *PostgresStore) Get(ctx context.Context, id string) (core.ScheduledReport, error) {
	pgID, err := toPgUUID(id)
	if err != nil {
		return core.ScheduledReport{}, err
	}

	rows, err := s.pool.Query(ctx, `SELECT `+reportColumns+` FROM scheduled_reports WHERE id = $1`, pgID)
	if err != nil {
		return core.ScheduledReport{}, fmt.Errorf("query scheduled report: %w", err)
	}

	report, err := pgx.CollectExactlyOneRow(rows, scanReport)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ScheduledReport{}, core.ErrReportNotFound
	}
	if err != nil {
		return core.ScheduledReport{}, fmt.Errorf("scan scheduled report: %w", err)
	}
	return report, nil
}

// List implements core.ReportStore. Reports are ordered by creation time.
func (s *PostgresStore) List(ctx context.Context) ([]core.ScheduledReport, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+reportColumns+` FROM scheduled_reports ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query scheduled reports: %w", err)
	}

	reports, err := pgx.CollectRows(rows, scanReport)
	if err != nil {
		return nil, fmt.Errorf("scan scheduled reports: %w", err)
	}
	return reports, nil
}

// Delete implements core.ReportStore.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	pgID, err := toPgUUID(id)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM scheduled_reports WHERE id = $1`, pgID)
	if err != nil {
		return fmt.Errorf("delete scheduled report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrReportNotFound
	}
	return nil
}

// Ping implements core.ReportStore.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanReport(row pgx.CollectableRow) (core.ScheduledReport, error) {
	var (
		r          core.ScheduledReport
		id         pgtype.UUID
		unit       string
		filterUnit string
		createdAt  time.Time
	)
	err := row.Scan(
		&id,
		&r.Index,
		&r.VisualizationID,
		&r.Title,
		&r.Request,
		&r.Duration,
		&unit,
		&r.Receiver,
		&r.TimeFilter,
		&filterUnit,
		&r.Columns,
		&createdAt,
	)
	if err != nil {
		return core.ScheduledReport{}, err
	}

	r.ID = uuid.UUID(id.Bytes).String()
	r.DurationUnit = core.DurationUnit(unit)
	r.TimeFilterUnit = core.DurationUnit(filterUnit)
	r.CreatedAt = createdAt.UTC()
	return r, nil
}

// toPgUUID converts a report id. Malformed ids can never match a row.
func toPgUUID(id string) (pgtype.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %q", core.ErrReportNotFound, id)
	}
	return pgtype.UUID{Bytes: u, Valid: true}, nil
}
