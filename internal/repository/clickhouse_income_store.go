package repository

import (
	"context"
	"database/sql"
	"fmt"

	"TradeScope/internal/domain/models"
	domainrepo "TradeScope/internal/domain/repository"
	"TradeScope/pkg/clickhouse"
)

// Schema holds the idempotent DDL for the fundamentals database. The
// income table is append-only; ReplacingMergeTree collapses restatements
// of the same fiscal period in favor of the newest insert.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS income_statements (
		ticker        LowCardinality(String),
		fiscal_period String,
		report_date   Date,
		net_income    Float64,
		inserted_at   DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(inserted_at)
	ORDER BY (ticker, report_date)`,
}

// ClickHouseIncomeStore reads reported income statements from ClickHouse.
type ClickHouseIncomeStore struct {
	client *clickhouse.Client
}

// NewClickHouseIncomeStore creates the store and ensures the schema.
func NewClickHouseIncomeStore(ctx context.Context, client *clickhouse.Client) (*ClickHouseIncomeStore, error) {
	if err := client.InitSchema(ctx, Schema); err != nil {
		return nil, fmt.Errorf("income store schema: %w", err)
	}
	return &ClickHouseIncomeStore{client: client}, nil
}

var _ domainrepo.IncomeStore = (*ClickHouseIncomeStore)(nil)

// LatestNetIncome returns the most recently reported common net income
// for a ticker. No rows is an upstream-data error, never a silent zero.
func (s *ClickHouseIncomeStore) LatestNetIncome(ctx context.Context, ticker string) (float64, error) {
	const q = `
		SELECT net_income
		FROM income_statements FINAL
		WHERE ticker = ?
		ORDER BY report_date DESC
		LIMIT 1`

	var netIncome float64
	err := s.client.DB().QueryRowContext(ctx, q, ticker).Scan(&netIncome)
	if err == sql.ErrNoRows {
		return 0, models.UpstreamErrorf("no income statements for %s", ticker)
	}
	if err != nil {
		return 0, fmt.Errorf("query net income for %s: %w", ticker, err)
	}
	return netIncome, nil
}

// InsertStatement records one reported income statement.
func (s *ClickHouseIncomeStore) InsertStatement(ctx context.Context, ticker, fiscalPeriod string, reportDate string, netIncome float64) error {
	const q = `
		INSERT INTO income_statements (ticker, fiscal_period, report_date, net_income)
		VALUES (?, ?, ?, ?)`

	if _, err := s.client.DB().ExecContext(ctx, q, ticker, fiscalPeriod, reportDate, netIncome); err != nil {
		return fmt.Errorf("insert income statement for %s: %w", ticker, err)
	}
	return nil
}

// Health checks database connectivity.
func (s *ClickHouseIncomeStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}
