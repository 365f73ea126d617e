// Package store persists fill and PnL records emitted by the scanner.
// Writes are best-effort: a failing or slow database must never block or
// unwind a trade, so every FillStore method is expected to be called from
// a fire-and-forget goroutine rather than the scanner's own tick path.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"arbitrage/internal/executor"
)

// FillRecord is one persisted leg of an attempted arbitrage.
type FillRecord struct {
	PairSymbol string
	Venue      string
	Side       string
	Price      float64
	Qty        float64
	Cost       float64
	Fee        float64
	OK         bool
	ExecutedAt time.Time
}

// PnLSnapshot is written once per successful paired execution, after the
// in-memory cumulative PnL has been updated.
type PnLSnapshot struct {
	Symbol           string
	CumulativeNetUsd float64
	RecordedAt       time.Time
}

// FillStore is the persistence contract the scanner writes through.
type FillStore interface {
	RecordFill(rec FillRecord) error
	RecordPnL(snap PnLSnapshot) error
	Close() error
}

// FillFromExecutor converts an executor.Fill plus its pair symbol into a
// FillRecord ready for RecordFill.
func FillFromExecutor(pairSymbol string, f executor.Fill) FillRecord {
	return FillRecord{
		PairSymbol: pairSymbol,
		Venue:      f.Venue,
		Side:       f.Side.String(),
		Price:      f.Price,
		Qty:        f.Qty,
		Cost:       f.Cost,
		Fee:        f.Fee,
		OK:         f.OK,
		ExecutedAt: time.UnixMilli(f.Timestamp),
	}
}

// PostgresStore is a lib/pq-backed append-only store for fills and PnL
// snapshots.
type PostgresStore struct {
	db *sql.DB
}

// Open connects to Postgres using the given DSN and verifies connectivity
// with Ping. The fills and pnl_snapshots tables must already exist; Open
// does not create them.
func Open(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// RecordFill inserts one fill row.
func (s *PostgresStore) RecordFill(rec FillRecord) error {
	const query = `
		INSERT INTO fills (pair_symbol, venue, side, price, qty, cost, fee, ok, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.Exec(query,
		rec.PairSymbol, rec.Venue, rec.Side, rec.Price, rec.Qty, rec.Cost, rec.Fee, rec.OK, rec.ExecutedAt)
	if err != nil {
		return fmt.Errorf("store: record fill: %w", err)
	}
	return nil
}

// RecordPnL inserts one PnL snapshot row.
func (s *PostgresStore) RecordPnL(snap PnLSnapshot) error {
	const query = `
		INSERT INTO pnl_snapshots (symbol, cumulative_net_usd, recorded_at)
		VALUES ($1, $2, $3)`

	_, err := s.db.Exec(query, snap.Symbol, snap.CumulativeNetUsd, snap.RecordedAt)
	if err != nil {
		return fmt.Errorf("store: record pnl: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// NoopStore discards every write. It is used when no database host is
// configured, so the scanner's persistence calls remain unconditional.
type NoopStore struct{}

func (NoopStore) RecordFill(FillRecord) error { return nil }
func (NoopStore) RecordPnL(PnLSnapshot) error { return nil }
func (NoopStore) Close() error                { return nil }
