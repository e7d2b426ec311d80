package repository

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx so repositories can join a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// JournalEntry is one persisted alert lifecycle event.
type JournalEntry struct {
	ID        string
	AlertID   string
	Kind      string
	Title     string
	Message   string
	Button    int
	Pending   int
	CreatedAt time.Time
}

// JournalFilter narrows List. Zero values mean no filter.
type JournalFilter struct {
	Kind    string
	AlertID string
	Since   time.Time
	Limit   int
}

// ChargingSession is the last known state of a charging session.
type ChargingSession struct {
	ID        string
	Site      string
	Connector int
	State     string
	EnergyWh  int64
	Failure   string
	StartedAt time.Time
	UpdatedAt time.Time
}
