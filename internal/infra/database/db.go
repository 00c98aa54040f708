package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq" // PostgreSQL driver

	"scholarship_admin/internal/app"
	"scholarship_admin/internal/domain/application"
	"scholarship_admin/internal/domain/cycle"
	"scholarship_admin/internal/domain/errs"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// pq error codes the repositories translate.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

//go:embed schema.sql
var schema string

// NewPostgresConnection creates and returns a new PostgreSQL database connection.
// It also pings the database to ensure connectivity.
func NewPostgresConnection(ctx context.Context, dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the tables and indexes if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore hands out repositories bound to the pool, or to one
// transaction inside InTx.
type PostgresStore struct {
	db *sql.DB
}

var _ app.TxStore = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Cycles() cycle.Repository { return NewPostgresCycleRepository(s.db) }
func (s *PostgresStore) Applications() application.Repository {
	return NewPostgresApplicationRepository(s.db)
}
func (s *PostgresStore) Cascade() app.CascadeStore { return &postgresCascadeStore{db: s.db} }

// InTx commits when fn returns nil and rolls back otherwise.
func (s *PostgresStore) InTx(ctx context.Context, fn func(tx app.Store) error) error {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	if err := fn(txStore{q: txn}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type txStore struct{ q queryer }

func (t txStore) Cycles() cycle.Repository { return NewPostgresCycleRepository(t.q) }
func (t txStore) Applications() application.Repository {
	return NewPostgresApplicationRepository(t.q)
}
func (t txStore) Cascade() app.CascadeStore { return &postgresCascadeStore{db: t.q} }

// translate maps constraint violations onto the domain error kinds.
func translate(err error, what string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			if pqErr.Constraint == "applications_live_per_user" {
				return fmt.Errorf("%w: %s", errs.ErrDuplicateApplication, what)
			}
			return fmt.Errorf("%w: %s violates %s", errs.ErrConflictingResource, what, pqErr.Constraint)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s references a missing row (%s)", errs.ErrConflictingResource, what, pqErr.Constraint)
		}
	}
	return fmt.Errorf("error %s: %w", what, err)
}

// rowScanner is *sql.Row or *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
