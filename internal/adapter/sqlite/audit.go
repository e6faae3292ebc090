package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/opsdeck/tenantctl/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Compile-time check: AuditStore implements domain.AuditLog.
var _ domain.AuditLog = (*AuditStore)(nil)

// AuditStore persists the operator action history in SQLite. The platform
// services own all tenant state; this store only keeps the local audit
// trail fed by the job queue.
type AuditStore struct {
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(dataSourceName string) (*AuditStore, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and
// returns a ready store. Use this when the *sql.DB has been
// pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*AuditStore, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &AuditStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *AuditStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters
// (e.g., river).
func (s *AuditStore) DB() *sql.DB {
	return s.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"

func (s *AuditStore) Append(ctx context.Context, e domain.AuditEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (action, actor, tenant_id, tenant_name, detail, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Action, e.Actor, e.TenantID, e.TenantName, e.Detail,
		e.OccurredAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting audit event: %w", err)
	}
	return nil
}

func (s *AuditStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT action, actor, tenant_id, tenant_name, detail, occurred_at
		 FROM audit_events WHERE tenant_id = ?
		 ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		tenantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var e domain.AuditEvent
		var occurredAt string
		if err := rows.Scan(&e.Action, &e.Actor, &e.TenantID, &e.TenantName, &e.Detail, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		e.OccurredAt, _ = time.Parse(timeFormat, occurredAt)
		events = append(events, e)
	}

	return events, rows.Err()
}
