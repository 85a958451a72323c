// Package history persists one row per sync flush attempt in PostgreSQL,
// giving operators a queryable record of when each working directory last
// synced and how the attempt ended.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/groblegark/beadviz/internal/idgen"
	"github.com/groblegark/beadviz/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Record is one sync flush attempt.
type Record struct {
	ID         string           `json:"id"`
	Dir        string           `json:"dir"`
	Message    string           `json:"message"`
	Status     model.SyncStatus `json:"status"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

// Store records sync attempts in a PostgreSQL database.
type Store struct {
	db *sql.DB
}

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStart inserts a new attempt in the syncing state and returns its ID.
func (s *Store) RecordStart(ctx context.Context, dir, message string) (string, error) {
	id, err := idgen.NewSyncID()
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sync_attempts (id, dir, message, status, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, dir, message, string(model.SyncSyncing), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("record sync start: %w", err)
	}
	return id, nil
}

// RecordFinish marks an attempt finished with its terminal status. An empty
// errMsg is stored as NULL.
func (s *Store) RecordFinish(ctx context.Context, id string, status model.SyncStatus, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sync_attempts
		SET status = $2, error = $3, finished_at = $4
		WHERE id = $1`,
		id, string(status), nullString(errMsg), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record sync finish: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record sync finish: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record sync finish: attempt %s not found", id)
	}
	return nil
}

// List returns the most recent attempts for dir, newest first, capped at
// limit (default 50 when limit <= 0).
func (s *Store) List(ctx context.Context, dir string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dir, message, status, error, started_at, finished_at
		FROM sync_attempts
		WHERE dir = $1
		ORDER BY started_at DESC
		LIMIT $2`,
		dir, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sync attempts: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sync attempts: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var (
		r        Record
		status   string
		errMsg   sql.NullString
		finished sql.NullTime
	)
	if err := rows.Scan(&r.ID, &r.Dir, &r.Message, &status, &errMsg, &r.StartedAt, &finished); err != nil {
		return nil, fmt.Errorf("scan sync attempt: %w", err)
	}
	r.Status = model.SyncStatus(status)
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
