package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"metv/internal/domain"
	"metv/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Journal using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Journal = (*Repository)(nil)

// New opens (or creates) the journal database at dbPath
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func dsn(dbPath string) string {
	if dbPath == ":memory:" {
		return dbPath
	}
	return dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS discovery_journal (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		adapter INTEGER NOT NULL,
		frontend INTEGER,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_kind ON discovery_journal(kind);
	CREATE INDEX IF NOT EXISTS idx_journal_adapter ON discovery_journal(adapter);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Record appends an entry to the journal
func (r *Repository) Record(ctx context.Context, entry repository.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO discovery_journal (id, kind, adapter, frontend, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, string(entry.Kind), int64(entry.Adapter), uint16PtrToNull(entry.Frontend), formatTime(entry.RecordedAt))
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", entry.Kind, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (r *Repository) Recent(ctx context.Context, limit int) ([]repository.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, adapter, frontend, recorded_at
		FROM discovery_journal
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []repository.Entry
	for rows.Next() {
		var (
			id, kind, recordedAt string
			adapter              int64
			frontend             sql.NullInt64
		)
		if err := rows.Scan(&id, &kind, &adapter, &frontend, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}

		at, err := parseTime(recordedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time of %s: %w", id, err)
		}

		entries = append(entries, repository.Entry{
			ID:         id,
			Kind:       domain.EventKind(kind),
			Adapter:    uint16(adapter),
			Frontend:   nullToUint16Ptr(frontend),
			RecordedAt: at,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal: %w", err)
	}
	return entries, nil
}

// CountByKind returns the number of entries per event kind
func (r *Repository) CountByKind(ctx context.Context) (map[domain.EventKind]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM discovery_journal GROUP BY kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count journal: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.EventKind]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[domain.EventKind(kind)] = n
	}
	return counts, rows.Err()
}

// Prune deletes entries recorded before cutoff and returns how many
func (r *Repository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM discovery_journal WHERE recorded_at < ?
	`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}
