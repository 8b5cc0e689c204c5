package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS analyses (
        id TEXT PRIMARY KEY, -- UUID
        filename TEXT NOT NULL,
        provider TEXT NOT NULL,
        model TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS sentiment_results (
        analysis_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        message TEXT NOT NULL,
        label TEXT NOT NULL,
        score REAL NOT NULL CHECK (score >= 0 AND score <= 1),
        PRIMARY KEY (analysis_id, position),
        FOREIGN KEY (analysis_id) REFERENCES analyses (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// CreateAnalysis stores the analysis and all of its results in one
// transaction. ID and CreatedAt are assigned here.
func (s *SQLiteStore) CreateAnalysis(ctx context.Context, a *Analysis) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin analysis insert: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO analyses (id, filename, provider, model, created_at) VALUES (?, ?, ?, ?, ?)",
		id, a.Filename, a.Provider, a.Model, now)
	if err != nil {
		return fmt.Errorf("failed to execute analysis insert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO sentiment_results (analysis_id, position, message, label, score) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range a.Results {
		if _, err := stmt.ExecContext(ctx, id, r.Position, r.Message, r.Label, r.Score); err != nil {
			return fmt.Errorf("failed to execute result insert at position %d: %w", r.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	a.ID = id
	a.CreatedAt = now
	return nil
}

// GetAnalysis loads an analysis and its results in position order.
// Counts are left for the caller to derive. Returns nil, nil when the id
// is unknown.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	var a Analysis
	err := s.db.QueryRowContext(ctx,
		"SELECT id, filename, provider, model, created_at FROM analyses WHERE id = ?", id).
		Scan(&a.ID, &a.Filename, &a.Provider, &a.Model, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT position, message, label, score FROM sentiment_results WHERE analysis_id = ? ORDER BY position ASC", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	a.Results = []SentimentResult{}
	for rows.Next() {
		var r SentimentResult
		if err := rows.Scan(&r.Position, &r.Message, &r.Label, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		a.Results = append(a.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read result rows: %w", err)
	}
	return &a, nil
}

// ListAnalyses returns the newest analyses first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]AnalysisSummary, error) {
	query := `
        SELECT a.id, a.filename, a.provider, a.model, a.created_at,
            (SELECT COUNT(*) FROM sentiment_results r WHERE r.analysis_id = a.id),
            (SELECT r.label FROM sentiment_results r WHERE r.analysis_id = a.id
                GROUP BY r.label ORDER BY COUNT(*) DESC, MIN(r.position) ASC LIMIT 1)
        FROM analyses a
        ORDER BY a.created_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	summaries := []AnalysisSummary{}
	for rows.Next() {
		var sum AnalysisSummary
		var top sql.NullString
		if err := rows.Scan(&sum.ID, &sum.Filename, &sum.Provider, &sum.Model, &sum.CreatedAt, &sum.MessageCount, &top); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		if top.Valid {
			sum.TopLabel = top.String
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read analysis rows: %w", err)
	}
	return summaries, nil
}

// DeleteAnalysis removes an analysis and its results. Reports false when
// nothing matched the id.
func (s *SQLiteStore) DeleteAnalysis(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin analysis delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sentiment_results WHERE analysis_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete results: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete analysis: %w", err)
	}
	affected, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit analysis delete: %w", err)
	}
	return affected > 0, nil
}
