// Package store handles SQLite persistence of session history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/signquiz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrMissingID is returned when a session has no identifier.
var ErrMissingID = errors.New("session id is empty")

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			alphabet TEXT NOT NULL,
			exploration REAL NOT NULL,
			items INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_letter_stats (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			letter TEXT NOT NULL,
			modality TEXT NOT NULL,
			trials INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			error_sum REAL NOT NULL,
			PRIMARY KEY (session_id, letter, modality)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_letter_stats_letter ON session_letter_stats(letter);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// InsertSession stores a completed session and its per-letter outcomes.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, letters []model.LetterStats) (err error) {
	if stats.ID == "" {
		return ErrMissingID
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, mode, started_at, ended_at, alphabet, exploration, items, correct, incorrect, skipped, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.ID,
		stats.Mode,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.Alphabet,
		stats.Exploration,
		stats.Items,
		stats.Correct,
		stats.Incorrect,
		stats.Skipped,
		stats.DurationMs,
	)
	if err != nil {
		return err
	}

	if len(letters) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_letter_stats (session_id, letter, modality, trials, correct, incorrect, error_sum)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ls := range letters {
			if _, err = stmt.ExecContext(ctx, stats.ID, ls.Letter, ls.Modality, ls.Trials, ls.Correct, ls.Incorrect, ls.ErrorSum); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	limit := ""
	if cfg.Last > 0 {
		limit = "LIMIT ?"
		args = append(args, cfg.Last)
	}
	query := fmt.Sprintf(`SELECT id, mode, ended_at, items, correct, incorrect, duration_ms FROM (
		SELECT * FROM sessions
		WHERE %s
		ORDER BY ended_at DESC
		%s
	) ORDER BY ended_at ASC`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &agg.Mode, &endedAt, &agg.Items, &agg.Correct, &agg.Incorrect, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListLetterAggregatesForSessions sums per-letter outcomes across sessions,
// one row per letter and modality.
func (s *Store) ListLetterAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.LetterAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT letter, modality, SUM(trials), SUM(correct), SUM(incorrect), SUM(error_sum)
		FROM session_letter_stats
		WHERE session_id IN (%s)
		GROUP BY letter, modality
		ORDER BY letter, modality`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LetterAggregate
	for rows.Next() {
		var agg model.LetterAggregate
		if err := rows.Scan(&agg.Letter, &agg.Modality, &agg.Trials, &agg.Correct, &agg.Incorrect, &agg.ErrorSum); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteSessionsBefore removes sessions that ended before cutoff and returns how many were removed.
func (s *Store) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ts := cutoff.Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_letter_stats WHERE session_id IN (SELECT id FROM sessions WHERE ended_at < ?)`, ts); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE ended_at < ?`, ts)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
