// Package journal keeps a local SQLite record of every submitted answer and
// the anonymous learner id used when none is configured.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Attempt struct {
	SentenceID int64
	SceneID    int64
	Input      string
	Correct    bool
	Duration   time.Duration
}

// Stat aggregates attempts for a sentence or a scene.
type Stat struct {
	Attempts int
	Correct  int
}

// Ratio is the share of correct attempts, 0 when there are none.
func (s Stat) Ratio() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}

type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %q: %w", path, err)
	}
	// A single connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	createAttemptsTableSQL := `
	CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sentence_id INTEGER NOT NULL,
		scene_id INTEGER NOT NULL,
		input TEXT NOT NULL,
		was_correct BOOLEAN NOT NULL,
		duration_ms INTEGER NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	createAttemptsIndexSQL := `CREATE INDEX IF NOT EXISTS attempts_sentence ON attempts (sentence_id);`
	createMetaTableSQL := `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	for _, stmt := range []string{createAttemptsTableSQL, createAttemptsIndexSQL, createMetaTableSQL} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal: migrate: %w", err)
		}
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores one submission.
func (j *Journal) Record(ctx context.Context, a Attempt) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO attempts (sentence_id, scene_id, input, was_correct, duration_ms) VALUES (?, ?, ?, ?, ?)",
		a.SentenceID, a.SceneID, a.Input, a.Correct, a.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("journal: record attempt for sentence %d: %w", a.SentenceID, err)
	}
	return nil
}

// SentenceStat aggregates the attempts made on one sentence.
func (j *Journal) SentenceStat(ctx context.Context, sentenceID int64) (Stat, error) {
	var st Stat
	var correct sql.NullInt64
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(id), SUM(CASE WHEN was_correct = 1 THEN 1 ELSE 0 END) FROM attempts WHERE sentence_id = ?",
		sentenceID,
	).Scan(&st.Attempts, &correct)
	if err != nil {
		return Stat{}, fmt.Errorf("journal: stat for sentence %d: %w", sentenceID, err)
	}
	st.Correct = int(correct.Int64)
	return st, nil
}

// SceneStats aggregates attempts per scene.
func (j *Journal) SceneStats(ctx context.Context) (map[int64]Stat, error) {
	return j.groupedStats(ctx, `
		SELECT scene_id, COUNT(id), SUM(CASE WHEN was_correct = 1 THEN 1 ELSE 0 END)
		FROM attempts
		GROUP BY scene_id`)
}

// SentenceStats aggregates attempts per sentence within one scene.
func (j *Journal) SentenceStats(ctx context.Context, sceneID int64) (map[int64]Stat, error) {
	return j.groupedStats(ctx, `
		SELECT sentence_id, COUNT(id), SUM(CASE WHEN was_correct = 1 THEN 1 ELSE 0 END)
		FROM attempts
		WHERE scene_id = ?
		GROUP BY sentence_id`, sceneID)
}

func (j *Journal) groupedStats(ctx context.Context, query string, args ...any) (map[int64]Stat, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[int64]Stat)
	for rows.Next() {
		var id int64
		var st Stat
		var correct sql.NullInt64
		if err := rows.Scan(&id, &st.Attempts, &correct); err != nil {
			return nil, fmt.Errorf("journal: scan stat row: %w", err)
		}
		st.Correct = int(correct.Int64)
		stats[id] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate stats: %w", err)
	}
	return stats, nil
}

const userIDKey = "user_id"

// UserID returns the anonymous learner id, generating and storing one on
// first use.
func (j *Journal) UserID(ctx context.Context) (string, error) {
	var id string
	err := j.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", userIDKey).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("journal: read user id: %w", err)
	}

	id = uuid.NewString()
	if _, err := j.db.ExecContext(ctx, "INSERT OR IGNORE INTO meta (key, value) VALUES (?, ?)", userIDKey, id); err != nil {
		return "", fmt.Errorf("journal: store user id: %w", err)
	}
	// Another process may have won the insert.
	if err := j.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", userIDKey).Scan(&id); err != nil {
		return "", fmt.Errorf("journal: read user id: %w", err)
	}
	return id, nil
}
