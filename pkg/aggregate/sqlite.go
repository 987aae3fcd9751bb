package aggregate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS learner_aggregates (
    learner_id       TEXT NOT NULL,
    activity_id      TEXT NOT NULL,
    interactions     INTEGER NOT NULL DEFAULT 0,
    blocked          INTEGER NOT NULL DEFAULT 0,
    mean_delegation  REAL NOT NULL DEFAULT 0,
    mean_involvement REAL NOT NULL DEFAULT 0,
    last_interaction TIMESTAMP NOT NULL,
    PRIMARY KEY (learner_id, activity_id)
);
`

// SQLiteStore persists aggregates in a SQLite database. The pure-Go driver
// keeps the binary cgo-free for this low-write-rate table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the aggregate database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating aggregate db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening aggregate db: %w", err)
	}

	// Serialize writers; the read-modify-write in Record is not atomic at
	// the SQL level.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating aggregate schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record folds one exchange into the learner/activity aggregate.
func (s *SQLiteStore) Record(ctx context.Context, sample Sample) error {
	snap, err := s.Get(ctx, sample.LearnerID, sample.ActivityID)
	if errors.Is(err, ErrNotFound) {
		snap = &Snapshot{LearnerID: sample.LearnerID, ActivityID: sample.ActivityID}
	} else if err != nil {
		return err
	}

	fold(snap, sample, time.Now().UTC())

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO learner_aggregates
            (learner_id, activity_id, interactions, blocked, mean_delegation, mean_involvement, last_interaction)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (learner_id, activity_id) DO UPDATE SET
            interactions     = excluded.interactions,
            blocked          = excluded.blocked,
            mean_delegation  = excluded.mean_delegation,
            mean_involvement = excluded.mean_involvement,
            last_interaction = excluded.last_interaction`,
		snap.LearnerID, snap.ActivityID, snap.Interactions, snap.Blocked,
		snap.MeanDelegation, snap.MeanInvolvement, snap.LastInteraction)
	if err != nil {
		return fmt.Errorf("recording aggregate: %w", err)
	}
	return nil
}

// Get returns the current snapshot, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, learnerID, activityID string) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.db.QueryRowContext(ctx, `
        SELECT learner_id, activity_id, interactions, blocked, mean_delegation, mean_involvement, last_interaction
        FROM learner_aggregates
        WHERE learner_id = ? AND activity_id = ?`,
		learnerID, activityID).Scan(
		&snap.LearnerID, &snap.ActivityID, &snap.Interactions, &snap.Blocked,
		&snap.MeanDelegation, &snap.MeanInvolvement, &snap.LastInteraction)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading aggregate: %w", err)
	}
	return snap, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
