package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"cognitia-edu/minerva/pkg/trace"
)

// SQLiteConfig contains configuration for the SQLite trace storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better read concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/traces.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements trace.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, applies the schema, and verifies the
// schema version.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "trace.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, trace.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite trace storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the schema and pragmas.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return trace.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return trace.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return trace.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return trace.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return trace.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return trace.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// SaveTrace inserts an immutable trace row.
func (s *SQLiteStorage) SaveTrace(ctx context.Context, t *trace.CognitiveTrace) error {
	if t == nil || t.ID == "" {
		return trace.NewStorageError("sqlite", "save_trace", &trace.ValidationError{Field: "id", Reason: "trace id is required"})
	}

	contextJSON, _ := json.Marshal(t.Context)

	query := `
		INSERT INTO traces (
			id, session_id, learner_id, activity_id,
			depth, kind, content, cognitive_state, intent, justification,
			ai_involvement, context, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.SessionID, t.LearnerID, t.ActivityID,
		string(t.Depth), string(t.Kind), t.Content, string(t.CognitiveState), t.Intent, t.Justification,
		t.AIInvolvement, string(contextJSON), t.CreatedAt,
	)
	if err != nil {
		return trace.NewStorageError("sqlite", "save_trace", err)
	}
	return nil
}

// SaveRisk inserts a risk finding after validating invariants.
func (s *SQLiteStorage) SaveRisk(ctx context.Context, r *trace.Risk) error {
	if r == nil {
		return trace.NewStorageError("sqlite", "save_risk", &trace.ValidationError{Field: "risk", Reason: "risk is nil"})
	}
	if err := r.Validate(); err != nil {
		return trace.NewStorageError("sqlite", "save_risk", err)
	}

	evidence, _ := json.Marshal(r.Evidence)
	recommendations, _ := json.Marshal(r.Recommendations)
	traceIDs, _ := json.Marshal(r.TraceIDs)

	query := `
		INSERT INTO risks (
			id, session_id, learner_id, activity_id,
			kind, severity, dimension, description,
			evidence, recommendations, trace_ids,
			detected_at, resolved
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.SessionID, r.LearnerID, r.ActivityID,
		r.Kind, string(r.Severity), string(r.Dimension), r.Description,
		string(evidence), string(recommendations), string(traceIDs),
		r.DetectedAt, r.Resolved,
	)
	if err != nil {
		return trace.NewStorageError("sqlite", "save_risk", err)
	}
	return nil
}

// RecentTraces returns up to limit traces for a session, oldest first.
func (s *SQLiteStorage) RecentTraces(ctx context.Context, sessionID string, limit int) ([]*trace.CognitiveTrace, error) {
	if limit <= 0 {
		limit = 100
	}

	// Select the newest rows, then reverse so callers see oldest first.
	query := `
		SELECT id, session_id, learner_id, activity_id,
			depth, kind, content, cognitive_state, intent, justification,
			ai_involvement, context, created_at
		FROM traces
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, trace.NewStorageError("sqlite", "recent_traces", err)
	}
	defer rows.Close()

	var traces []*trace.CognitiveTrace
	for rows.Next() {
		t, err := scanTrace(rows)
		if err != nil {
			return nil, trace.NewStorageError("sqlite", "recent_traces_scan", err)
		}
		traces = append(traces, t)
	}
	if err := rows.Err(); err != nil {
		return nil, trace.NewStorageError("sqlite", "recent_traces_rows", err)
	}

	// Reverse to oldest-first order.
	for i, j := 0, len(traces)-1; i < j; i, j = i+1, j-1 {
		traces[i], traces[j] = traces[j], traces[i]
	}
	return traces, nil
}

// ListRisks returns all risk findings for a session, oldest first.
func (s *SQLiteStorage) ListRisks(ctx context.Context, sessionID string) ([]*trace.Risk, error) {
	query := `
		SELECT id, session_id, learner_id, activity_id,
			kind, severity, dimension, description,
			evidence, recommendations, trace_ids,
			detected_at, resolved
		FROM risks
		WHERE session_id = ?
		ORDER BY detected_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, trace.NewStorageError("sqlite", "list_risks", err)
	}
	defer rows.Close()

	var risks []*trace.Risk
	for rows.Next() {
		r, err := scanRisk(rows)
		if err != nil {
			return nil, trace.NewStorageError("sqlite", "list_risks_scan", err)
		}
		risks = append(risks, r)
	}
	if err := rows.Err(); err != nil {
		return nil, trace.NewStorageError("sqlite", "list_risks_rows", err)
	}
	return risks, nil
}

// SetRiskResolved toggles the resolution flag on a finding.
func (s *SQLiteStorage) SetRiskResolved(ctx context.Context, riskID string, resolved bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE risks SET resolved = ? WHERE id = ?`, resolved, riskID)
	if err != nil {
		return trace.NewStorageError("sqlite", "set_risk_resolved", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return trace.NewStorageError("sqlite", "set_risk_resolved", err)
	}
	if affected == 0 {
		return trace.NewStorageError("sqlite", "set_risk_resolved", &trace.NotFoundError{Entity: "risk", ID: riskID})
	}
	return nil
}

// DeleteTracesBefore removes traces created before the cutoff.
func (s *SQLiteStorage) DeleteTracesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM traces WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, trace.NewStorageError("sqlite", "delete_traces", err)
	}
	return res.RowsAffected()
}

// DeleteResolvedRisksBefore removes resolved findings detected before the cutoff.
func (s *SQLiteStorage) DeleteResolvedRisksBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM risks WHERE resolved = 1 AND detected_at < ?`, cutoff)
	if err != nil {
		return 0, trace.NewStorageError("sqlite", "delete_risks", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// scanTrace scans a trace row from the traces SELECT column order.
func scanTrace(rows *sql.Rows) (*trace.CognitiveTrace, error) {
	var (
		t           trace.CognitiveTrace
		depth       string
		kind        string
		state       string
		intent      sql.NullString
		just        sql.NullString
		contextJSON sql.NullString
	)

	err := rows.Scan(
		&t.ID, &t.SessionID, &t.LearnerID, &t.ActivityID,
		&depth, &kind, &t.Content, &state, &intent, &just,
		&t.AIInvolvement, &contextJSON, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Depth = trace.Depth(depth)
	t.Kind = trace.Kind(kind)
	t.CognitiveState = trace.CognitiveState(state)
	t.Intent = intent.String
	t.Justification = just.String

	if contextJSON.Valid && contextJSON.String != "" && contextJSON.String != "null" {
		if err := json.Unmarshal([]byte(contextJSON.String), &t.Context); err != nil {
			return nil, fmt.Errorf("unmarshal trace context: %w", err)
		}
	}

	return &t, nil
}

// scanRisk scans a risk row from the risks SELECT column order.
func scanRisk(rows *sql.Rows) (*trace.Risk, error) {
	var (
		r               trace.Risk
		severity        string
		dimension       string
		evidence        sql.NullString
		recommendations sql.NullString
		traceIDs        string
	)

	err := rows.Scan(
		&r.ID, &r.SessionID, &r.LearnerID, &r.ActivityID,
		&r.Kind, &severity, &dimension, &r.Description,
		&evidence, &recommendations, &traceIDs,
		&r.DetectedAt, &r.Resolved,
	)
	if err != nil {
		return nil, err
	}

	r.Severity = trace.Severity(severity)
	r.Dimension = trace.Dimension(dimension)

	if evidence.Valid && evidence.String != "null" {
		if err := json.Unmarshal([]byte(evidence.String), &r.Evidence); err != nil {
			return nil, fmt.Errorf("unmarshal risk evidence: %w", err)
		}
	}
	if recommendations.Valid && recommendations.String != "null" {
		if err := json.Unmarshal([]byte(recommendations.String), &r.Recommendations); err != nil {
			return nil, fmt.Errorf("unmarshal risk recommendations: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(traceIDs), &r.TraceIDs); err != nil {
		return nil, fmt.Errorf("unmarshal risk trace ids: %w", err)
	}

	return &r, nil
}
