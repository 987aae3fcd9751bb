package storage

// SchemaVersion is the current database schema version. Bump when the schema
// changes in a way that requires migration.
const SchemaVersion = 1

// Schema creates the trace and risk tables. Traces are append-only: there is
// deliberately no UPDATE path for the traces table anywhere in this package.
const Schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS traces (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL,
	learner_id      TEXT NOT NULL,
	activity_id     TEXT NOT NULL,
	depth           TEXT NOT NULL,
	kind            TEXT NOT NULL,
	content         TEXT NOT NULL,
	cognitive_state TEXT NOT NULL,
	intent          TEXT,
	justification   TEXT,
	ai_involvement  REAL NOT NULL,
	context         TEXT,
	created_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_traces_session ON traces(session_id, created_at);
CREATE INDEX IF NOT EXISTS idx_traces_learner ON traces(learner_id);
CREATE INDEX IF NOT EXISTS idx_traces_created ON traces(created_at);

CREATE TABLE IF NOT EXISTS risks (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL,
	learner_id      TEXT NOT NULL,
	activity_id     TEXT NOT NULL,
	kind            TEXT NOT NULL,
	severity        TEXT NOT NULL,
	dimension       TEXT NOT NULL,
	description     TEXT NOT NULL,
	evidence        TEXT,
	recommendations TEXT,
	trace_ids       TEXT NOT NULL,
	detected_at     TIMESTAMP NOT NULL,
	resolved        BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_risks_session ON risks(session_id, detected_at);
CREATE INDEX IF NOT EXISTS idx_risks_detected ON risks(detected_at);
`

// InsertSchemaVersion records the schema version, ignoring re-runs.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?);`

// GetSchemaVersion reads the recorded schema version.
const GetSchemaVersion = `SELECT version FROM schema_version LIMIT 1;`
