// Package trace defines the cognitive trace data model: immutable per-exchange
// trace records, derived session sequences, risk findings, and the narrow
// storage contract shared by the recorder, the risk analyzer, and retention.
//
// Traces are append-only. A persisted trace is never updated; corrections are
// new traces referencing the original. Risks are created only by the risk
// analyzer and mutated only to toggle their resolution flag.
package trace
