// Package aggregate maintains rolling per-learner usage aggregates
// (interaction counts, block counts, running delegation and involvement
// means) consumed by risk rules and reviewer tooling.
package aggregate
