// Package gateway orchestrates the interaction pipeline: classification,
// policy gating, strategy routing, trace recording, aggregate updates, and
// async risk analysis. It is the single entry point for learner exchanges.
package gateway
