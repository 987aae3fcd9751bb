// Package governance implements the institutional policy gate that can veto a
// learner request before any generation happens.
//
// The engine itself is a pure function over classifier output, a policy
// snapshot, and an optional learner-history aggregate; it performs no I/O and
// records nothing. Ambiguous or missing thresholds evaluate as the most
// restrictive value instead of failing.
package governance
