package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// KeyMaterial holds everything that goes into a cache key. SessionToken and
// the cache's salt are both mandatory hash inputs: the token prevents
// cross-learner cache leakage and the salt prevents key prediction and
// poisoning. Omitting either is a correctness defect, not a style choice.
type KeyMaterial struct {
	// SessionToken isolates entries per session. Required.
	SessionToken string

	// Mode is the interaction mode ("tutor", "simulator", "evaluator").
	Mode string

	// Prompt is the raw learner prompt; it is normalized before hashing.
	Prompt string

	// Context is the interaction context map; entries are sorted by key
	// before hashing so map iteration order never changes the key.
	Context map[string]string
}

// deriveKey computes the deterministic cache key for the material under the
// given salt.
func deriveKey(salt string, m KeyMaterial) (string, error) {
	if m.SessionToken == "" {
		return "", ErrMissingSessionToken
	}

	h := sha256.New()
	fmt.Fprintf(h, "salt:%s\n", salt)
	fmt.Fprintf(h, "session:%s\n", m.SessionToken)
	fmt.Fprintf(h, "mode:%s\n", m.Mode)
	fmt.Fprintf(h, "prompt:%s\n", normalizeText(m.Prompt))

	keys := make([]string, 0, len(m.Context))
	for k := range m.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "ctx:%s=%s\n", strings.TrimSpace(k), strings.TrimSpace(m.Context[k]))
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// normalizeText lowercases and collapses internal whitespace so trivially
// reformatted prompts share a cache entry.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
