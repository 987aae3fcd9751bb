package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultDelegationPatterns returns the stock list of canonical
// total-delegation phrasings. Deployments extend or replace the list through
// configuration.
func DefaultDelegationPatterns() []string {
	return []string{
		"give me the complete code",
		"give me the full code",
		"write the whole program",
		"write all the code for",
		"do it for me",
		"do the whole thing",
		"solve it for me",
		"solve the exercise for me",
		"just give me the answer",
		"give me the final answer",
		"write my assignment",
		"do my homework",
		"complete solution",
		"full solution",
		"hazme el codigo completo",
		"dame la solucion completa",
		"resuelvelo por mi",
		"fais le code complet",
		"donne moi la solution complete",
	}
}

// normalizePrompt lowercases the prompt, strips diacritics, and collapses
// whitespace so pattern matching is accent- and case-insensitive.
func normalizePrompt(s string) string {
	stripped, _, err := transform.String(foldTransformer(), s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// foldTransformer decomposes to NFD, drops combining marks, and recomposes.
func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// matchesDelegationPattern reports whether the normalized prompt contains any
// of the normalized canonical delegation phrasings.
func matchesDelegationPattern(normalizedPrompt string, normalizedPatterns []string) (string, bool) {
	for _, p := range normalizedPatterns {
		if p != "" && strings.Contains(normalizedPrompt, p) {
			return p, true
		}
	}
	return "", false
}
