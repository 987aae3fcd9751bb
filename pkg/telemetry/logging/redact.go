package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Value patterns redacted wherever they appear in string attributes, message
// included.
var (
	apiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9]+`)
	bearerPattern = regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`)
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// sensitiveKeys are attribute-key substrings whose values are masked
// wholesale. Learner identifiers appear on nearly every log line, so they are
// treated the same as credentials: a short prefix survives for correlation,
// the rest does not reach the log sink.
var sensitiveKeys = []string{
	"learner",
	"api_key", "apikey",
	"token",
	"secret",
	"salt",
	"password",
	"authorization",
}

// redactAttr is the slog ReplaceAttr hook applied when PII redaction is
// enabled. Groups are left to their members.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, maskValue(a.Value.String()))
	}

	if a.Value.Kind() == slog.KindString {
		a.Value = slog.StringValue(redactString(a.Value.String()))
	}
	return a
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// maskValue keeps a four-character prefix for correlation across log lines.
func maskValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "***"
	}
	return v[:4] + "***"
}

// redactString scrubs credential and email shapes from free-text values.
func redactString(s string) string {
	s = apiKeyPattern.ReplaceAllString(s, "sk-***")
	s = bearerPattern.ReplaceAllString(s, "Bearer ***")
	s = emailPattern.ReplaceAllStringFunc(s, maskEmail)
	return s
}

// maskEmail keeps the first character and the domain.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
