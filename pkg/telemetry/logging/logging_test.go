package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRejectsUnknownSettings(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New accepted an unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New accepted an unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"", false},
		{"WARN", false},
		{"error", false},
		{"verbose", true},
	}
	for _, tt := range tests {
		if _, err := ParseLevel(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestRedactionMasksLearnerIDs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", RedactPII: true, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("aggregate updated", "learner_id", "learner-4f2a9c", "component", "gateway")

	out := buf.String()
	if strings.Contains(out, "learner-4f2a9c") {
		t.Errorf("full learner id reached the sink: %s", out)
	}
	if !strings.Contains(out, "lear***") {
		t.Errorf("no correlation prefix kept: %s", out)
	}
	if !strings.Contains(out, `"component":"gateway"`) {
		t.Errorf("non-sensitive attribute damaged: %s", out)
	}
}

func TestRedactionScrubsCredentialShapes(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", RedactPII: true, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Warn("backend rejected key sk-abc123def456",
		"detail", "sent Bearer abc.def.ghi for ada.lovelace@example.edu",
	)

	out := buf.String()
	for _, leaked := range []string{"sk-abc123def456", "Bearer abc.def.ghi", "ada.lovelace@example.edu"} {
		if strings.Contains(out, leaked) {
			t.Errorf("%q reached the sink: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "sk-***") {
		t.Errorf("api key not masked in message: %s", out)
	}
	if !strings.Contains(out, "a***@example.edu") {
		t.Errorf("email not partially masked: %s", out)
	}
}

func TestRedactionDisabledByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("aggregate updated", "learner_id", "learner-4f2a9c")
	if !strings.Contains(buf.String(), "learner-4f2a9c") {
		t.Error("redaction applied without being enabled")
	}
}
