package source

import (
	"os"
	"path/filepath"
	"testing"

	"cognitia-edu/minerva/pkg/trace"
)

const testPolicies = `
institution:
  id: uni-1
  max_delegation: 0.75

defaults:
  max_delegation: 0.8
  max_ai_involvement: 0.6
  max_help_level: 0.5
  block_complete_solutions: true

activities:
  - id: algo-101
    max_delegation: 0.9
    require_justification: true
    risk_thresholds:
      cognitive: 0.65
  - id: essay-2
    max_ai_involvement: 0.3
`

func writePolicies(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policies.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSourceResolution(t *testing.T) {
	s, err := NewFileSource(FileSourceConfig{Path: writePolicies(t, testPolicies)}, nil)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer s.Close()

	p, err := s.ActivePolicy("algo-101", "uni-1")
	if err != nil {
		t.Fatalf("ActivePolicy: %v", err)
	}

	// The institution floor (0.75) caps the activity's 0.9.
	if p.MaxDelegation != 0.75 {
		t.Errorf("MaxDelegation = %v, want institution-capped 0.75", p.MaxDelegation)
	}
	// Unset fields inherit from defaults.
	if p.MaxAIInvolvement != 0.6 {
		t.Errorf("MaxAIInvolvement = %v, want inherited 0.6", p.MaxAIInvolvement)
	}
	if !p.RequireJustification {
		t.Error("RequireJustification not set from activity entry")
	}
	if got := p.RiskThresholds[trace.DimensionCognitive]; got != 0.65 {
		t.Errorf("cognitive risk threshold = %v, want 0.65", got)
	}
	if p.InstitutionID != "uni-1" {
		t.Errorf("InstitutionID = %q, want uni-1", p.InstitutionID)
	}
}

func TestFileSourceUnknownActivityUsesDefaults(t *testing.T) {
	s, err := NewFileSource(FileSourceConfig{Path: writePolicies(t, testPolicies)}, nil)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer s.Close()

	p, err := s.ActivePolicy("unknown", "uni-1")
	if err != nil {
		t.Fatalf("ActivePolicy: %v", err)
	}
	if p.MaxDelegation != 0.75 {
		t.Errorf("MaxDelegation = %v, want capped defaults 0.75", p.MaxDelegation)
	}
	if p.ActivityID != "unknown" {
		t.Errorf("ActivityID = %q, want requested id", p.ActivityID)
	}
}

func TestFileSourceReturnsCopies(t *testing.T) {
	s, err := NewFileSource(FileSourceConfig{Path: writePolicies(t, testPolicies)}, nil)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer s.Close()

	p1, _ := s.ActivePolicy("algo-101", "uni-1")
	p1.MaxDelegation = 0.0
	p1.RiskThresholds[trace.DimensionCognitive] = 0.0

	p2, _ := s.ActivePolicy("algo-101", "uni-1")
	if p2.MaxDelegation == 0.0 {
		t.Error("caller mutation reached the stored policy")
	}
	if p2.RiskThresholds[trace.DimensionCognitive] == 0.0 {
		t.Error("caller mutation reached the stored risk thresholds")
	}
}

func TestFileSourceRejectsMissingFile(t *testing.T) {
	if _, err := NewFileSource(FileSourceConfig{Path: filepath.Join(t.TempDir(), "absent.yaml")}, nil); err == nil {
		t.Error("NewFileSource succeeded on a missing file")
	}
}

func TestFileSourceRejectsInvalidYAML(t *testing.T) {
	path := writePolicies(t, "institution: [not a mapping")
	if _, err := NewFileSource(FileSourceConfig{Path: path}, nil); err == nil {
		t.Error("NewFileSource succeeded on invalid YAML")
	}
}
