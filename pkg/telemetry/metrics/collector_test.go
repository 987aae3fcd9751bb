package metrics

import (
	"testing"
	"time"
)

func TestBackendLatencyLabeledByMode(t *testing.T) {
	c := NewCollector(Config{Enabled: true})
	c.RecordBackendLatency("tutor", 250*time.Millisecond)

	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range families {
		if f.GetName() != "minerva_backend_latency_seconds" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "mode" && l.GetValue() == "tutor" {
					return
				}
			}
		}
		t.Fatalf("latency metric carries no mode label: %v", f)
	}
	t.Fatal("latency family not registered")
}

func TestDisabledCollectorRecordsNothing(t *testing.T) {
	c := NewCollector(Config{Enabled: false})
	c.RecordInteraction("tutor", "answered")
	c.RecordBackendLatency("tutor", time.Second)
	c.RecordBlock("DELEGATION_BLOCKED")

	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if len(f.GetMetric()) != 0 {
			for _, m := range f.GetMetric() {
				if m.GetCounter().GetValue() != 0 || m.GetHistogram().GetSampleCount() != 0 {
					t.Errorf("disabled collector recorded into %s", f.GetName())
				}
			}
		}
	}
}
