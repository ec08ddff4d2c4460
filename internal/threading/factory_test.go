package threading

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewComponentsWithoutRegistry(t *testing.T) {
	tc, err := NewComponents(2, nil)
	if err != nil {
		t.Fatalf("NewComponents: %v", err)
	}
	defer tc.Shutdown()

	if tc.ParallelRenderer.Workers() != 2 {
		t.Errorf("Expected 2 workers, got %d", tc.ParallelRenderer.Workers())
	}
	if tc.Metrics != nil {
		t.Error("Expected no metrics without a registry")
	}
	if tc.GetDetailedPerformanceStats() == nil {
		t.Error("Expected detailed stats")
	}
}

func TestNewComponentsDuplicateRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	tc, err := NewComponents(1, reg)
	if err != nil {
		t.Fatalf("NewComponents: %v", err)
	}
	defer tc.Shutdown()
	if tc.Metrics == nil {
		t.Fatal("Expected metrics to be attached")
	}

	if _, err := NewComponents(1, reg); err == nil {
		t.Error("Expected a second registration on the same registry to fail")
	}
}
