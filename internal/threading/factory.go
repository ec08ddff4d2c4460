package threading

import (
	"raycaster/internal/threading/monitoring"
	"raycaster/internal/threading/rendering"

	"github.com/prometheus/client_golang/prometheus"
)

// Components holds all threading-related components
type Components struct {
	ParallelRenderer   *rendering.ParallelRenderer
	PerformanceMonitor *monitoring.PerformanceMonitor
	Metrics            *monitoring.Metrics
}

// NewComponents creates and initializes all threading components.
// workers <= 0 selects one worker per CPU. When reg is not nil the
// monitor's measurements are also exported through it.
func NewComponents(workers int, reg prometheus.Registerer) (*Components, error) {
	tc := &Components{
		ParallelRenderer:   rendering.NewParallelRendererWithWorkers(workers),
		PerformanceMonitor: monitoring.NewPerformanceMonitor(),
	}
	if reg != nil {
		m, err := monitoring.NewMetrics(reg)
		if err != nil {
			tc.ParallelRenderer.Stop()
			return nil, err
		}
		tc.Metrics = m
		tc.PerformanceMonitor.AttachMetrics(m)
	}
	return tc, nil
}

// Shutdown gracefully shuts down all threading components
func (tc *Components) Shutdown() {
	if tc.ParallelRenderer != nil {
		tc.ParallelRenderer.Stop()
	}
	if tc.PerformanceMonitor != nil {
		tc.PerformanceMonitor.Reset()
	}
}

// GetPerformanceMetrics returns current performance metrics
func (tc *Components) GetPerformanceMetrics() monitoring.RaycastMetrics {
	if tc.PerformanceMonitor != nil {
		return tc.PerformanceMonitor.GetCurrentMetrics()
	}
	return monitoring.RaycastMetrics{}
}

// GetDetailedPerformanceStats returns detailed performance statistics
func (tc *Components) GetDetailedPerformanceStats() map[string]interface{} {
	if tc.PerformanceMonitor != nil {
		return tc.PerformanceMonitor.GetDetailedStats()
	}
	return nil
}

// CheckPerformanceAlerts returns any performance warnings
func (tc *Components) CheckPerformanceAlerts() []monitoring.PerformanceAlert {
	if tc.PerformanceMonitor != nil {
		return tc.PerformanceMonitor.CheckPerformanceAlerts()
	}
	return nil
}
