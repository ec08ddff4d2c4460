package monitoring

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewPerformanceMonitor(t *testing.T) {
	pm := NewPerformanceMonitor()

	if pm == nil {
		t.Fatal("NewPerformanceMonitor returned nil")
	}

	if pm.enableDetailed != true {
		t.Error("Expected enableDetailed to be true")
	}

	if pm.sampleInterval != time.Second {
		t.Error("Expected sampleInterval to be 1 second")
	}

	// Check that start time is recent
	if time.Since(pm.startTime) > time.Second {
		t.Error("Start time should be recent")
	}
}

func TestPerformanceMonitorFrameTiming(t *testing.T) {
	pm := NewPerformanceMonitor()

	frameTimer := pm.StartFrame()
	time.Sleep(10 * time.Millisecond) // Simulate some work
	frameTimer.EndFrame()

	if pm.frameCount.Load() != 1 {
		t.Errorf("Expected frame count to be 1, got %d", pm.frameCount.Load())
	}

	// Frame time should be at least 10ms (in nanoseconds)
	frameTime := pm.frameTime.Load()
	minExpectedTime := uint64(10 * time.Millisecond)
	if frameTime < minExpectedTime {
		t.Errorf("Expected frame time to be at least %d ns, got %d ns", minExpectedTime, frameTime)
	}

	if fps := pm.FPS(); fps <= 0 || fps > 100 {
		t.Errorf("Expected FPS in (0, 100], got %f", fps)
	}
	if pm.GetAverageFrameTime() != time.Duration(frameTime) {
		t.Errorf("Expected average frame time %v, got %v", time.Duration(frameTime), pm.GetAverageFrameTime())
	}
}

func TestPerformanceMonitorRaycastAverage(t *testing.T) {
	pm := NewPerformanceMonitor()

	pm.recordRaycast(2 * time.Millisecond)
	pm.recordRaycast(4 * time.Millisecond)

	stats := pm.GetDetailedStats()
	if avg := stats["avg_raycast_time_ms"].(float64); avg < 2.999 || avg > 3.001 {
		t.Errorf("Expected average raycast time of 3ms, got %f", avg)
	}
}

func TestPerformanceMonitorRaycastMetrics(t *testing.T) {
	pm := NewPerformanceMonitor()

	pm.UpdateRaycastMetrics(600, 12, 40)
	pm.UpdateRaycastMetrics(600, 0, 35)

	current := pm.GetCurrentMetrics()
	if current.RaysCast != 1200 {
		t.Errorf("Expected 1200 rays cast, got %d", current.RaysCast)
	}
	if current.MissedRays != 12 {
		t.Errorf("Expected 12 missed rays, got %d", current.MissedRays)
	}
	if current.TouchedCells != 35 {
		t.Errorf("Expected 35 touched cells, got %d", current.TouchedCells)
	}

	pm.UpdateWorkerMetrics(5, 10, 100)
	if pm.activeWorkers.Load() != 5 {
		t.Errorf("Expected active workers to be 5, got %d", pm.activeWorkers.Load())
	}
	if pm.completedJobs.Load() != 100 {
		t.Errorf("Expected completed jobs to be 100, got %d", pm.completedJobs.Load())
	}
}

func TestPerformanceMonitorAlerts(t *testing.T) {
	pm := NewPerformanceMonitor()

	if alerts := pm.CheckPerformanceAlerts(); hasAlert(alerts, "low_fps") || hasAlert(alerts, "slow_raycast") {
		t.Errorf("Expected no frame alerts on a fresh monitor, got %v", alerts)
	}

	pm.recordFrame(50 * time.Millisecond)
	pm.recordRaycast(5 * time.Millisecond)
	pm.UpdateWorkerMetrics(4, 150, 0)

	alerts := pm.CheckPerformanceAlerts()
	for _, want := range []string{"low_fps", "slow_raycast", "queue_backlog"} {
		if !hasAlert(alerts, want) {
			t.Errorf("Expected a %s alert, got %v", want, alerts)
		}
	}
}

func hasAlert(alerts []PerformanceAlert, kind string) bool {
	for _, a := range alerts {
		if a.Type == kind {
			return true
		}
	}
	return false
}

func TestPerformanceMonitorProfiledFunction(t *testing.T) {
	pm := NewPerformanceMonitor()

	calls := 0
	d := pm.ProfiledFunction("raycast", func() {
		calls++
		time.Sleep(time.Millisecond)
	})
	if calls != 1 {
		t.Fatalf("Expected the profiled function to run once, ran %d times", calls)
	}
	if pm.raycastTime.Load() != uint64(d.Nanoseconds()) {
		t.Errorf("Expected raycast time %d, got %d", d.Nanoseconds(), pm.raycastTime.Load())
	}

	pm.ProfiledFunction("draw", func() {})
	pm.ProfiledFunction("frame", func() {})
	if pm.frameCount.Load() != 1 {
		t.Errorf("Expected the profiled frame to be counted, got %d", pm.frameCount.Load())
	}
}

func TestPerformanceMonitorReset(t *testing.T) {
	pm := NewPerformanceMonitor()
	pm.recordFrame(time.Millisecond)
	pm.UpdateRaycastMetrics(10, 1, 3)

	pm.Reset()

	if pm.frameCount.Load() != 0 || pm.raysCast.Load() != 0 || pm.touchedCells.Load() != 0 {
		t.Error("Expected counters to be cleared by Reset")
	}
	if pm.GetAverageFrameTime() != 0 {
		t.Errorf("Expected zero average frame time, got %v", pm.GetAverageFrameTime())
	}
}

func TestPerformanceMonitorConcurrency(t *testing.T) {
	pm := NewPerformanceMonitor()
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				frameTimer := pm.StartFrame()
				raycastTimer := pm.StartRaycast()
				time.Sleep(time.Microsecond * 100)
				raycastTimer.EndRaycast()
				frameTimer.EndFrame()
				pm.UpdateRaycastMetrics(1, 0, 1)
			}
		}()
	}

	wg.Wait()

	if pm.frameCount.Load() != 100 {
		t.Errorf("Expected 100 frames to be recorded, got %d", pm.frameCount.Load())
	}
	if pm.raysCast.Load() != 100 {
		t.Errorf("Expected 100 rays to be recorded, got %d", pm.raysCast.Load())
	}
}

func TestMetricsExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	pm := NewPerformanceMonitor()
	pm.AttachMetrics(m)

	pm.recordFrame(20 * time.Millisecond)
	pm.recordFrame(20 * time.Millisecond)
	pm.UpdateRaycastMetrics(100, 7, 42)

	if got := testutil.ToFloat64(m.frames); got != 2 {
		t.Errorf("Expected 2 frames exported, got %f", got)
	}
	if got := testutil.ToFloat64(m.rays.WithLabelValues("miss")); got != 7 {
		t.Errorf("Expected 7 missed rays exported, got %f", got)
	}
	if got := testutil.ToFloat64(m.rays.WithLabelValues("hit")); got != 93 {
		t.Errorf("Expected 93 hits exported, got %f", got)
	}
	if got := testutil.ToFloat64(m.touchedCells); got != 42 {
		t.Errorf("Expected 42 touched cells exported, got %f", got)
	}
	if got := testutil.ToFloat64(m.fps); got < 49.9 || got > 50.1 {
		t.Errorf("Expected 50 fps exported, got %f", got)
	}

	if _, err := NewMetrics(reg); err == nil {
		t.Error("Expected registering the metrics twice to fail")
	}
}
