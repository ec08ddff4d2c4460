package monitoring

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// PerformanceMonitor tracks frame and ray casting metrics
type PerformanceMonitor struct {
	// Frame metrics
	frameCount     atomic.Uint64
	frameTime      atomic.Uint64 // nanoseconds
	totalFrameTime atomic.Uint64 // nanoseconds

	// Rendering metrics
	raycastTime atomic.Uint64
	drawTime    atomic.Uint64

	// Threading metrics
	activeWorkers atomic.Int32
	queuedJobs    atomic.Int32
	completedJobs atomic.Uint64

	// Ray casting metrics
	raysCast     atomic.Uint64
	missedRays   atomic.Uint64
	touchedCells atomic.Int32

	// Statistics
	mutex          sync.RWMutex
	avgFrameTime   float64
	avgRaycastTime float64
	raycastSamples uint64
	startTime      time.Time
	metrics        *Metrics

	// Configuration
	enableDetailed bool
	sampleInterval time.Duration
}

// NewPerformanceMonitor creates a new performance monitor
func NewPerformanceMonitor() *PerformanceMonitor {
	return &PerformanceMonitor{
		startTime:      time.Now(),
		enableDetailed: true,
		sampleInterval: time.Second,
	}
}

// AttachMetrics mirrors every subsequent measurement into m.
// A nil m detaches.
func (pm *PerformanceMonitor) AttachMetrics(m *Metrics) {
	pm.mutex.Lock()
	pm.metrics = m
	pm.mutex.Unlock()
}

func (pm *PerformanceMonitor) exporter() *Metrics {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()
	return pm.metrics
}

// FrameTimer helps measure frame timing
type FrameTimer struct {
	monitor   *PerformanceMonitor
	startTime time.Time
}

// StartFrame begins frame timing
func (pm *PerformanceMonitor) StartFrame() *FrameTimer {
	return &FrameTimer{
		monitor:   pm,
		startTime: time.Now(),
	}
}

// EndFrame completes frame timing
func (ft *FrameTimer) EndFrame() {
	frameTime := time.Since(ft.startTime)
	ft.monitor.recordFrame(frameTime)
}

func (pm *PerformanceMonitor) recordFrame(frameTime time.Duration) {
	nanos := uint64(frameTime.Nanoseconds())
	pm.frameTime.Store(nanos)
	total := pm.totalFrameTime.Add(nanos)
	count := pm.frameCount.Add(1)

	pm.mutex.Lock()
	if pm.enableDetailed {
		pm.avgFrameTime = float64(total) / float64(count)
	}
	pm.mutex.Unlock()

	if m := pm.exporter(); m != nil {
		m.ObserveFrame(frameTime)
	}
}

// RaycastTimer helps measure raycasting performance
type RaycastTimer struct {
	monitor   *PerformanceMonitor
	startTime time.Time
}

// StartRaycast begins raycast timing
func (pm *PerformanceMonitor) StartRaycast() *RaycastTimer {
	return &RaycastTimer{
		monitor:   pm,
		startTime: time.Now(),
	}
}

// EndRaycast completes raycast timing
func (rt *RaycastTimer) EndRaycast() {
	rt.monitor.recordRaycast(time.Since(rt.startTime))
}

func (pm *PerformanceMonitor) recordRaycast(d time.Duration) {
	pm.raycastTime.Store(uint64(d.Nanoseconds()))

	pm.mutex.Lock()
	if pm.enableDetailed {
		// running mean over every sweep
		pm.raycastSamples++
		pm.avgRaycastTime += (float64(d.Nanoseconds()) - pm.avgRaycastTime) / float64(pm.raycastSamples)
	}
	pm.mutex.Unlock()

	if m := pm.exporter(); m != nil {
		m.ObserveRaycast(d)
	}
}

// UpdateWorkerMetrics updates threading metrics
func (pm *PerformanceMonitor) UpdateWorkerMetrics(active, queued int32, completed uint64) {
	pm.activeWorkers.Store(active)
	pm.queuedJobs.Store(queued)
	pm.completedJobs.Store(completed)
}

// RaycastMetrics tracks ray casting data for the latest frame
type RaycastMetrics struct {
	RaysCast        uint64
	MissedRays      uint64
	TouchedCells    int32
	FramesPerSecond float64
	MemoryUsageMB   uint64
}

// UpdateRaycastMetrics records one sweep: the number of rays cast, how many
// left the map without hitting a wall and how many cells are touched.
func (pm *PerformanceMonitor) UpdateRaycastMetrics(rays, missed uint64, touched int32) {
	pm.raysCast.Add(rays)
	pm.missedRays.Add(missed)
	pm.touchedCells.Store(touched)

	if m := pm.exporter(); m != nil {
		m.AddRays(rays, missed)
		m.SetTouchedCells(int(touched))
	}
}

// FPS returns the frame rate implied by the latest frame time.
func (pm *PerformanceMonitor) FPS() float64 {
	frameTime := pm.frameTime.Load()
	if frameTime == 0 {
		return 0
	}
	return 1000000000.0 / float64(frameTime) // Convert nanoseconds to FPS
}

// GetCurrentMetrics returns current performance metrics
func (pm *PerformanceMonitor) GetCurrentMetrics() RaycastMetrics {
	fps := pm.FPS()
	if m := pm.exporter(); m != nil {
		m.SetFPS(fps)
	}

	// Get memory usage
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RaycastMetrics{
		RaysCast:        pm.raysCast.Load(),
		MissedRays:      pm.missedRays.Load(),
		TouchedCells:    pm.touchedCells.Load(),
		FramesPerSecond: fps,
		MemoryUsageMB:   memStats.Alloc / 1024 / 1024,
	}
}

// GetDetailedStats returns detailed performance statistics
func (pm *PerformanceMonitor) GetDetailedStats() map[string]interface{} {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	uptime := time.Since(pm.startTime)

	return map[string]interface{}{
		"uptime_seconds":      uptime.Seconds(),
		"frame_count":         pm.frameCount.Load(),
		"avg_frame_time_ms":   pm.avgFrameTime / 1000000, // Convert to milliseconds
		"avg_raycast_time_ms": pm.avgRaycastTime / 1000000,
		"last_draw_time_ms":   float64(pm.drawTime.Load()) / 1000000,
		"current_fps":         pm.FPS(),
		"active_workers":      pm.activeWorkers.Load(),
		"queued_jobs":         pm.queuedJobs.Load(),
		"completed_jobs":      pm.completedJobs.Load(),
		"memory_alloc_mb":     memStats.Alloc / 1024 / 1024,
		"memory_sys_mb":       memStats.Sys / 1024 / 1024,
		"gc_cycles":           memStats.NumGC,
		"rays_cast":           pm.raysCast.Load(),
		"missed_rays":         pm.missedRays.Load(),
		"touched_cells":       pm.touchedCells.Load(),
		"cpu_cores":           runtime.NumCPU(),
		"goroutines":          runtime.NumGoroutine(),
	}
}

// PerformanceAlert represents a performance warning
type PerformanceAlert struct {
	Type      string
	Message   string
	Value     float64
	Threshold float64
	Timestamp time.Time
}

// CheckPerformanceAlerts checks for performance issues and returns alerts
func (pm *PerformanceMonitor) CheckPerformanceAlerts() []PerformanceAlert {
	alerts := make([]PerformanceAlert, 0)
	currentTime := time.Now()

	// Check frame rate
	if pm.frameTime.Load() > 0 {
		fps := pm.FPS()
		if fps < 30 {
			alerts = append(alerts, PerformanceAlert{
				Type:      "low_fps",
				Message:   "Frame rate is below 30 FPS",
				Value:     fps,
				Threshold: 30,
				Timestamp: currentTime,
			})
		}
	}

	// A full sweep should stay well under a millisecond
	raycastMs := float64(pm.raycastTime.Load()) / 1000000
	if raycastMs > 1 {
		alerts = append(alerts, PerformanceAlert{
			Type:      "slow_raycast",
			Message:   "Ray sweep took longer than 1ms",
			Value:     raycastMs,
			Threshold: 1,
			Timestamp: currentTime,
		})
	}

	// Check memory usage
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	memoryMB := float64(memStats.Alloc) / 1024 / 1024
	if memoryMB > 500 {
		alerts = append(alerts, PerformanceAlert{
			Type:      "high_memory",
			Message:   "Memory usage is above 500MB",
			Value:     memoryMB,
			Threshold: 500,
			Timestamp: currentTime,
		})
	}

	// Check worker queue
	queuedJobs := pm.queuedJobs.Load()
	if queuedJobs > 100 {
		alerts = append(alerts, PerformanceAlert{
			Type:      "queue_backlog",
			Message:   "Worker queue has more than 100 pending jobs",
			Value:     float64(queuedJobs),
			Threshold: 100,
			Timestamp: currentTime,
		})
	}

	return alerts
}

// EnableDetailedLogging enables/disables detailed performance logging
func (pm *PerformanceMonitor) EnableDetailedLogging(enabled bool) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.enableDetailed = enabled
}

// Reset resets all performance counters
func (pm *PerformanceMonitor) Reset() {
	pm.frameCount.Store(0)
	pm.frameTime.Store(0)
	pm.totalFrameTime.Store(0)
	pm.raycastTime.Store(0)
	pm.drawTime.Store(0)
	pm.activeWorkers.Store(0)
	pm.queuedJobs.Store(0)
	pm.completedJobs.Store(0)
	pm.raysCast.Store(0)
	pm.missedRays.Store(0)
	pm.touchedCells.Store(0)

	pm.mutex.Lock()
	pm.avgFrameTime = 0
	pm.avgRaycastTime = 0
	pm.raycastSamples = 0
	pm.startTime = time.Now()
	pm.mutex.Unlock()
}

// ProfiledFunction wraps a function with performance timing
func (pm *PerformanceMonitor) ProfiledFunction(name string, fn func()) time.Duration {
	start := time.Now()
	fn()
	duration := time.Since(start)

	// Store timing based on function name
	switch name {
	case "raycast":
		pm.recordRaycast(duration)
	case "draw":
		pm.drawTime.Store(uint64(duration.Nanoseconds()))
	case "frame":
		pm.recordFrame(duration)
	}

	return duration
}

// GetAverageFrameTime returns the mean frame time since the last reset.
func (pm *PerformanceMonitor) GetAverageFrameTime() time.Duration {
	count := pm.frameCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(pm.totalFrameTime.Load() / count)
}
