package monitoring

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "raycaster"

// Metrics exports the monitor's measurements to Prometheus.
type Metrics struct {
	frames       prometheus.Counter
	frameSeconds prometheus.Histogram
	castSeconds  prometheus.Histogram
	rays         *prometheus.CounterVec
	touchedCells prometheus.Gauge
	fps          prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// Registering twice with the same registry is an error.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Number of frames displayed.",
		}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent building one frame.",
			Buckets:   []float64{.001, .004, .008, .016, .033, .066, .1, .25},
		}),
		castSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "raycast_duration_seconds",
			Help:      "Time spent casting the rays of one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 10),
		}),
		rays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rays_total",
			Help:      "Rays cast, by outcome.",
		}, []string{"outcome"}),
		touchedCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "touched_cells",
			Help:      "Map cells crossed by the latest ray sweep.",
		}),
		fps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frames_per_second",
			Help:      "Frame rate implied by the latest frame time.",
		}),
	}

	var errs []error
	for _, c := range []prometheus.Collector{m.frames, m.frameSeconds, m.castSeconds, m.rays, m.touchedCells, m.fps} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveFrame counts one frame that took d.
func (m *Metrics) ObserveFrame(d time.Duration) {
	m.frames.Inc()
	m.frameSeconds.Observe(d.Seconds())
	if d > 0 {
		m.fps.Set(1 / d.Seconds())
	}
}

// ObserveRaycast records the duration of one ray sweep.
func (m *Metrics) ObserveRaycast(d time.Duration) {
	m.castSeconds.Observe(d.Seconds())
}

// AddRays counts rays; missed of them left the map without a hit.
func (m *Metrics) AddRays(total, missed uint64) {
	if missed > total {
		missed = total
	}
	m.rays.WithLabelValues("hit").Add(float64(total - missed))
	m.rays.WithLabelValues("miss").Add(float64(missed))
}

func (m *Metrics) SetTouchedCells(n int) { m.touchedCells.Set(float64(n)) }

func (m *Metrics) SetFPS(fps float64) { m.fps.Set(fps) }
