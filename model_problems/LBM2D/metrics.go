package LBM2D

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the solver's Prometheus instruments. A nil *Metrics records nothing.
type Metrics struct {
	Steps       prometheus.Counter
	StepSeconds prometheus.Histogram
	TotalMass   prometheus.Gauge
	MaxSpeed    prometheus.Gauge
	Tracers     prometheus.Gauge
}

// NewMetrics registers the instruments with reg, or with the default registry when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Steps: factory.NewCounter(prometheus.CounterOpts{
			Name: "lbm_steps_total",
			Help: "Total lattice time steps taken",
		}),
		StepSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lbm_step_duration_seconds",
			Help:    "Wall time of one lattice time step",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		}),
		TotalMass: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lbm_total_mass",
			Help: "Sum of density over the fluid cells at the last report",
		}),
		MaxSpeed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lbm_max_speed",
			Help: "Largest fluid cell speed at the last report",
		}),
		Tracers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lbm_tracers",
			Help: "Number of live tracers at the last report",
		}),
	}
}

func (m *Metrics) observeStep(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Steps.Inc()
	m.StepSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) observeReport(d Diagnostics, nTracers int) {
	if m == nil {
		return
	}
	m.TotalMass.Set(d.TotalMass)
	m.MaxSpeed.Set(d.MaxSpeed)
	m.Tracers.Set(float64(nTracers))
}
