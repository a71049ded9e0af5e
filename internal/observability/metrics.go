package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ConstellationCollector bundles Prometheus metrics for a running
// constellation simulation.
type ConstellationCollector struct {
	gatherer prometheus.Gatherer

	Planes     prometheus.Gauge
	Satellites prometheus.Gauge
	Links      prometheus.Gauge
	SimTime    prometheus.Gauge

	LinkEvents   *prometheus.CounterVec
	TickDuration prometheus.Histogram
}

// NewConstellationCollector registers constellation metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
// Registering twice against the same registry reuses the existing collectors.
func NewConstellationCollector(reg prometheus.Registerer) (*ConstellationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	planes, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "constellation_planes",
		Help: "Number of orbital planes in the model.",
	}), "constellation_planes")
	if err != nil {
		return nil, err
	}
	satellites, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "constellation_satellites",
		Help: "Number of satellites in the model.",
	}), "constellation_satellites")
	if err != nil {
		return nil, err
	}
	links, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "constellation_links",
		Help: "Number of active inter-satellite links.",
	}), "constellation_links")
	if err != nil {
		return nil, err
	}
	simTime, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "constellation_sim_time_seconds",
		Help: "Simulation time of the last evaluated tick, in seconds since the scenario epoch.",
	}), "constellation_sim_time_seconds")
	if err != nil {
		return nil, err
	}
	events, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "constellation_link_events_total",
		Help: "Link state changes, labeled by event (up or down).",
	}, []string{"event"}), "constellation_link_events_total")
	if err != nil {
		return nil, err
	}
	tick, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "constellation_tick_duration_seconds",
		Help:    "Wall-clock time spent evaluating one simulation tick.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}), "constellation_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &ConstellationCollector{
		gatherer:     gatherer,
		Planes:       planes,
		Satellites:   satellites,
		Links:        links,
		SimTime:      simTime,
		LinkEvents:   events,
		TickDuration: tick,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ConstellationCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetModelCounts records the size of the constellation.
func (c *ConstellationCollector) SetModelCounts(planes, satellites int) {
	if c == nil {
		return
	}
	c.Planes.Set(float64(planes))
	c.Satellites.Set(float64(satellites))
}

// ObserveTick records one evaluated tick.
func (c *ConstellationCollector) ObserveTick(simSeconds float64, links int, took time.Duration) {
	if c == nil {
		return
	}
	c.SimTime.Set(simSeconds)
	c.Links.Set(float64(links))
	c.TickDuration.Observe(took.Seconds())
}

// RecordLinkEvent counts a link state change ("up" or "down").
func (c *ConstellationCollector) RecordLinkEvent(event string) {
	if c == nil {
		return
	}
	c.LinkEvents.WithLabelValues(event).Inc()
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
