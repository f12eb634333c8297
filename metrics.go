package mapper

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/axiskey/mapper/internal/hardware"
	"github.com/axiskey/mapper/internal/profile"
)

type metrics struct {
	registry *prometheus.Registry

	writes      *prometheus.CounterVec
	reloads     prometheus.Counter
	activations *prometheus.CounterVec
	hudRequests *prometheus.CounterVec
	controls    prometheus.Gauge
	cpuCores    prometheus.Gauge
	refreshRate prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "axiskey_store_writes_total",
			Help: "Writes to the persistence backend by key and result",
		}, []string{"key", "result"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "axiskey_store_reloads_total",
			Help: "Reloads caused by external edits of the data directory",
		}),
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "axiskey_activations_total",
			Help: "Finished activation flows by method and resulting status",
		}, []string{"method", "status"}),
		hudRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "axiskey_hud_requests_total",
			Help: "HUD detection requests by result",
		}, []string{"result"}),
		controls: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "axiskey_active_profile_controls",
			Help: "Number of controls in the active profile",
		}),
		cpuCores: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "axiskey_hardware_cpu_cores",
			Help: "CPU cores reported by the last hardware audit",
		}),
		refreshRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "axiskey_hardware_refresh_rate_hz",
			Help: "Display refresh rate reported by the last hardware audit",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		versioncollector.NewCollector("axiskey"),
		m.writes,
		m.reloads,
		m.activations,
		m.hudRequests,
		m.controls,
		m.cpuCores,
		m.refreshRate,
	)
	return m
}

func (m *metrics) observeWrite(key string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.writes.WithLabelValues(key, result).Inc()
}

func (m *metrics) observeProfile(s *profile.Store) {
	p, ok := s.ActiveProfile()
	if !ok {
		m.controls.Set(0)
		return
	}
	m.controls.Set(float64(len(p.Controls)))
}

func (m *metrics) observeHardware(d hardware.Device) {
	m.cpuCores.Set(float64(d.CPUCores))
	m.refreshRate.Set(float64(d.RefreshRate))
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
