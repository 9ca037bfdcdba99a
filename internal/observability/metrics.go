package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics считает прогоны и сбрасывает их в textfile для node-exporter
type Metrics struct {
	registry *prometheus.Registry
	records  *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "municipal_updates_records_total",
			Help: "Extracted update records per institution.",
		}, []string{"institution"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "municipal_updates_runs_total",
			Help: "Extraction runs per institution and outcome.",
		}, []string{"institution", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "municipal_updates_run_duration_seconds",
			Help:    "Duration of one extraction run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"institution"}),
	}
	m.registry.MustRegister(m.records, m.runs, m.duration)
	return m
}

// ObserveRun фиксирует результат одного прогона
func (m *Metrics) ObserveRun(institution string, records int, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.runs.WithLabelValues(institution, outcome).Inc()
	m.duration.WithLabelValues(institution).Observe(elapsed.Seconds())
	if err == nil {
		m.records.WithLabelValues(institution).Add(float64(records))
	}
}

func (m *Metrics) Records(institution string) prometheus.Counter {
	return m.records.WithLabelValues(institution)
}

// Runs: outcome = success | failure
func (m *Metrics) Runs(institution, outcome string) prometheus.Counter {
	return m.runs.WithLabelValues(institution, outcome)
}

// Gatherer для тестов и экспорта
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile пишет метрики в файл; при пустом пути ничего не делает
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
