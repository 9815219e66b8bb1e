package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "qolstats"

// Metrics holds the counters recorded while loading and aggregating survey data.
type Metrics struct {
	registry *prometheus.Registry

	CellsNormalized    *prometheus.CounterVec // labels: path={plain,dollar}, outcome={value,missing,invalid}
	WeightedAverages   *prometheus.CounterVec // labels: outcome={value,missing,no_rows}
	RowsLoaded         *prometheus.CounterVec // labels: table={state,county}
	RowsDropped        prometheus.Counter
	UnemploymentFilled prometheus.Counter
}

// NewMetrics creates the counters on a private registry so tests and
// repeated CLI invocations never hit "already registered" panics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CellsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_normalized_total",
			Help:      "Metric cells normalized, by path and outcome.",
		}, []string{"path", "outcome"}),
		WeightedAverages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weighted_averages_total",
			Help:      "Weighted average computations, by outcome.",
		}, []string{"outcome"}),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows kept after loading, by table.",
		}, []string{"table"}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "county_rows_dropped_total",
			Help:      "County rows dropped because the population could not be parsed.",
		}),
		UnemploymentFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unemployment_filled_total",
			Help:      "Empty unemployment cells filled with the column mean.",
		}),
	}
	m.registry.MustRegister(
		m.CellsNormalized,
		m.WeightedAverages,
		m.RowsLoaded,
		m.RowsDropped,
		m.UnemploymentFilled,
	)
	return m
}

// Registry exposes the registry backing m, e.g. for an HTTP handler or a gatherer.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes all counters in the Prometheus text format, suitable
// for the node exporter textfile collector. The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// The helpers below accept a nil receiver so callers can run without metrics.

func (m *Metrics) ObserveCell(path, outcome string) {
	if m == nil {
		return
	}
	m.CellsNormalized.WithLabelValues(path, outcome).Inc()
}

func (m *Metrics) ObserveAverage(outcome string) {
	if m == nil {
		return
	}
	m.WeightedAverages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLoad(table string, rows, dropped, filled int) {
	if m == nil {
		return
	}
	m.RowsLoaded.WithLabelValues(table).Add(float64(rows))
	m.RowsDropped.Add(float64(dropped))
	m.UnemploymentFilled.Add(float64(filled))
}
