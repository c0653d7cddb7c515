// SPDX-FileCopyrightText: 2022-present Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package netgraph

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes experiment analysis reports as Prometheus metrics
type Metrics struct {
	Registry *prometheus.Registry

	latency     *prometheus.GaugeVec
	latencies   *prometheus.HistogramVec
	unreachable *prometheus.GaugeVec
	mismatches  *prometheus.GaugeVec
}

// NewMetrics creates the analysis metrics in a dedicated registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simbricks_exp_host_latency_ns",
			Help: "Simulated one-way latency between two hosts.",
		}, []string{"experiment", "src", "dst"}),
		latencies: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simbricks_exp_host_latencies_ns",
			Help:    "Distribution of simulated one-way host-to-host latencies.",
			Buckets: prometheus.ExponentialBuckets(500, 4, 10),
		}, []string{"experiment"}),
		unreachable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simbricks_exp_unreachable_pairs",
			Help: "Count of host pairs without a path between them.",
		}, []string{"experiment"}),
		mismatches: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simbricks_exp_latency_mismatches",
			Help: "Count of NIC links whose two directions declare different latencies.",
		}, []string{"experiment"}),
	}
	m.Registry.MustRegister(m.latency, m.latencies, m.unreachable, m.mismatches)
	return m
}

// Observe records the given analysis report
func (m *Metrics) Observe(report *Report) {
	for pair, latency := range report.Latencies {
		m.latency.WithLabelValues(report.Experiment, pair.Src, pair.Dst).Set(float64(latency))
		m.latencies.WithLabelValues(report.Experiment).Observe(float64(latency))
	}
	m.unreachable.WithLabelValues(report.Experiment).Set(float64(len(report.Unreachable)))
	m.mismatches.WithLabelValues(report.Experiment).Set(float64(len(report.Mismatches)))
}

// WriteToTextfile writes the recorded metrics in the Prometheus text format to the given file
func (m *Metrics) WriteToTextfile(path string) error {
	log.Infof("Writing analysis metrics to %s", path)
	return prometheus.WriteToTextfile(path, m.Registry)
}
