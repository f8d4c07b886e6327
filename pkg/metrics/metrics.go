/*
Copyright 2026 Nevio.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics records the outcome of probe runs for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "booking"
	subsystem = "probe"

	ResultPass = "pass"
	ResultFail = "fail"
)

// ProbeMetrics are registered on their own registry so that every probe run
// starts from zero.
type ProbeMetrics struct {
	registry *prometheus.Registry

	Records  *prometheus.CounterVec
	SKUs     *prometheus.GaugeVec
	Duration *prometheus.HistogramVec
}

func NewProbeMetrics() *ProbeMetrics {
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_total",
		Help:      "Offer request records probed, by result.",
	}, []string{"result"})
	skus := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "first_product_skus",
		Help:      "SKUs offered by the first flight product of the first connection.",
	}, []string{"record"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operation_duration_seconds",
		Help:      "Latency of token and GraphQL operations.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(records, skus, duration)

	return &ProbeMetrics{
		registry: registry,
		Records:  records,
		SKUs:     skus,
		Duration: duration,
	}
}

// ObserveOperation records how long an operation took.
func (m *ProbeMetrics) ObserveOperation(operation string, duration time.Duration) {
	m.Duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveRecord records the outcome of probing one record.
func (m *ProbeMetrics) ObserveRecord(record string, skus int, err error) {
	if err != nil {
		m.Records.WithLabelValues(ResultFail).Inc()
		return
	}

	m.Records.WithLabelValues(ResultPass).Inc()
	m.SKUs.WithLabelValues(record).Set(float64(skus))
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (m *ProbeMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *ProbeMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
