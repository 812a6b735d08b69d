/*
Copyright (c) The mac154 Authors.

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

package stats

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// PrometheusExporter periodically flattens a Counters snapshot into a
// registry of gauges and serves them over /metrics, grounded directly
// on facebook-time/ptp/sptp/stats/prom_exporter.go's
// PrometheusExporter — same registry-per-exporter shape, same
// re-register-or-reuse handling of an already-registered gauge, same
// http.ListenAndServe(...) serve call, though Start returns its error
// instead of passing it to log.Fatal. Unlike the teacher's
// exporter, this one scrapes its own process's Counters directly
// instead of fetching another process's counters over HTTP first —
// mac154d is the one process producing them.
type PrometheusExporter struct {
	registry *prometheus.Registry
	counters *Counters
	listen   string
	interval time.Duration
}

// NewPrometheusExporter builds an exporter that scrapes counters every
// interval and serves the result on listen (e.g. ":9154").
func NewPrometheusExporter(counters *Counters, listen string, interval time.Duration) *PrometheusExporter {
	return &PrometheusExporter{
		registry: prometheus.NewRegistry(),
		counters: counters,
		listen:   listen,
		interval: interval,
	}
}

// Start scrapes on a ticker and serves /metrics. It blocks, so callers
// run it in its own goroutine (cmd/mac154d does, logging its error).
func (e *PrometheusExporter) Start() error {
	go func() {
		for {
			e.scrape()
			time.Sleep(e.interval)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	log.Infof("stats: serving prometheus metrics on %s/metrics", e.listen)
	return http.ListenAndServe(e.listen, mux)
}

func (e *PrometheusExporter) scrape() {
	for name, val := range e.counters.Snapshot() {
		e.setGauge(name, float64(val))
	}
	e.setGauge("correction_mean_us", e.counters.CorrectionMean())
	e.setGauge("correction_stddev_us", e.counters.CorrectionStddev())
	e.setGauge("correction_samples", float64(e.counters.CorrectionCount()))
}

// flattenKey turns a dotted counter name (e.g. "drop.not_supported")
// into a valid Prometheus metric name, the same replacement set
// facebook-time/ptp/sptp/stats/prom_exporter.go applies.
func flattenKey(key string) string {
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, ".", "_")
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, "=", "_")
	key = strings.ReplaceAll(key, "/", "_")
	return key
}

func (e *PrometheusExporter) setGauge(name string, value float64) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: fmt.Sprintf("mac154_%s", flattenKey(name)), Help: name})
	if err := e.registry.Register(g); err != nil {
		are := &prometheus.AlreadyRegisteredError{}
		if errors.As(err, are) {
			g = are.ExistingCollector.(prometheus.Gauge)
		} else {
			log.Errorf("stats: failed to register metric %s: %v", name, err)
			return
		}
	}
	g.Set(value)
}
