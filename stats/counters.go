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
	"sync"

	"github.com/eclesh/welford"
)

// Counters is the mutable set of runtime counters one TSCH interface
// accumulates: named integer counters (frames dropped per §7 error
// kind, ASN, missed slots, per-neighbor queue depth) plus the online
// mean/variance of the Enhanced-ACK time-correction series. The
// welford accumulator is grounded directly on
// facebook-time/fbclock/daemon/math.go's mean/variance/stddev helpers —
// the same online, no-history-buffer estimator, repurposed here from a
// PTP offset series to a TSCH time-correction series.
type Counters struct {
	mu         sync.Mutex
	named      map[string]int64
	correction *welford.Stats
}

// NewCounters returns an empty counter set.
func NewCounters() *Counters {
	return &Counters{named: make(map[string]int64), correction: welford.New()}
}

// Inc increments a named counter by one.
func (c *Counters) Inc(name string) { c.IncBy(name, 1) }

// IncBy increments a named counter by delta (delta may be negative).
func (c *Counters) IncBy(name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.named[name] += delta
}

// Set overwrites a named counter, used for gauge-like values such as
// the current ASN or a per-neighbor queue depth.
func (c *Counters) Set(name string, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.named[name] = value
}

// Get reads a single named counter.
func (c *Counters) Get(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.named[name]
}

// Snapshot copies out every named counter, safe for a caller (the
// Prometheus exporter, a diag threshold check) to range over without
// holding the lock.
func (c *Counters) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.named))
	for k, v := range c.named {
		out[k] = v
	}
	return out
}

// ObserveCorrection folds one handle_rx time-correction sample (§4.7,
// microseconds) into the running mean/variance.
func (c *Counters) ObserveCorrection(correctionUS int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.correction.Add(float64(correctionUS))
}

// CorrectionMean returns the mean of the observed correction series,
// 0 if no samples have been observed yet.
func (c *Counters) CorrectionMean() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.correction.Mean()
}

// CorrectionStddev returns the standard deviation of the observed
// correction series.
func (c *Counters) CorrectionStddev() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.correction.Stddev()
}

// CorrectionCount returns how many correction samples have been folded in.
func (c *Counters) CorrectionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.correction.Count())
}
