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
	"fmt"

	"github.com/Knetic/govaluate"
)

// Threshold is an operator-supplied boolean alarm expression evaluated
// against a Counters snapshot — e.g. "missed_slots > 5" or
// "correction_stddev_us > 200 && queue_depth_max > 32". Grounded on
// facebook-time/fbclock/daemon/math.go's Math type, which compiles a
// govaluate.EvaluableExpression once and evaluates it repeatedly
// against a map of named sample series; this is the same pattern
// narrowed to a single boolean condition instead of a quality score.
type Threshold struct {
	Expr     string
	compiled *govaluate.EvaluableExpression
}

// NewThreshold compiles expr. A malformed expression is rejected at
// compile time, not on first evaluation.
func NewThreshold(expr string) (*Threshold, error) {
	compiled, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("stats: parsing threshold %q: %w", expr, err)
	}
	return &Threshold{Expr: expr, compiled: compiled}, nil
}

// Evaluate runs the compiled expression against a counters snapshot,
// exposing every named counter plus correction_mean_us/
// correction_stddev_us/correction_samples as variables.
func (t *Threshold) Evaluate(counters *Counters) (bool, error) {
	snapshot := counters.Snapshot()
	params := make(map[string]any, len(snapshot)+3)
	for k, v := range snapshot {
		params[flattenKey(k)] = float64(v)
	}
	params["correction_mean_us"] = counters.CorrectionMean()
	params["correction_stddev_us"] = counters.CorrectionStddev()
	params["correction_samples"] = float64(counters.CorrectionCount())

	result, err := t.compiled.Evaluate(params)
	if err != nil {
		return false, fmt.Errorf("stats: evaluating threshold %q: %w", t.Expr, err)
	}
	tripped, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("stats: threshold %q did not evaluate to a boolean", t.Expr)
	}
	return tripped, nil
}
