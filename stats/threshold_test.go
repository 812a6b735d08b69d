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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThresholdRejectsMalformedExpression(t *testing.T) {
	_, err := NewThreshold("missed_slots >")
	assert.Error(t, err)
}

func TestThresholdEvaluatesAgainstSnapshot(t *testing.T) {
	th, err := NewThreshold("missed_slots > 5")
	require.NoError(t, err)

	c := NewCounters()
	c.Set("missed_slots", 2)
	tripped, err := th.Evaluate(c)
	require.NoError(t, err)
	assert.False(t, tripped)

	c.Set("missed_slots", 9)
	tripped, err = th.Evaluate(c)
	require.NoError(t, err)
	assert.True(t, tripped)
}

func TestThresholdSeesCorrectionStats(t *testing.T) {
	th, err := NewThreshold("correction_stddev_us > 1")
	require.NoError(t, err)

	c := NewCounters()
	c.ObserveCorrection(0)
	c.ObserveCorrection(100)
	tripped, err := th.Evaluate(c)
	require.NoError(t, err)
	assert.True(t, tripped)
}

func TestThresholdRejectsNonBooleanResult(t *testing.T) {
	th, err := NewThreshold("missed_slots + 1")
	require.NoError(t, err)

	c := NewCounters()
	_, err = th.Evaluate(c)
	assert.Error(t, err)
}
