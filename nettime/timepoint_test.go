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

package nettime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimepointRoundTripExact(t *testing.T) {
	// 4MHz: 1 tick = 250ns exactly, so a multiple of 250ns round-trips exactly.
	tp := TimepointFromNS(1_000_000, HiResCounterHz, RoundNearest)
	assert.Equal(t, Timepoint(4000), tp)
	assert.Equal(t, uint64(1_000_000), NSFromTimepoint(tp, HiResCounterHz))
}

func TestTimepointRoundingModes(t *testing.T) {
	// 4MHz tick = 250ns; 900ns is 3.6 ticks.
	assert.Equal(t, Timepoint(4), TimepointFromNS(900, HiResCounterHz, RoundNearest))
	assert.Equal(t, Timepoint(4), TimepointFromNS(900, HiResCounterHz, RoundNext))
	assert.Equal(t, Timepoint(3), TimepointFromNS(900, HiResCounterHz, RoundPrevious))
}

func TestTimepointFromNSNoOverflowForLongUptime(t *testing.T) {
	// ~30 days of uptime in ns; must not overflow the split-math conversion.
	const thirtyDaysNS = uint64(30) * 24 * 3600 * 1e9
	tp := TimepointFromNS(thirtyDaysNS, HiResCounterHz, RoundNearest)
	back := NSFromTimepoint(tp, HiResCounterHz)
	// Within one tick period (250ns) of the original value.
	diff := int64(thirtyDaysNS) - int64(back)
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, int64(250))
}

func TestTimepointSleepCounterFrequency(t *testing.T) {
	tp := TimepointFromNS(1_000_000_000, SleepCounterHz, RoundNearest)
	assert.Equal(t, Timepoint(32768), tp)
}
