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

// Frequency is a counter's nominal tick rate, in Hz.
type Frequency uint64

const (
	// SleepCounterHz is the nominal rate of the always-on, low-power
	// counter that keeps ticking through sleep.
	SleepCounterHz Frequency = 32768
	// HiResCounterHz is the nominal rate of the radio counter, only
	// powered while the interface needs sub-microsecond timing.
	HiResCounterHz Frequency = 4_000_000
)

// Rounding selects how a nanosecond duration maps onto a counter's
// discrete tick grid.
type Rounding int

const (
	RoundNearest Rounding = iota
	RoundNext
	RoundPrevious
)

// Timepoint is an opaque tick count in a counter's native frequency,
// §4 "Net-time timepoint".
type Timepoint uint64

const nsPerSec = uint64(1e9)

// TimepointFromNS converts a nanosecond duration to a Timepoint at hz,
// per the chosen rounding. The conversion splits ns into whole seconds
// and a sub-second remainder before multiplying by hz, so it stays
// within uint64 range for any representable uptime instead of
// overflowing on ns*hz directly.
func TimepointFromNS(ns uint64, hz Frequency, rounding Rounding) Timepoint {
	secs, rem := ns/nsPerSec, ns%nsPerSec
	whole := secs * uint64(hz)
	fracNum := rem * uint64(hz)
	var frac uint64
	switch rounding {
	case RoundNext:
		frac = (fracNum + nsPerSec - 1) / nsPerSec
	case RoundPrevious:
		frac = fracNum / nsPerSec
	default:
		frac = (fracNum + nsPerSec/2) / nsPerSec
	}
	return Timepoint(whole + frac)
}

// NSFromTimepoint converts a Timepoint at hz back to nanoseconds, using
// the same overflow-avoiding split as TimepointFromNS.
func NSFromTimepoint(tp Timepoint, hz Frequency) uint64 {
	t, h := uint64(tp), uint64(hz)
	return (t/h)*nsPerSec + (t%h)*nsPerSec/h
}
