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

import "sync"

// Counters is the pair of free-running tick sources Reference merges:
// a sleep counter that never stops (so uptime survives a sleep cycle)
// and a radio hi-res counter that can be powered down to save energy.
type Counters interface {
	// SleepTicks returns the current tick count of the always-on counter.
	SleepTicks() uint64
	// HiResTicks returns the current tick count of the radio counter and
	// whether it is currently powered; the count is undefined when false.
	HiResTicks() (uint64, bool)
	// PowerHiRes requests the radio counter powered on or off
	// (counter_wake_up / counter_may_sleep).
	PowerHiRes(on bool)
}

// Reference is the merged, monotonic, syntonized network-time clock of
// §4.6: it bridges Counters' two domains into one continuous
// nanosecond timeline and exposes the timepoint/timer/syntonize API.
type Reference struct {
	mu sync.Mutex

	counters Counters
	sleepHz  Frequency
	hiResHz  Frequency

	awake          bool
	epochNS        uint64 // merged ns at the last wake-up
	hiResBaseTicks uint64 // hi-res tick count observed at the last wake-up
	lastNS         uint64 // monotonicity clamp: never report time going backward
}

// NewReference builds a Reference over the given tick sources.
func NewReference(counters Counters, sleepHz, hiResHz Frequency) *Reference {
	return &Reference{counters: counters, sleepHz: sleepHz, hiResHz: hiResHz}
}

// WakeUp powers the hi-res counter and captures the epoch offset so the
// merged timeline stays continuous across the transition (counter_wake_up).
func (r *Reference) WakeUp() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epochNS = r.mergedNSLocked()
	r.counters.PowerHiRes(true)
	if ticks, on := r.counters.HiResTicks(); on {
		r.hiResBaseTicks = ticks
	}
	r.awake = true
}

// MaySleep releases the hi-res counter (counter_may_sleep); subsequent
// reads fall back to the sleep counter until the next WakeUp.
func (r *Reference) MaySleep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters.PowerHiRes(false)
	r.awake = false
}

func (r *Reference) mergedNSLocked() uint64 {
	if r.awake {
		if ticks, on := r.counters.HiResTicks(); on {
			delta := ticks - r.hiResBaseTicks
			return r.epochNS + NSFromTimepoint(Timepoint(delta), r.hiResHz)
		}
	}
	return NSFromTimepoint(Timepoint(r.counters.SleepTicks()), r.sleepHz)
}

// GetTime returns the current monotonic network time in nanoseconds
// since interface startup (get_time). A monotonicity clamp guarantees
// the result never decreases even across a sleep/wake transition whose
// underlying counters briefly disagree.
func (r *Reference) GetTime() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ns := r.mergedNSLocked()
	if ns < r.lastNS {
		ns = r.lastNS
	}
	r.lastNS = ns
	return ns
}

// GetTimepointFromTime converts net time to a tick on the hi-res
// counter's native frequency (get_timepoint_from_time).
func (r *Reference) GetTimepointFromTime(ns uint64, rounding Rounding) Timepoint {
	return TimepointFromNS(ns, r.hiResHz, rounding)
}

// GetTimeFromTimepoint converts a hi-res-native tick back to net time
// (get_time_from_timepoint).
func (r *Reference) GetTimeFromTimepoint(tp Timepoint) uint64 {
	return NSFromTimepoint(tp, r.hiResHz)
}

// Syntonize is the skew-correction hook (syntonize): a no-op in this
// implementation, since the interface has no PLL to steer. Kept as a
// named method so callers (handle_rx's timekeeping-link path) have a
// stable hook to call once skew steering is implemented.
func (r *Reference) Syntonize(measuredTimeNS uint64, measuredTimepoint Timepoint) {}
