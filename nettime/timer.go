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

// Timer is a handle returned by Reference.TimerStart; Stop cancels it.
type Timer struct {
	queue *TimeoutQueue
	node  *timeoutNode
}

// Stop cancels the timer (timer_stop). Safe to call after the timer has
// already fired (one-shot) or multiple times.
func (t *Timer) Stop() {
	if t == nil || t.node == nil {
		return
	}
	t.queue.Remove(t.node)
}

// TimerStart schedules fn to run at expireAtNS network time (one-shot,
// or every periodNS thereafter if periodNS > 0), rounding the actual
// expiry onto the reference's native tick grid, §4.6 timer_start. It
// returns the timer handle and the expiry it actually programmed
// (ns, rounded) so the caller can record it for the compare-match
// assertion the net-time internals make when the timer fires.
func (r *Reference) TimerStart(q *TimeoutQueue, expireAtNS uint64, periodNS uint64, rounding Rounding, fn func()) (*Timer, uint64) {
	now := r.GetTime()

	target := expireAtNS
	if target < now {
		target = now
	}
	tp := TimepointFromNS(target, r.hiResHz, rounding)
	programmed := NSFromTimepoint(tp, r.hiResHz)
	if programmed < now {
		programmed = now
	}

	dt := int64(programmed - now)
	node, err := q.AddTimeout(fn, dt)
	if err != nil {
		// dt is derived from a bounded subtraction above and can never
		// equal Forever; this would only fire on a programming error.
		panic("nettime: timer_start produced a Forever delta")
	}
	if periodNS > 0 {
		node.period = int64(periodNS)
	}
	return &Timer{queue: q, node: node}, programmed
}
