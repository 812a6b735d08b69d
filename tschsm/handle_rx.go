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

package tschsm

import (
	"github.com/go154/mac154/frame"
	"github.com/go154/mac154/nettime"
)

// Verdict is the result of HandleRX, §4.7 handle_rx → (continue|drop,
// time_correction_us).
type Verdict int

const (
	VerdictDrop Verdict = iota
	VerdictContinue
)

// HandleRX implements §4.7 handle_rx: correlate an arriving frame with
// the link the state machine currently has active, and compute the
// time correction an Enhanced-ACK should carry back to the sender. If
// the active link is also a timekeeping link, the correction is also
// applied locally via the net-time reference's syntonize hook.
//
// pktTSNS is the driver-reported arrival timestamp of the frame (the
// PHY's own notion of "now", same clock domain as the context's
// net-time reference).
func (m *Machine) HandleRX(srcAddr frame.Addr, pktTSNS uint64) (Verdict, int32) {
	m.activeMu.Lock()
	active := m.active
	m.activeMu.Unlock()

	if active == nil {
		return VerdictDrop, 0
	}
	if !active.link.Addr.Equal(srcAddr) {
		return VerdictDrop, 0
	}

	correctionNS := int64(active.programmedNS) - int64(pktTSNS)
	correctionUS := roundToNearestUS(correctionNS)

	if active.link.Timekeeping {
		clock := m.ctx.Clock()
		tp := clock.GetTimepointFromTime(pktTSNS, nettime.RoundNearest)
		clock.Syntonize(pktTSNS, tp)
	}

	return VerdictContinue, correctionUS
}

// roundToNearestUS rounds a nanosecond delta to the nearest
// microsecond, §4.7 "round_to_nearest_us".
func roundToNearestUS(deltaNS int64) int32 {
	neg := deltaNS < 0
	if neg {
		deltaNS = -deltaNS
	}
	us := (deltaNS + 500) / 1000
	if neg {
		us = -us
	}
	return int32(us)
}
