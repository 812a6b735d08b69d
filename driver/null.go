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

package driver

import "sync"

// NullRadio is a software-only Radio: it accepts every Send call and
// every SetChannel within its channel ranges, never reports medium
// energy, and replays nothing back to the TSCH state machine. It exists
// for running mac154d against a bootstrap config with no hardware attached —
// exercising the state machine's link-operate/timing path without a
// PHY underneath it, the same role a loopback transport plays in a
// protocol test harness.
type NullRadio struct {
	mu      sync.Mutex
	caps    Capability
	page    ChannelPage
	channel uint16
	ranges  [][2]uint16
	clock   TimeReference

	sent int
}

// NewNullRadio builds a NullRadio advertising caps on channel page
// page, accepting channels within ranges, and reporting clock as its
// time reference.
func NewNullRadio(caps Capability, page ChannelPage, ranges [][2]uint16, clock TimeReference) *NullRadio {
	return &NullRadio{caps: caps, page: page, ranges: ranges, clock: clock}
}

func (n *NullRadio) HWCapabilities() Capability { return n.caps }

func (n *NullRadio) SetChannel(ch uint16) error {
	if !n.VerifyChannel(ch) {
		return ErrNotSupported
	}
	n.mu.Lock()
	n.channel = ch
	n.mu.Unlock()
	return nil
}

func (n *NullRadio) CCA() (CCAResult, error) { return CCAIdle, nil }

func (n *NullRadio) Configure(kind ConfigureKind, value any) error { return nil }

func (n *NullRadio) Send(pkt []byte, timestampNS uint64) error {
	n.mu.Lock()
	n.sent++
	n.mu.Unlock()
	return nil
}

func (n *NullRadio) TimeReference() TimeReference { return n.clock }

func (n *NullRadio) CurrentChannelPage() ChannelPage { return n.page }

func (n *NullRadio) VerifyChannel(ch uint16) bool {
	for _, r := range n.ranges {
		if ch >= r[0] && ch <= r[1] {
			return true
		}
	}
	return false
}

func (n *NullRadio) SupportedChannelRanges() [][2]uint16 { return n.ranges }

// SentCount reports how many Send calls this radio has accepted.
func (n *NullRadio) SentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent
}
