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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go154/mac154/driver"
	"github.com/go154/mac154/tsch"
)

func TestHandleRXDropsWhenNoActiveLink(t *testing.T) {
	m, _, _ := newTestMachine(t, &fakeRadio{})
	verdict, correction := m.HandleRX(neighborAddr(1), 1000)
	assert.Equal(t, VerdictDrop, verdict)
	assert.Equal(t, int32(0), correction)
}

func TestHandleRXDropsOnAddressMismatch(t *testing.T) {
	m, _, _ := newTestMachine(t, &fakeRadio{})
	active := neighborAddr(1)
	m.active = &activeLink{link: &tsch.Link{Addr: active}, programmedNS: 1000}

	verdict, correction := m.HandleRX(neighborAddr(2), 1000)
	assert.Equal(t, VerdictDrop, verdict)
	assert.Equal(t, int32(0), correction)
}

func TestHandleRXReturnsRoundedCorrection(t *testing.T) {
	m, _, _ := newTestMachine(t, &fakeRadio{})
	addr := neighborAddr(3)
	m.active = &activeLink{link: &tsch.Link{Addr: addr}, programmedNS: 1_000_000}

	verdict, correction := m.HandleRX(addr, 998_600)
	assert.Equal(t, VerdictContinue, verdict)
	assert.Equal(t, int32(1), correction) // 1400ns early, rounds to +1us
}

func TestHandleRXSyntonizesTimekeepingLink(t *testing.T) {
	m, _, _ := newTestMachine(t, &fakeRadio{caps: driver.CapTimedRX})
	addr := neighborAddr(4)
	m.active = &activeLink{
		link:         &tsch.Link{Addr: addr, Timekeeping: true},
		programmedNS: 2_000_000,
	}

	verdict, _ := m.HandleRX(addr, 2_000_000)
	assert.Equal(t, VerdictContinue, verdict)
}

func TestHandleRXIgnoresNonTimekeepingLinkForSyntonize(t *testing.T) {
	m, _, _ := newTestMachine(t, &fakeRadio{})
	addr := neighborAddr(5)
	m.active = &activeLink{link: &tsch.Link{Addr: addr}, programmedNS: 500}

	verdict, correction := m.HandleRX(addr, 500)
	assert.Equal(t, VerdictContinue, verdict)
	assert.Equal(t, int32(0), correction)
}

func TestRoundToNearestUS(t *testing.T) {
	cases := []struct {
		deltaNS int64
		wantUS  int32
	}{
		{0, 0},
		{400, 0},
		{500, 1},
		{-400, 0},
		{-500, -1},
		{1500, 2},
		{-1500, -2},
	}
	for _, c := range cases {
		assert.Equal(t, c.wantUS, roundToNearestUS(c.deltaNS), "delta=%d", c.deltaNS)
	}
}
