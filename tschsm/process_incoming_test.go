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
	"github.com/stretchr/testify/require"

	"github.com/go154/mac154/frame"
	"github.com/go154/mac154/macctx"
	"github.com/go154/mac154/security"
	"github.com/go154/mac154/stats"
	"github.com/go154/mac154/tsch"
)

func buildUnicastData(t *testing.T, senderPAN frame.PANID, senderShort frame.ShortAddr, dst frame.Addr, payload []byte) []byte {
	t.Helper()
	var seq uint8
	senderID := frame.WriteIdentity{PAN: senderPAN, Short: senderShort, Sequence: &seq}
	params, llHdrLen, authTagLen, err := frame.GetDataFrameParams(senderID, dst, frame.NoAddr)
	require.NoError(t, err)
	require.Equal(t, 0, authTagLen)

	buf := make([]byte, llHdrLen+len(payload))
	copy(buf[llHdrLen:], payload)
	require.NoError(t, frame.WriteMHRAndSecurity(&senderID, frame.TypeData, params, buf, llHdrLen, authTagLen))
	return buf
}

func TestProcessIncomingComposesParseFilterPayloadAndHandleRX(t *testing.T) {
	m, ctx, _ := newTestMachine(t, &fakeRadio{})
	require.NoError(t, ctx.SetPANID(frame.PANID(0xABCD)))
	require.NoError(t, ctx.SetShortAddr(frame.ShortAddr(0x1234)))

	sender := frame.ShortAddress(0x9999)
	buf := buildUnicastData(t, 0xABCD, 0x9999, frame.ShortAddress(0x1234), []byte("hi"))

	m.active = &activeLink{link: &tsch.Link{Addr: sender}, programmedNS: 1_000_000}

	mpdu, ok, correction, err := m.ProcessIncoming(buf, 999_000)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hi"), mpdu.FramePayload)
	assert.Equal(t, int32(1), correction) // 1000ns early, rounds to +1us
}

func TestProcessIncomingDropsOnFilterMismatch(t *testing.T) {
	m, ctx, _ := newTestMachine(t, &fakeRadio{})
	require.NoError(t, ctx.SetPANID(frame.PANID(0xABCD)))
	require.NoError(t, ctx.SetShortAddr(frame.ShortAddr(0x1111))) // not the frame's destination

	buf := buildUnicastData(t, 0xABCD, 0x9999, frame.ShortAddress(0x1234), []byte("hi"))

	_, ok, correction, err := m.ProcessIncoming(buf, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(0), correction)
}

func TestProcessIncomingWiresCorrectionIntoCounters(t *testing.T) {
	m, ctx, _ := newTestMachine(t, &fakeRadio{})
	require.NoError(t, ctx.SetPANID(frame.PANID(0xABCD)))
	require.NoError(t, ctx.SetShortAddr(frame.ShortAddr(0x1234)))
	counters := stats.NewCounters()
	m.SetCounters(counters)

	sender := frame.ShortAddress(0x9999)
	buf := buildUnicastData(t, 0xABCD, 0x9999, frame.ShortAddress(0x1234), []byte("hi"))
	m.active = &activeLink{link: &tsch.Link{Addr: sender}, programmedNS: 1_000_000}

	_, ok, _, err := m.ProcessIncoming(buf, 999_000)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, counters.CorrectionCount())
}

func TestDecryptPassesThroughFrameWithNoAuxHeader(t *testing.T) {
	m, _, _ := newTestMachine(t, &fakeRadio{})
	mpdu := frame.MPDU{MACPayload: []byte("hi")}
	pkt := []byte{0, 0, 0, 'h', 'i'}
	require.NoError(t, m.decrypt(&mpdu, pkt))
	assert.Equal(t, []byte("hi"), mpdu.MACPayload)
}

func TestDecryptRejectsPreVersion2015SecuredFrame(t *testing.T) {
	m, ctx, _ := newTestMachine(t, &fakeRadio{})
	key := [16]byte{1}
	require.NoError(t, ctx.SetSecuritySettings(macctx.SecurityConfig{Level: security.LevelMIC32, Key: key}))

	mpdu := frame.MPDU{
		Control: frame.Control{FrameType: frame.TypeData, Version: frame.Version2006},
		HasAux:  true,
		Aux:     frame.AuxSecurityHeader{Level: security.LevelMIC32},
	}
	err := m.decrypt(&mpdu, make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecryptRejectsLevelMismatch(t *testing.T) {
	m, ctx, _ := newTestMachine(t, &fakeRadio{})
	key := [16]byte{1}
	require.NoError(t, ctx.SetSecuritySettings(macctx.SecurityConfig{Level: security.LevelMIC32, Key: key}))

	mpdu := frame.MPDU{
		Control: frame.Control{FrameType: frame.TypeData, Version: frame.Version2015},
		HasAux:  true,
		Aux:     frame.AuxSecurityHeader{Level: security.LevelMIC64},
	}
	err := m.decrypt(&mpdu, make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestIncomingNonceSelectsExtendedOrShortForm(t *testing.T) {
	m, _, _ := newTestMachine(t, &fakeRadio{})
	m.asn = 7

	extMPDU := &frame.MPDU{Src: frame.ExtAddress(testExt(9))}
	extNonce, err := m.incomingNonce(extMPDU)
	require.NoError(t, err)
	assert.Equal(t, security.NonceTSCHExtended(testExt(9), 7), extNonce)

	shortMPDU := &frame.MPDU{HasSrcPAN: true, SrcPAN: 0xABCD, Src: frame.ShortAddress(0x42)}
	shortNonce, err := m.incomingNonce(shortMPDU)
	require.NoError(t, err)
	assert.Equal(t, security.NonceTSCHShort(0xABCD, 0x42, 7), shortNonce)

	noneMPDU := &frame.MPDU{}
	_, err = m.incomingNonce(noneMPDU)
	assert.ErrorIs(t, err, ErrInvalid)
}
