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

package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go154/mac154/security"
)

func TestImmediateAckScenario(t *testing.T) {
	pkt := CreateImmAckFrame(0x2A)
	assert.Equal(t, []byte{0x02, 0x00, 0x2A}, pkt)

	m, err := ParseMHR(pkt)
	require.NoError(t, err)
	assert.Equal(t, TypeAck, m.Control.FrameType)
	assert.Equal(t, Version2006, m.Control.Version)
	assert.True(t, m.Control.HasSequenceNumber)
	assert.Equal(t, uint8(0x2A), m.Sequence)
	assert.Equal(t, AddrModeNone, m.Control.DstAddrMode)
	assert.Equal(t, AddrModeNone, m.Control.SrcAddrMode)
}

func TestUnicastDataSamePANScenario(t *testing.T) {
	var seq uint8
	id := WriteIdentity{PAN: 0xABCD, Short: 0x1234, Sequence: &seq, AckDefault: true}
	dst := ShortAddress(0xBEEF)

	params, llHdrLen, authTagLen, err := GetDataFrameParams(id, dst, NoAddr)
	require.NoError(t, err)
	assert.Equal(t, 0, authTagLen)

	payload := []byte("hello")
	buf := make([]byte, llHdrLen+len(payload))
	copy(buf[llHdrLen:], payload)
	require.NoError(t, WriteMHRAndSecurity(&id, TypeData, params, buf, llHdrLen, authTagLen))

	want := append([]byte{0x61, 0x88, 0x00, 0xCD, 0xAB, 0xEF, 0xBE, 0x34, 0x12}, payload...)
	assert.Equal(t, want, buf)

	m, err := ParseMHR(buf)
	require.NoError(t, err)
	assert.True(t, m.Control.AckRequested)
	assert.True(t, m.HasDstPAN)
	assert.False(t, m.HasSrcPAN)
	assert.Equal(t, ShortAddr(0xBEEF), m.Dst.Short)
	assert.Equal(t, ShortAddr(0x1234), m.Src.Short)
	assert.True(t, m.Control.PANIDCompression)
}

func TestBroadcastDataForcesAckOff(t *testing.T) {
	var seq uint8
	id := WriteIdentity{PAN: 0xABCD, Short: 0x1234, Sequence: &seq, AckDefault: true}

	params, llHdrLen, authTagLen, err := GetDataFrameParams(id, NoAddr, NoAddr)
	require.NoError(t, err)
	buf := make([]byte, llHdrLen+1+authTagLen)
	buf[llHdrLen] = 0xAB
	require.NoError(t, WriteMHRAndSecurity(&id, TypeData, params, buf, llHdrLen, authTagLen))

	m, err := ParseMHR(buf)
	require.NoError(t, err)
	assert.False(t, m.Control.AckRequested)
	assert.True(t, m.Dst.IsBroadcast())
}

func TestOutgoingSecurityScenario(t *testing.T) {
	var key [16]byte
	session, err := security.NewSession(key)
	require.NoError(t, err)

	var ext ExtAddr
	for i := range ext {
		ext[i] = byte(i)
	}
	counter := uint32(1)
	var seq uint8
	id := WriteIdentity{
		PAN: 0xABCD, Short: AddrNotAssociated, Ext: ext, Sequence: &seq,
		SecLevel: security.LevelEncMIC32, Session: session, FrameCounter: &counter,
	}
	dst := ShortAddress(0x0001)

	params, llHdrLen, authTagLen, err := GetDataFrameParams(id, dst, NoAddr)
	require.NoError(t, err)
	assert.Equal(t, 4, authTagLen)

	plaintext := []byte{0x68, 0x69} // "hi"
	buf := make([]byte, llHdrLen+len(plaintext)+authTagLen)
	copy(buf[llHdrLen:], plaintext)

	require.NoError(t, WriteMHRAndSecurity(&id, TypeData, params, buf, llHdrLen, authTagLen))
	assert.Equal(t, uint32(2), counter)

	ciphertext := buf[llHdrLen : llHdrLen+2]
	assert.NotEqual(t, plaintext, ciphertext)

	m, err := ParseMHR(buf)
	require.NoError(t, err)
	require.True(t, m.HasAux)
	assert.Equal(t, uint32(1), m.Aux.FrameCounter)
	assert.Equal(t, security.LevelEncMIC32, m.Aux.Level)

	nonce, err := security.NonceNonTSCH(ext, m.Aux.FrameCounter, m.Aux.Level)
	require.NoError(t, err)
	header := buf[:llHdrLen]
	onWire := append([]byte(nil), m.MACPayload...)
	plainLen, err := session.Incoming(m.Aux.Level, nonce, header, onWire)
	require.NoError(t, err)
	assert.Equal(t, plaintext, onWire[:plainLen])
}
