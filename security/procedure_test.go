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

package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLevelRejectsNoneAndReserved(t *testing.T) {
	assert.ErrorIs(t, ValidateLevel(LevelNone), ErrSecurity)
	assert.ErrorIs(t, ValidateLevel(Level(4)), ErrSecurity)
	assert.ErrorIs(t, ValidateLevel(Level(9)), ErrSecurity)
	assert.NoError(t, ValidateLevel(LevelMIC32))
	assert.NoError(t, ValidateLevel(LevelEncMIC128))
}

func TestOutgoingRejectsExhaustedCounter(t *testing.T) {
	s, err := NewSession(testKey())
	require.NoError(t, err)
	payload := []byte("payload bytes")
	_, err = s.Outgoing(LevelMIC32, FrameCounterExhausted, testNonce(), nil, payload)
	assert.ErrorIs(t, err, ErrSecurity)
}

func TestOutgoingRejectsLevelNone(t *testing.T) {
	s, err := NewSession(testKey())
	require.NoError(t, err)
	_, err = s.Outgoing(LevelNone, 1, testNonce(), nil, []byte("x"))
	assert.ErrorIs(t, err, ErrSecurity)
}

func TestOutgoingIncomingRoundTrip(t *testing.T) {
	s, err := NewSession(testKey())
	require.NoError(t, err)

	header := []byte{0x49, 0xd8, 0x01}
	payload := []byte("tsch application payload here")
	orig := append([]byte(nil), payload...)

	tag, err := s.Outgoing(LevelEncMIC32, 7, testNonce(), header, payload)
	require.NoError(t, err)
	assert.Len(t, tag, 4)

	onWire := append(append([]byte(nil), payload...), tag...)
	plainLen, err := s.Incoming(LevelEncMIC32, testNonce(), header, onWire)
	require.NoError(t, err)
	assert.Equal(t, orig, onWire[:plainLen])
}

func TestIncomingRejectsReservedLevel(t *testing.T) {
	s, err := NewSession(testKey())
	require.NoError(t, err)
	_, err = s.Incoming(Level(4), testNonce(), nil, []byte("0123456789012345"))
	assert.ErrorIs(t, err, ErrSecurity)
}
