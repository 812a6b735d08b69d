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

func TestNonceNonTSCHLayout(t *testing.T) {
	ext := [8]byte{0x12, 0x34, 0xbe, 0xef, 0xcd, 0xab, 0x01, 0x02}
	n, err := NonceNonTSCH(ext, 0x00000042, LevelEncMIC64)
	require.NoError(t, err)
	assert.Equal(t, ext[:], n[0:8])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x42}, n[8:12])
	assert.Equal(t, byte(LevelEncMIC64), n[12])
}

func TestNonceTSCHExtendedOmitsLevelByte(t *testing.T) {
	ext := [8]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x11, 0x22}
	n := NonceTSCHExtended(ext, 0x0102030405)
	assert.Equal(t, ext[:], n[0:8])
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, n[8:13])
}

func TestNonceTSCHShortLayout(t *testing.T) {
	n := NonceTSCHShort(0xabcd, 0x0102, 0x030405)
	assert.Equal(t, ieeeCID[:], n[0:3])
	assert.Equal(t, byte(0), n[3])
	assert.Equal(t, []byte{0xab, 0xcd}, n[4:6])
	assert.Equal(t, []byte{0x01, 0x02}, n[6:8])
	assert.Equal(t, []byte{0x00, 0x00, 0x03, 0x04, 0x05}, n[8:13])
}

func TestNonceASN40Mask(t *testing.T) {
	n := NonceTSCHExtended([8]byte{}, 0xffff0102030405)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, n[8:13])
}

func TestDowngradeLevelForEnhancedBeacon(t *testing.T) {
	assert.Equal(t, LevelMIC32, DowngradeLevelForEnhancedBeacon(LevelEncMIC32))
	assert.Equal(t, LevelMIC64, DowngradeLevelForEnhancedBeacon(LevelEncMIC64))
	assert.Equal(t, LevelMIC128, DowngradeLevelForEnhancedBeacon(LevelEncMIC128))
	assert.Equal(t, LevelMIC32, DowngradeLevelForEnhancedBeacon(LevelMIC32))
	assert.Equal(t, LevelNone, DowngradeLevelForEnhancedBeacon(LevelNone))
}

func TestCheckFrameCounter(t *testing.T) {
	assert.NoError(t, CheckFrameCounter(0))
	assert.NoError(t, CheckFrameCounter(0xFFFFFFFE))
	assert.ErrorIs(t, CheckFrameCounter(FrameCounterExhausted), ErrSecurity)
}
