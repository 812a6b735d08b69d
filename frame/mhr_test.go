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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMHRRejectsShortAndLongPackets(t *testing.T) {
	_, err := ParseMHR([]byte{0x00})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ParseMHR(make([]byte, MTU+1))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseMHRRejectsReservedType(t *testing.T) {
	ctl := Control{FrameType: Type(5), Version: Version2006, HasSequenceNumber: true}
	buf := make([]byte, 3)
	binary.LittleEndian.PutUint16(buf, ctl.encode())
	_, err := ParseMHR(buf)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseMHRRejectsPre2015DataWithNoAddressing(t *testing.T) {
	ctl := Control{FrameType: TypeData, Version: Version2006, HasSequenceNumber: true}
	buf := make([]byte, 3)
	binary.LittleEndian.PutUint16(buf, ctl.encode())
	_, err := ParseMHR(buf)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseMHRRejectsBeaconWithDestination(t *testing.T) {
	ctl := Control{FrameType: TypeBeacon, Version: Version2006, HasSequenceNumber: true, DstAddrMode: AddrModeShort}
	buf := make([]byte, 5)
	binary.LittleEndian.PutUint16(buf, ctl.encode())
	_, err := ParseMHR(buf)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseMHRRejectsSeqSuppressionPre2015(t *testing.T) {
	ctl := Control{FrameType: TypeData, Version: Version2006, HasSequenceNumber: false, DstAddrMode: AddrModeShort}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf, ctl.encode())
	_, err := ParseMHR(buf)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseMHRClearsFramePendingPre2015MacCmd(t *testing.T) {
	ctl := Control{FrameType: TypeMACCommand, Version: Version2006, HasSequenceNumber: true, FramePending: true, DstAddrMode: AddrModeShort}
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint16(buf, ctl.encode())
	// destination short address follows the 2-byte destination PAN
	binary.LittleEndian.PutUint16(buf[5:], 0x1234)
	buf[2] = 0x02 // sequence

	m, err := ParseMHR(buf)
	require.NoError(t, err)
	assert.False(t, m.Control.FramePending)
	// in-place repair: the buffer's own frame-control bit is cleared too.
	repaired := decodeRawControl(binary.LittleEndian.Uint16(buf))
	assert.False(t, repaired.FramePending)
}

func TestParseMHRRejectsNonImplicitKeyIDMode(t *testing.T) {
	ctl := Control{FrameType: TypeData, Version: Version2015, HasSequenceNumber: true, SecurityEnabled: true, DstAddrMode: AddrModeShort}
	buf := make([]byte, 2+1+2+2+5+1)
	binary.LittleEndian.PutUint16(buf, ctl.encode())
	// destination short address follows the 2-byte destination PAN
	binary.LittleEndian.PutUint16(buf[5:], 0x1234)
	buf[7] = 1 << 3 // key-id mode = index (1), not implicit
	_, err := ParseMHR(buf)
	assert.ErrorIs(t, err, ErrNotSupported)
}
