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
	"fmt"

	"github.com/go154/mac154/ie"
)

// CreateImmAckFrame builds a 3-byte immediate acknowledgment: frame
// control plus the echoed sequence number, no addressing, §4.1
// create_imm_ack_frame.
func CreateImmAckFrame(seq uint8) []byte {
	ctl := Control{
		FrameType:         TypeAck,
		Version:           Version2006,
		HasSequenceNumber: true,
	}
	buf := make([]byte, 3)
	binary.LittleEndian.PutUint16(buf, ctl.encode())
	buf[2] = seq
	return buf
}

// timeCorrectionIELen is the fixed wire size of an enhanced ACK's
// single Time Correction header IE (2-byte IE header + 2-byte content).
const timeCorrectionIELen = 4

// CreateEnhAckFrame builds a 2015+ enhanced ACK whose sole payload is a
// Time Correction header IE, §4.1 create_enh_ack_frame /
// §7.4.2.7. timeCorrectionUS must be within [-2048, 2047].
func CreateEnhAckFrame(seq uint8, nack bool, timeCorrectionUS int16) ([]byte, error) {
	tc := ie.TimeCorrection{CorrectionUS: timeCorrectionUS, NACK: nack}
	content, err := tc.MarshalContent()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	hie := ie.HeaderIE{ElementID: ie.HeaderIDTimeCorrection, Content: content}
	ctl := Control{
		FrameType:         TypeAck,
		Version:           Version2015,
		HasSequenceNumber: true,
		IEPresent:         true,
	}

	buf := make([]byte, 2+1+timeCorrectionIELen+2)
	binary.LittleEndian.PutUint16(buf, ctl.encode())
	buf[2] = seq
	pos := 3
	n, err := hie.MarshalTo(buf[pos:])
	if err != nil {
		return nil, err
	}
	pos += n
	// HT2: payload IE list absent, plain payload (none) follows.
	ht2 := ie.HeaderIE{ElementID: ie.HeaderIDHT2}
	n, err = ht2.MarshalTo(buf[pos:])
	if err != nil {
		return nil, err
	}
	pos += n
	return buf[:pos], nil
}
