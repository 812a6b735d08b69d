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
	"fmt"

	"github.com/go154/mac154/frame"
	"github.com/go154/mac154/security"
)

// ErrInvalid covers incoming frames this package rejects before they
// ever reach HandleRX: pre-2015 security, a level mismatch against the
// interface's configured level, or a security-enabled frame with no
// source address to key a TSCH nonce off of.
var ErrInvalid = fmt.Errorf("tschsm: invalid")

// ProcessIncoming is the composed receive path §2/§5 describe a driver
// calling into once it has bytes off the air and a capture timestamp:
// parse the MHR (A), filter (§4.1) against the interface's own
// addressing, decrypt/verify in place if the aux header says the frame
// is secured (C), parse the payload (A), and finally hand the frame to
// HandleRX (G) for slot correlation and time correction. A dropped
// frame is reported through ok==false, not an error — only a malformed
// or failed-decrypt frame is an error; an address mismatch or an
// orphan notification from an end device is routine and logged at
// most at Debug by the caller.
func (m *Machine) ProcessIncoming(pkt []byte, pktTSNS uint64) (mpdu frame.MPDU, ok bool, correctionUS int32, err error) {
	mpdu, err = frame.ParseMHR(pkt)
	if err != nil {
		return frame.MPDU{}, false, 0, fmt.Errorf("parse mhr: %w", err)
	}

	if !frame.Filter(m.ctx.FilterIdentity(), mpdu) {
		return mpdu, false, 0, nil
	}

	if err := m.decrypt(&mpdu, pkt); err != nil {
		return mpdu, false, 0, err
	}

	if _, err := frame.ParsePayload(&mpdu); err != nil {
		return mpdu, false, 0, fmt.Errorf("parse payload: %w", err)
	}

	verdict, correctionUS := m.HandleRX(mpdu.Src, pktTSNS)
	if m.counters != nil && verdict == VerdictContinue {
		m.counters.ObserveCorrection(correctionUS)
	}
	return mpdu, verdict == VerdictContinue, correctionUS, nil
}

// decrypt implements the §4.3/§9.2.4/§9.2.5 incoming procedure for one
// parsed frame: reject pre-2015 security, reject an aux header level
// that doesn't match the interface's configured level (accounting for
// the Enhanced Beacon encryption downgrade of §4.3), derive the TSCH
// nonce from the frame's source address and the state machine's own
// ASN, and decrypt/verify in place. A frame with no aux header is
// passed through untouched.
func (m *Machine) decrypt(mpdu *frame.MPDU, pkt []byte) error {
	if !mpdu.HasAux {
		return nil
	}
	if mpdu.Control.Version != frame.Version2015 {
		return fmt.Errorf("%w: pre-2015 frame carries a security header", ErrInvalid)
	}

	level, session := m.ctx.SecuritySettings()
	if session == nil {
		return fmt.Errorf("%w: security-enabled frame but no session configured", ErrInvalid)
	}
	wantLevel := level
	if mpdu.Control.FrameType == frame.TypeBeacon {
		wantLevel = security.DowngradeLevelForEnhancedBeacon(level)
	}
	if mpdu.Aux.Level != wantLevel {
		return fmt.Errorf("%w: aux header level %v, interface configured %v", ErrInvalid, mpdu.Aux.Level, wantLevel)
	}

	nonce, err := m.incomingNonce(mpdu)
	if err != nil {
		return err
	}

	header := pkt[:len(pkt)-len(mpdu.MACPayload)]
	plainLen, err := session.Incoming(mpdu.Aux.Level, nonce, header, mpdu.MACPayload)
	if err != nil {
		return fmt.Errorf("incoming security: %w", err)
	}
	mpdu.MACPayload = mpdu.MACPayload[:plainLen]
	return nil
}

// incomingNonce derives the TSCH nonce (§9.3.3.2) for a parsed frame,
// keyed on whatever form of source address it carries. A frame with no
// source address at all cannot be security-enabled under TSCH.
func (m *Machine) incomingNonce(mpdu *frame.MPDU) ([13]byte, error) {
	switch mpdu.Src.Mode {
	case frame.AddrModeExtended:
		return security.NonceTSCHExtended(mpdu.Src.Ext, m.asn), nil
	case frame.AddrModeShort:
		pan := m.ctx.PANID()
		if mpdu.HasSrcPAN {
			pan = mpdu.SrcPAN
		}
		return security.NonceTSCHShort(uint16(pan), uint16(mpdu.Src.Short), m.asn), nil
	default:
		return [13]byte{}, fmt.Errorf("%w: security-enabled frame has no source address", ErrInvalid)
	}
}
