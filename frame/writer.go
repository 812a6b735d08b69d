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

	"github.com/go154/mac154/security"
)

// WriteIdentity is the emission-side counterpart of FilterIdentity: the
// minimal slice of interface state the writer operations need, built by
// the caller (macctx, under its lock) so that this package never
// imports macctx.
type WriteIdentity struct {
	PAN   PANID
	Short ShortAddr
	Ext   ExtAddr

	// AckDefault is whether this interface asks for acknowledgment on
	// unicast frames; the bit is always forced off for broadcast
	// destinations regardless of this flag.
	AckDefault bool

	// Sequence is the interface's running DSN; non-ACK writers read and
	// post-increment it.
	Sequence *uint8

	// SecLevel is the interface's configured outgoing security level.
	// LevelNone disables security entirely.
	SecLevel security.Level
	Session  *security.Session
	// FrameCounter is the interface's outgoing frame counter; advanced
	// by one on every successful secured emission.
	FrameCounter *uint32
}

// WriteParams is the resolved addressing/security plan for one outgoing
// frame, produced by GetDataFrameParams and consumed by
// WriteMHRAndSecurity.
type WriteParams struct {
	DstMode AddrMode
	Dst     Addr
	SrcMode AddrMode
	Src     Addr

	HasDstPAN        bool
	HasSrcPAN        bool
	PANIDCompression bool

	SecurityEnabled bool
	SecLevel        security.Level

	// Sequence, when FrameType is TypeAck, is the echoed sequence number
	// to emit verbatim instead of consuming id.Sequence.
	Sequence uint8
}

// GetDataFrameParams resolves the outgoing addressing plan, §4.1
// get_data_frame_params: the source mode comes from the interface's
// association state (short address present wins over extended; neither
// present fails with ErrNotAssociated). A caller-supplied src must match
// the interface's address exactly. An empty destination becomes the
// broadcast short address.
func GetDataFrameParams(id WriteIdentity, dst, src Addr) (WriteParams, int, int, error) {
	var srcMode AddrMode
	var resolvedSrc Addr
	switch {
	case id.Short != AddrNotAssociated && id.Short != AddrNoShortAddr:
		srcMode = AddrModeShort
		resolvedSrc = ShortAddress(id.Short)
	case id.Ext != (ExtAddr{}):
		srcMode = AddrModeExtended
		resolvedSrc = ExtAddress(id.Ext)
	default:
		return WriteParams{}, 0, 0, ErrNotAssociated
	}
	if src.Mode != AddrModeNone && !src.Equal(resolvedSrc) {
		return WriteParams{}, 0, 0, fmt.Errorf("%w: source address does not match interface", ErrInvalid)
	}

	if dst.Mode == AddrModeNone {
		dst = ShortAddress(BroadcastShortAddr)
	}

	panIDCompression := dst.Mode != AddrModeNone && srcMode != AddrModeNone
	hasDstPAN, hasSrcPAN, err := deriveAddressing(dst.Mode, srcMode, panIDCompression)
	if err != nil {
		return WriteParams{}, 0, 0, err
	}

	securityEnabled := id.SecLevel != security.LevelNone
	params := WriteParams{
		DstMode:          dst.Mode,
		Dst:              dst,
		SrcMode:          srcMode,
		Src:              resolvedSrc,
		HasDstPAN:        hasDstPAN,
		HasSrcPAN:        hasSrcPAN,
		PANIDCompression: panIDCompression,
		SecurityEnabled:  securityEnabled,
		SecLevel:         id.SecLevel,
	}

	authTagLen := 0
	if securityEnabled {
		n, _, ok := id.SecLevel.AuthTagLen()
		if !ok {
			return WriteParams{}, 0, 0, fmt.Errorf("%w: reserved security level", ErrInvalid)
		}
		authTagLen = n
	}
	llHdrLen := ComputeHeaderSize(params, securityEnabled)
	return params, llHdrLen, authTagLen, nil
}

// ComputeHeaderSize is the deterministic header-length computation of
// §4.1 compute_header_size: the same addressing rules WriteMHRAndSecurity
// applies, plus the auxiliary security header length when securityEnabled.
func ComputeHeaderSize(params WriteParams, securityEnabled bool) int {
	n := 2 + 1 // frame control + sequence
	if params.HasDstPAN {
		n += 2
	}
	n += params.DstMode.addrLen()
	if params.HasSrcPAN {
		n += 2
	}
	n += params.SrcMode.addrLen()
	if securityEnabled {
		n += AuxSecurityHeader{KeyIDMode: security.KeyIDModeImplicit}.Size()
	}
	return n
}

func writeAddr(b []byte, a Addr) int {
	switch a.Mode {
	case AddrModeShort:
		binary.LittleEndian.PutUint16(b, uint16(a.Short))
		return 2
	case AddrModeExtended:
		copy(b, a.Ext[:])
		return 8
	default:
		return 0
	}
}

func (id *WriteIdentity) nextSequence(frameType Type, params WriteParams) uint8 {
	if frameType == TypeAck {
		return params.Sequence
	}
	seq := *id.Sequence
	*id.Sequence++
	return seq
}

// WriteMHRAndSecurity emits frame control, sequence, addressing and (if
// params.SecurityEnabled) the auxiliary security header into
// buf[:llHdrLen], then invokes the security engine over the header as
// AAD and buf[llHdrLen:len(buf)-authTagLen] as payload, appending the
// tag to the last authTagLen bytes of buf. §4.1 write_mhr_and_security.
//
// buf must already be sized llHdrLen+payloadLen+authTagLen with the MAC
// payload filled in at buf[llHdrLen:len(buf)-authTagLen]; a length
// mismatch after the header is written is a programming error and
// panics, matching the "buffer over/underrun indicates an upstream
// size-computation bug" failure semantics.
func WriteMHRAndSecurity(id *WriteIdentity, frameType Type, params WriteParams, buf []byte, llHdrLen, authTagLen int) error {
	if len(buf) < llHdrLen+authTagLen {
		return fmt.Errorf("%w: buffer too small for header and auth tag", ErrInvalid)
	}

	ackRequested := id.AckDefault && !params.Dst.IsBroadcast()
	ctl := Control{
		FrameType:         frameType,
		Version:           Version2006,
		DstAddrMode:       params.DstMode,
		SrcAddrMode:       params.SrcMode,
		HasDstPAN:         params.HasDstPAN,
		HasSrcPAN:         params.HasSrcPAN,
		PANIDCompression:  params.PANIDCompression,
		SecurityEnabled:   params.SecurityEnabled,
		AckRequested:      ackRequested,
		HasSequenceNumber: true,
	}

	pos := 0
	binary.LittleEndian.PutUint16(buf[pos:], ctl.encode())
	pos += 2

	buf[pos] = id.nextSequence(frameType, params)
	pos++

	if params.HasDstPAN {
		binary.LittleEndian.PutUint16(buf[pos:], uint16(id.PAN))
		pos += 2
	}
	pos += writeAddr(buf[pos:], params.Dst)

	if params.HasSrcPAN {
		binary.LittleEndian.PutUint16(buf[pos:], uint16(id.PAN))
		pos += 2
	}
	pos += writeAddr(buf[pos:], params.Src)

	if params.SecurityEnabled {
		aux := AuxSecurityHeader{
			Level:        params.SecLevel,
			KeyIDMode:    security.KeyIDModeImplicit,
			FrameCounter: *id.FrameCounter,
		}
		n, err := aux.marshalTo(buf[pos:])
		if err != nil {
			return err
		}
		pos += n
	}

	if pos != llHdrLen {
		panic(fmt.Sprintf("frame: write_mhr_and_security wrote %d bytes, want %d", pos, llHdrLen))
	}

	if !params.SecurityEnabled {
		return nil
	}

	if params.SrcMode != AddrModeExtended {
		return fmt.Errorf("%w: non-TSCH security requires an extended source address", ErrNotSupported)
	}
	nonce, err := security.NonceNonTSCH(params.Src.Ext, *id.FrameCounter, params.SecLevel)
	if err != nil {
		return err
	}
	payload := buf[llHdrLen : len(buf)-authTagLen]
	tag, err := id.Session.Outgoing(params.SecLevel, *id.FrameCounter, nonce, buf[:llHdrLen], payload)
	if err != nil {
		return err
	}
	copy(buf[len(buf)-authTagLen:], tag)
	*id.FrameCounter++
	return nil
}
