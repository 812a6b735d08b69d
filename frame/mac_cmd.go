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

import "fmt"

// MACCmdFrame is a MAC command frame mid-construction: the buffer is
// allocated and the CFI byte placed, but the MHR and (if enabled)
// security are only written by Finalize, once the caller has filled in
// the command body — the security engine must see the final plaintext.
type MACCmdFrame struct {
	id         WriteIdentity
	params     WriteParams
	buf        []byte
	llHdrLen   int
	authTagLen int
}

// CmdPtr returns the slice the caller fills with the per-CFI command
// fields (everything after the CFI byte, before the auth tag space).
func (f *MACCmdFrame) CmdPtr() []byte {
	return f.buf[f.llHdrLen+1 : len(f.buf)-f.authTagLen]
}

// CreateMACCmdFrame allocates a buffer and reserves room for the MHR,
// the command-frame identifier and the per-CFI command body, §4.1
// create_mac_cmd_frame. params is normally produced by GetDataFrameParams,
// except for CFIs that require no source address at all (e.g. a beacon
// request sent before association), which the caller must build by hand.
// Per-CFI addressing-mode and PAN-id constraints (§7.5.1..§7.5.11) are
// validated against params up front; violations fail the operation
// before any bytes are written.
func CreateMACCmdFrame(id WriteIdentity, cfi CFI, params WriteParams) (*MACCmdFrame, error) {
	llHdrLen := ComputeHeaderSize(params, params.SecurityEnabled)
	authTagLen := 0
	if params.SecurityEnabled {
		n, _, ok := params.SecLevel.AuthTagLen()
		if !ok {
			return nil, fmt.Errorf("%w: reserved security level", ErrInvalid)
		}
		authTagLen = n
	}

	rule, known := cfiRules[cfi]
	if known {
		if rule.needsSrc != AddrModeReserved && params.SrcMode != rule.needsSrc {
			return nil, fmt.Errorf("%w: cfi 0x%02x requires source addressing mode %v", ErrInvalid, cfi, rule.needsSrc)
		}
		if rule.needsDst != AddrModeReserved && params.DstMode != rule.needsDst {
			return nil, fmt.Errorf("%w: cfi 0x%02x requires destination addressing mode %v", ErrInvalid, cfi, rule.needsDst)
		}
		if rule.dstBroadcastOnly && !params.Dst.IsBroadcast() {
			return nil, fmt.Errorf("%w: cfi 0x%02x requires a broadcast destination", ErrInvalid, cfi)
		}
	}

	bodyLen := 0
	if known && rule.bodyLen >= 0 {
		bodyLen = rule.bodyLen
	}
	buf := make([]byte, llHdrLen+1+bodyLen+authTagLen)
	buf[llHdrLen] = byte(cfi)

	return &MACCmdFrame{id: id, params: params, buf: buf, llHdrLen: llHdrLen, authTagLen: authTagLen}, nil
}

// Finalize writes the MHR (and, if security is enabled, seals the
// frame) over the now-complete buffer and returns the wire packet.
func (f *MACCmdFrame) Finalize() ([]byte, error) {
	if err := WriteMHRAndSecurity(&f.id, TypeMACCommand, f.params, f.buf, f.llHdrLen, f.authTagLen); err != nil {
		return nil, err
	}
	return f.buf, nil
}
