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

import "fmt"

// ieeeCID is the 3-byte IEEE CID prefix TSCH uses in place of a
// missing extended source address, §9.3.3.2.
var ieeeCID = [3]byte{0xba, 0x55, 0xec}

// NonceNonTSCH derives the 13-byte nonce of §9.3.3.1: only an extended
// source address is accepted. Short-source support is left
// unimplemented per spec.md §4.3.
func NonceNonTSCH(srcExt [8]byte, frameCounter uint32, level Level) ([nonceSize]byte, error) {
	var n [nonceSize]byte
	copy(n[0:8], srcExt[:])
	n[8] = byte(frameCounter >> 24)
	n[9] = byte(frameCounter >> 16)
	n[10] = byte(frameCounter >> 8)
	n[11] = byte(frameCounter)
	n[12] = byte(level)
	return n, nil
}

// NonceTSCHExtended derives the TSCH nonce (§9.3.3.2) for an extended
// source address: the same leading 8 bytes as the non-TSCH form, but
// the trailer is the 40-bit ASN big-endian and does not include the
// level byte.
func NonceTSCHExtended(srcExt [8]byte, asn uint64) [nonceSize]byte {
	var n [nonceSize]byte
	copy(n[0:8], srcExt[:])
	putASN40(n[8:13], asn)
	return n
}

// NonceTSCHShort derives the TSCH nonce for a short source address:
// IEEE CID, a zero byte, the PAN id big-endian, then the short address
// big-endian, trailed by the 40-bit ASN big-endian.
func NonceTSCHShort(pan uint16, short uint16, asn uint64) [nonceSize]byte {
	var n [nonceSize]byte
	copy(n[0:3], ieeeCID[:])
	n[3] = 0
	n[4] = byte(pan >> 8)
	n[5] = byte(pan)
	n[6] = byte(short >> 8)
	n[7] = byte(short)
	putASN40(n[8:13], asn)
	return n
}

func putASN40(b []byte, asn uint64) {
	v := asn & 0xffffffffff
	b[0] = byte(v >> 32)
	b[1] = byte(v >> 24)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 8)
	b[4] = byte(v)
}

// DowngradeLevelForEnhancedBeacon implements §4.3 "Enhanced beacons in
// TSCH are never encrypted, so if the level requests encryption it is
// downgraded to MIC only for that frame."
func DowngradeLevelForEnhancedBeacon(level Level) Level {
	switch level {
	case LevelEncMIC32:
		return LevelMIC32
	case LevelEncMIC64:
		return LevelMIC64
	case LevelEncMIC128:
		return LevelMIC128
	default:
		return level
	}
}

// CheckFrameCounter rejects the reserved exhaustion value, §3/§4.3.
func CheckFrameCounter(counter uint32) error {
	if counter == FrameCounterExhausted {
		return fmt.Errorf("%w: frame counter exhausted", ErrSecurity)
	}
	return nil
}
