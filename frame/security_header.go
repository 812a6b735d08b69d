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

const auxSecHeaderFixedSize = 1 + 4 // security control + frame counter

// AuxSecurityHeader is the parsed auxiliary security header, §9.4.
// Only KeyIDMode == security.KeyIDModeImplicit is produced/accepted by
// this package; explicit key identifiers are out of scope (§1
// Non-goals).
type AuxSecurityHeader struct {
	Level        security.Level
	KeyIDMode    security.KeyIDMode
	FrameCounter uint32
}

// Size returns the on-wire size of the auxiliary security header,
// including the key identifier field.
func (h AuxSecurityHeader) Size() int {
	return auxSecHeaderFixedSize + h.KeyIDMode.KeyIDLen()
}

func (h AuxSecurityHeader) marshalTo(b []byte) (int, error) {
	if len(b) < h.Size() {
		return 0, fmt.Errorf("%w: buffer too small for aux security header", ErrInvalid)
	}
	b[0] = byte(h.Level&0x7) | byte(h.KeyIDMode&0x3)<<3
	binary.LittleEndian.PutUint32(b[1:], h.FrameCounter)
	// Only implicit key-id mode is supported: no key identifier bytes
	// are emitted (§4.3).
	return h.Size(), nil
}

func unmarshalAuxSecurityHeader(b []byte) (AuxSecurityHeader, int, error) {
	var h AuxSecurityHeader
	if len(b) < auxSecHeaderFixedSize {
		return h, 0, fmt.Errorf("%w: short aux security header", ErrInvalid)
	}
	sc := b[0]
	h.Level = security.Level(sc & 0x7)
	h.KeyIDMode = security.KeyIDMode(sc >> 3 & 0x3)
	h.FrameCounter = binary.LittleEndian.Uint32(b[1:])
	if h.KeyIDMode != security.KeyIDModeImplicit {
		return h, 0, fmt.Errorf("%w: key-id mode %d", ErrNotSupported, h.KeyIDMode)
	}
	return h, h.Size(), nil
}
