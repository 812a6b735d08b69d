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

// ValidateLevel rejects security level 0 (no security) and 4
// (reserved), §4.3 "Reject levels of 0 (no security) and 4 (reserved)".
// A frame that wants no protection should never set security-enabled
// in the first place.
func ValidateLevel(level Level) error {
	if level == LevelNone || level == levelReserved {
		return fmt.Errorf("%w: security level %d rejected", ErrSecurity, level)
	}
	if _, _, ok := level.AuthTagLen(); !ok {
		return fmt.Errorf("%w: unknown security level %d", ErrSecurity, level)
	}
	return nil
}

// Outgoing implements the §9.2.2/§4.3 outgoing procedure: validate the
// level and frame counter, derive nothing itself (nonce is supplied by
// the caller, who knows whether this is a TSCH or non-TSCH frame), and
// seal header/payload in place. It returns the authentication tag to
// append to the frame.
func (s *Session) Outgoing(level Level, frameCounter uint32, nonce [nonceSize]byte, header, payload []byte) ([]byte, error) {
	if err := ValidateLevel(level); err != nil {
		return nil, err
	}
	if err := CheckFrameCounter(frameCounter); err != nil {
		return nil, err
	}
	return s.SealInPlace(nonce, level, header, payload)
}

// Incoming implements the §9.2.4/§9.2.5/§4.3 incoming procedure once
// the caller has already verified the frame version is 2015+ and that
// the aux header's level matches the interface's configured level (both
// require context this package doesn't have). It validates the level,
// decrypts/verifies in place, and returns the new (shrunk) payload
// length on success.
func (s *Session) Incoming(level Level, nonce [nonceSize]byte, header, payload []byte) (int, error) {
	if err := ValidateLevel(level); err != nil {
		return 0, err
	}
	return s.OpenInPlace(nonce, level, header, payload)
}
