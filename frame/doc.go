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

// Package frame implements bit-exact parsing and emission of IEEE
// 802.15.4-2020 MAC frames (MPDUs): frame control, addressing, the
// auxiliary security header and header/payload information elements.
//
// All references are given for IEEE Std 802.15.4-2020.
package frame

import "errors"

// Error kinds returned by parse/filter operations. Callers drop the
// frame on any of these.
var (
	ErrInvalid       = errors.New("frame: invalid")
	ErrNotSupported  = errors.New("frame: not supported")
	ErrNotAssociated = errors.New("frame: not associated")
)

// MTU is the maximum PHY payload size including FCS, per §8.1.
const MTU = 127

// MinMHRSize is the smallest legal MPDU: frame control only, no
// sequence number, no addressing.
const MinMHRSize = 2
