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
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// CCM* (IEEE 802.15.4 §9.3.3) is AES-128 used as the generic NIST CCM
// AEAD mode (RFC 3610) with a fixed 13-byte nonce (L=2) and the
// 802.15.4-specific "auth-only" variant that feeds the whole payload in
// as associated data when the security level doesn't request
// encryption. No third-party library in the reference pack implements
// CCM (grep of the whole pack found none, not even a 802.11 CCMP
// engine) so this is built directly on crypto/aes, the same way the
// teacher's own ambient stack treats "AES-128-CCM* is a collaborator"
// (spec.md §1) — only the primitive block cipher is external, the mode
// is ours to construct.

const (
	blockSize  = 16
	nonceSize  = 13
	lengthSize = blockSize - 1 - nonceSize // L = 2
)

// Session is a keyed CCM* encrypt/decrypt handle, §3 "AEAD encrypt and
// decrypt session handles".
type Session struct {
	block cipher.Block
}

// NewSession builds a CCM* session from a 16-byte AES-128 key.
func NewSession(key [16]byte) (*Session, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSecurity, err)
	}
	return &Session{block: block}, nil
}

func (s *Session) encryptBlock(dst, src []byte) {
	s.block.Encrypt(dst, src)
}

func xorInto(dst, a, b []byte) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dst[i] = a[i] ^ b[i]
	}
}

// buildB0 constructs the first CCM authentication block.
func buildB0(nonce [nonceSize]byte, hasAAD bool, tagLen int, messageLen int) []byte {
	b0 := make([]byte, blockSize)
	var flags byte
	if hasAAD {
		flags |= 1 << 6
	}
	mPrime := byte((tagLen - 2) / 2)
	flags |= mPrime << 3
	flags |= byte(lengthSize - 1)
	b0[0] = flags
	copy(b0[1:], nonce[:])
	b0[14] = byte(messageLen >> 8)
	b0[15] = byte(messageLen)
	return b0
}

// ctrBlock builds counter block A_i, §9.3.3.
func ctrBlock(nonce [nonceSize]byte, counter uint16) []byte {
	a := make([]byte, blockSize)
	a[0] = byte(lengthSize - 1)
	copy(a[1:], nonce[:])
	a[14] = byte(counter >> 8)
	a[15] = byte(counter)
	return a
}

func padTo16(data []byte) []byte {
	if len(data)%blockSize == 0 {
		return data
	}
	out := make([]byte, (len(data)/blockSize+1)*blockSize)
	copy(out, data)
	return out
}

// cbcMAC runs the CCM authentication chain over B0 followed by the
// length-prefixed, zero-padded AAD and the zero-padded message, and
// returns the raw 16-byte MAC (before tag truncation/masking).
func (s *Session) cbcMAC(b0 []byte, aad, message []byte) []byte {
	x := make([]byte, blockSize)
	s.encryptBlock(x, b0)

	feed := func(block []byte) {
		xored := make([]byte, blockSize)
		xorInto(xored, x, block)
		s.encryptBlock(x, xored)
	}

	if len(aad) > 0 {
		enc := make([]byte, 2+len(aad))
		enc[0] = byte(len(aad) >> 8)
		enc[1] = byte(len(aad))
		copy(enc[2:], aad)
		enc = padTo16(enc)
		for i := 0; i < len(enc); i += blockSize {
			feed(enc[i : i+blockSize])
		}
	}
	if len(message) > 0 {
		padded := padTo16(message)
		for i := 0; i < len(padded); i += blockSize {
			feed(padded[i : i+blockSize])
		}
	}
	return x
}

// ctrCrypt XORs data (in place) with the AES-CTR keystream generated
// from counters 1, 2, ... and returns S0 = E(K, A_0), used to mask the
// authentication tag.
func (s *Session) ctrCrypt(nonce [nonceSize]byte, data []byte) (s0 []byte) {
	s0 = make([]byte, blockSize)
	s.encryptBlock(s0, ctrBlock(nonce, 0))

	counter := uint16(1)
	for pos := 0; pos < len(data); pos += blockSize {
		ks := make([]byte, blockSize)
		s.encryptBlock(ks, ctrBlock(nonce, counter))
		end := pos + blockSize
		if end > len(data) {
			end = len(data)
		}
		xorInto(data[pos:end], data[pos:end], ks)
		counter++
	}
	return s0
}

// macInputs splits (header, payload) into the AAD and to-be-encrypted
// message per the CCM* auth-only/encrypt distinction: when the level
// doesn't request encryption the whole payload is authenticated as
// associated data and the "message" is empty.
func macInputs(header, payload []byte, encrypted bool) (aad, message []byte) {
	if encrypted {
		return header, payload
	}
	aad = make([]byte, len(header)+len(payload))
	n := copy(aad, header)
	copy(aad[n:], payload)
	return aad, nil
}

// SealInPlace authenticates header as AAD and, if level encrypts,
// encrypts payload in place; it returns the tag to append after
// payload. header is never modified. Level 0/4 are rejected by the
// caller (§4.3 outgoing procedure), not here.
func (s *Session) SealInPlace(nonce [nonceSize]byte, level Level, header, payload []byte) ([]byte, error) {
	tagLen, encrypted, ok := level.AuthTagLen()
	if !ok {
		return nil, fmt.Errorf("%w: reserved security level %d", ErrSecurity, level)
	}
	if tagLen == 0 {
		return nil, nil
	}
	aad, message := macInputs(header, payload, encrypted)
	messageLen := 0
	if encrypted {
		messageLen = len(payload)
	}
	b0 := buildB0(nonce, len(aad) > 0, tagLen, messageLen)
	rawTag := s.cbcMAC(b0, aad, message)

	s0 := s.ctrCrypt(nonce, nil) // compute S0 without touching any data
	tag := make([]byte, tagLen)
	xorInto(tag, rawTag[:tagLen], s0[:tagLen])

	if encrypted {
		s.encryptPayload(nonce, payload)
	}
	return tag, nil
}

// encryptPayload runs the CTR keystream over payload starting at
// counter 1 (counter 0 is reserved for the tag mask).
func (s *Session) encryptPayload(nonce [nonceSize]byte, payload []byte) {
	counter := uint16(1)
	for pos := 0; pos < len(payload); pos += blockSize {
		ks := make([]byte, blockSize)
		s.encryptBlock(ks, ctrBlock(nonce, counter))
		end := pos + blockSize
		if end > len(payload) {
			end = len(payload)
		}
		xorInto(payload[pos:end], payload[pos:end], ks)
		counter++
	}
}

// OpenInPlace verifies and, if level encrypts, decrypts ciphertextAndTag
// in place. On success it returns the plaintext length (ciphertextAndTag
// with the tag removed); on authentication failure it returns a
// wrapped ErrSecurity and leaves the buffer's trailing tagLen bytes
// unspecified, but never yields unauthenticated plaintext mixed with
// authenticated data into a net "success" state.
func (s *Session) OpenInPlace(nonce [nonceSize]byte, level Level, header, ciphertextAndTag []byte) (int, error) {
	tagLen, encrypted, ok := level.AuthTagLen()
	if !ok {
		return 0, fmt.Errorf("%w: reserved security level %d", ErrSecurity, level)
	}
	if tagLen == 0 {
		return len(ciphertextAndTag), nil
	}
	if len(ciphertextAndTag) < tagLen {
		return 0, fmt.Errorf("%w: frame shorter than auth tag", ErrSecurity)
	}
	plainLen := len(ciphertextAndTag) - tagLen
	ciphertext := ciphertextAndTag[:plainLen]
	receivedTag := ciphertextAndTag[plainLen:]

	s0 := s.ctrCrypt(nonce, nil)

	if encrypted {
		s.encryptPayload(nonce, ciphertext) // CTR is its own inverse
	}

	aad, message := macInputs(header, ciphertext, encrypted)
	messageLen := 0
	if encrypted {
		messageLen = plainLen
	}
	b0 := buildB0(nonce, len(aad) > 0, tagLen, messageLen)
	rawTag := s.cbcMAC(b0, aad, message)
	computedTag := make([]byte, tagLen)
	xorInto(computedTag, rawTag[:tagLen], s0[:tagLen])

	if subtle.ConstantTimeCompare(computedTag, receivedTag) != 1 {
		if encrypted {
			// undo the speculative decrypt so the caller never
			// observes unauthenticated plaintext.
			s.encryptPayload(nonce, ciphertext)
		}
		return 0, fmt.Errorf("%w: auth tag mismatch", ErrSecurity)
	}
	return plainLen, nil
}
