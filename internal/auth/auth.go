// Package auth implements the spec.md §4.2/§6 HMAC-SHA1 challenge/response
// handshake: the hub issues a 32-byte cryptographic nonce, the peer
// answers with HMAC-SHA1(key, nonce), and the hub verifies it in constant
// time. An empty key disables the challenge entirely.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // required by the wire protocol, not used for new designs
	"fmt"
)

// DigestSize is the fixed HMAC-SHA1 output size carried in AuthResponse.
const DigestSize = 20

// NonceSize is the fixed nonce size carried in AuthChallenge.
const NonceSize = 32

// NewNonce draws a fresh nonce from a cryptographic RNG, as spec.md §6
// requires.
func NewNonce() ([32]byte, error) {
	var n [32]byte
	if _, err := rand.Read(n[:]); err != nil {
		return n, fmt.Errorf("auth: failed to draw nonce: %w", err)
	}
	return n, nil
}

// Respond computes the HMAC-SHA1(key, nonce) digest a client sends back
// in AuthResponse.
func Respond(key []byte, nonce [32]byte) [20]byte {
	return digest(key, nonce)
}

// Verify constant-time compares a claimed digest against the expected one
// for (key, nonce). It reports true iff they match exactly.
func Verify(key []byte, nonce [32]byte, claimed [20]byte) bool {
	want := digest(key, nonce)
	return hmac.Equal(want[:], claimed[:])
}

func digest(key []byte, nonce [32]byte) [20]byte {
	mac := hmac.New(sha1.New, key)
	mac.Write(nonce[:])
	sum := mac.Sum(nil)
	var out [20]byte
	copy(out[:], sum)
	return out
}
