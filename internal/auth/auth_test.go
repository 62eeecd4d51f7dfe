package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestKnownVector checks the exact HMAC-SHA1 response for key "secret" and
// a 32-byte zero nonce (value computed with an independent HMAC-SHA1
// implementation), and that a one-bit flip of it fails verification.
func TestKnownVector(t *testing.T) {
	var nonce [32]byte // all zero
	want := Respond([]byte("secret"), nonce)
	require.Equal(t, "1cd0e4db152978b086c3fbd1d88b3d0fbc75b9d0", hex.EncodeToString(want[:]))
	require.True(t, Verify([]byte("secret"), nonce, want))

	flipped := want
	flipped[0] ^= 0x01
	require.False(t, Verify([]byte("secret"), nonce, flipped))
}

func TestEmptyKeyStillVerifiesItself(t *testing.T) {
	nonce, err := NewNonce()
	require.NoError(t, err)
	resp := Respond(nil, nonce)
	require.True(t, Verify(nil, nonce, resp))
}

func TestNonceIsRandom(t *testing.T) {
	a, err := NewNonce()
	require.NoError(t, err)
	b, err := NewNonce()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
