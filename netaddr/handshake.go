package netaddr

import (
	"crypto/rand"
	"io"

	"github.com/cloudflare/circl/dh/x25519"
)

// HandshakePrivateKey is the X25519 static secret matching a published
// NoiseIKPublicKey. This package only generates key material; running the
// handshake belongs to the transport layer.
type HandshakePrivateKey [noisePublicKeyLen]byte

// GenerateHandshakeKey produces a fresh X25519 keypair for the Noise IK
// handshake. If rng is nil, crypto/rand is used.
func GenerateHandshakeKey(rng io.Reader) (NoiseIKPublicKey, HandshakePrivateKey, error) {
	if rng == nil {
		rng = rand.Reader
	}
	var secret, public x25519.Key
	if _, err := io.ReadFull(rng, secret[:]); err != nil {
		return NoiseIKPublicKey{}, HandshakePrivateKey{}, err
	}
	x25519.KeyGen(&public, &secret)
	return NoiseIKPublicKey(public), HandshakePrivateKey(secret), nil
}

// Public recomputes the NoiseIKPublicKey for a private key.
func (k HandshakePrivateKey) Public() NoiseIKPublicKey {
	var secret, public x25519.Key
	secret = x25519.Key(k)
	x25519.KeyGen(&public, &secret)
	return NoiseIKPublicKey(public)
}
