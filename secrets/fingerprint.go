package secrets

import (
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"sealaddr.dev/sealaddr/seal"
)

// fingerprintLabel domain-separates fingerprints from every other hash use of
// the secret.
const fingerprintLabel = "sealaddr-fingerprint-v1"

// Fingerprint returns a short base58 identifier for a master secret, safe to
// display and log. Both ends of a pairing can compare fingerprints to confirm
// they hold the same secret without revealing it.
func Fingerprint(secret seal.MasterSecret) string {
	h := sha3.New256()
	_, _ = h.Write([]byte(fingerprintLabel))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(secret)
	sum := h.Sum(nil)
	return base58.Encode(sum[:20])
}
