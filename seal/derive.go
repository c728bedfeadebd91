package seal

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MasterSecret is the pairwise shared secret. Its origin and distribution are
// external; this package never persists it.
type MasterSecret []byte

// MinMasterSecretLen is the minimum accepted secret length.
const MinMasterSecretLen = 16

// keyLen is the derived AES-256 key length.
const keyLen = 32

// NonceLen is the AES-GCM nonce length.
const NonceLen = 12

// deriveInfo domain-separates this derivation from any other use of the
// master secret.
const deriveInfo = "sealaddr-enc-key-v1"

func (s MasterSecret) check() error {
	if len(s) < MinMasterSecretLen {
		return newError(KindInvalidSecret, "SEAL-SEC-001",
			fmt.Sprintf("master secret must be at least %d bytes, got %d", MinMasterSecretLen, len(s)))
	}
	return nil
}

// DeriveKey derives the per-(account, address-slot) symmetric key via
// HKDF-SHA256. Two independent holders of the master secret compute
// bit-identical keys with no further communication.
func DeriveKey(secret MasterSecret, account AccountID, addressIndex uint8) ([]byte, error) {
	if err := secret.check(); err != nil {
		return nil, err
	}
	salt := make([]byte, AccountIDLen+1)
	copy(salt, account[:])
	salt[AccountIDLen] = addressIndex

	key := make([]byte, keyLen)
	kdf := hkdf.New(sha256.New, secret, salt, []byte(deriveInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, wrapError(KindInvalidSecret, "SEAL-SEC-002", "key derivation failed", err)
	}
	return key, nil
}

// DeriveNonce maps a sequence number to the AEAD nonce: 4 zero bytes followed
// by the big-endian sequence number.
//
// The mapping is injective over uint64, so distinct sequence numbers can never
// collide under the same key. Nonce uniqueness therefore reduces entirely to
// the caller's obligation: sequence numbers for a given
// (account, address-slot, master secret) must be strictly increasing and never
// reused, even across rotations.
func DeriveNonce(sequenceNumber uint64) [NonceLen]byte {
	var nonce [NonceLen]byte
	binary.BigEndian.PutUint64(nonce[4:], sequenceNumber)
	return nonce
}
