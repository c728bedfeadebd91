// Package seal implements the confidentiality layer for published network
// addresses: deterministic key/nonce derivation from a pairwise master secret
// and AEAD sealing of RawNetworkAddress envelopes.
//
// Every operation is a pure function of its explicit arguments. The one
// cross-call invariant — sequence-number monotonicity per (account,
// address-slot) — is a caller-owned precondition; see the secrets package for
// the counter interface.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"

	"sealaddr.dev/sealaddr/netaddr"
)

// headerLen is the public record header: account id, address index, sequence
// number.
const headerLen = AccountIDLen + 1 + 8

// tagLen is the GCM authentication tag length.
const tagLen = 16

// EncNetworkAddress is one published record: a public header and the sealed
// RawNetworkAddress bytes.
//
// The header is authenticated as AEAD associated data but not encrypted, so
// any tampering with it is detected even though it is public. Created once per
// rotation event by the publisher; read-only for every verifier.
type EncNetworkAddress struct {
	AccountID      AccountID
	AddressIndex   uint8
	SequenceNumber uint64
	// Sealed is ciphertext followed by the authentication tag.
	Sealed []byte
}

// Encrypt serializes addr through the version-1 envelope and seals it for
// (account, addressIndex) at the given sequence number.
//
// sequenceNumber must never repeat for a given (secret, account, addressIndex)
// across the key's lifetime; nonce reuse destroys both confidentiality and
// integrity.
func Encrypt(addr netaddr.NetworkAddress, secret MasterSecret, account AccountID, addressIndex uint8, sequenceNumber uint64) (*EncNetworkAddress, error) {
	raw, err := netaddr.EncodeRaw(addr, netaddr.Version1)
	if err != nil {
		return nil, err
	}
	aead, err := newAEAD(secret, account, addressIndex)
	if err != nil {
		return nil, err
	}
	e := &EncNetworkAddress{
		AccountID:      account,
		AddressIndex:   addressIndex,
		SequenceNumber: sequenceNumber,
	}
	nonce := DeriveNonce(sequenceNumber)
	e.Sealed = aead.Seal(nil, nonce[:], raw.Bytes(), e.header())
	return e, nil
}

// Decrypt recomputes the key from the supplied master secret and the record's
// public header, opens the sealed bytes, and decodes the recovered envelope.
//
// Authentication failure returns a single DecryptionFailed kind: wrong key,
// tampered ciphertext, and tampered header are indistinguishable. A verifier
// scanning many records treats DecryptionFailed as "not mine, skip".
func (e *EncNetworkAddress) Decrypt(secret MasterSecret) (netaddr.NetworkAddress, error) {
	aead, err := newAEAD(secret, e.AccountID, e.AddressIndex)
	if err != nil {
		return netaddr.NetworkAddress{}, err
	}
	nonce := DeriveNonce(e.SequenceNumber)
	plain, err := aead.Open(nil, nonce[:], e.Sealed, e.header())
	if err != nil {
		return netaddr.NetworkAddress{}, newError(KindDecryptionFailed, "SEAL-AEAD-001", "decryption failed")
	}
	addr, err := netaddr.DecodeRaw(plain)
	if err != nil {
		return netaddr.NetworkAddress{}, wrapError(KindDecodeFailed, "SEAL-DEC-001", "sealed payload is not a valid address envelope", err)
	}
	return addr, nil
}

// Marshal returns the on-ledger record bytes:
// [account_id:16][address_index:1][sequence_number:8 BE][ciphertext||tag].
// The nonce is not stored; it is re-derivable from the sequence number.
func (e *EncNetworkAddress) Marshal() []byte {
	out := make([]byte, 0, headerLen+len(e.Sealed))
	out = append(out, e.header()...)
	return append(out, e.Sealed...)
}

// Unmarshal parses record bytes produced by Marshal.
func Unmarshal(b []byte) (*EncNetworkAddress, error) {
	if len(b) < headerLen+tagLen {
		return nil, newError(KindInvalidRecord, "SEAL-REC-001",
			fmt.Sprintf("record needs at least %d bytes, got %d", headerLen+tagLen, len(b)))
	}
	e := &EncNetworkAddress{}
	copy(e.AccountID[:], b[:AccountIDLen])
	e.AddressIndex = b[AccountIDLen]
	e.SequenceNumber = binary.BigEndian.Uint64(b[AccountIDLen+1 : headerLen])
	e.Sealed = append([]byte(nil), b[headerLen:]...)
	return e, nil
}

func (e *EncNetworkAddress) header() []byte {
	h := make([]byte, headerLen)
	copy(h, e.AccountID[:])
	h[AccountIDLen] = e.AddressIndex
	binary.BigEndian.PutUint64(h[AccountIDLen+1:], e.SequenceNumber)
	return h
}

func newAEAD(secret MasterSecret, account AccountID, addressIndex uint8) (cipher.AEAD, error) {
	key, err := DeriveKey(secret, account, addressIndex)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wrapError(KindInvalidSecret, "SEAL-SEC-003", "cipher construction failed", err)
	}
	return cipher.NewGCM(block)
}
