package netaddr

import (
	"errors"
	"fmt"

	"github.com/multiformats/go-varint"
)

// Version1 is the current envelope version.
//
// The version byte lets future revisions add protocol variants or grammar
// rules without breaking older decoders: a decoder seeing an unsupported
// version fails fast with UnsupportedVersion instead of attempting a
// best-effort parse.
const Version1 uint8 = 1

// RawNetworkAddress is a NetworkAddress wrapped in a versioned,
// self-describing byte envelope for storage and transmission.
//
// Wire layout: [version:1][protocol_count:varint]{[tag:1][payload]}*
type RawNetworkAddress struct {
	Version uint8
	// Payload is the protocol_count varint followed by the per-protocol
	// canonical encodings.
	Payload []byte
}

// EncodeRaw wraps an address in a version-v envelope.
func EncodeRaw(a NetworkAddress, version uint8) (RawNetworkAddress, error) {
	if version != Version1 {
		return RawNetworkAddress{}, newError(KindUnsupportedVersion, "ADDR-VER-001",
			fmt.Sprintf("cannot encode envelope version %d", version))
	}
	if a.IsZero() {
		return RawNetworkAddress{}, newError(KindInvalidGrammar, "ADDR-GRAM-001", "address must not be empty")
	}
	payload := varint.ToUvarint(uint64(len(a.protos)))
	payload = append(payload, a.raw...)
	return RawNetworkAddress{Version: version, Payload: payload}, nil
}

// Bytes returns the full envelope encoding.
func (r RawNetworkAddress) Bytes() []byte {
	out := make([]byte, 0, 1+len(r.Payload))
	out = append(out, r.Version)
	return append(out, r.Payload...)
}

// ParseRaw splits an envelope into version and payload, rejecting unsupported
// versions before looking at the payload at all.
func ParseRaw(b []byte) (RawNetworkAddress, error) {
	if len(b) == 0 {
		return RawNetworkAddress{}, newError(KindTruncated, "ADDR-TRUNC-011", "empty envelope")
	}
	if b[0] != Version1 {
		return RawNetworkAddress{}, newError(KindUnsupportedVersion, "ADDR-VER-002",
			fmt.Sprintf("unsupported envelope version %d", b[0]))
	}
	return RawNetworkAddress{Version: b[0], Payload: append([]byte(nil), b[1:]...)}, nil
}

// Decode recovers the NetworkAddress, consuming the payload exactly.
func (r RawNetworkAddress) Decode() (NetworkAddress, error) {
	if r.Version != Version1 {
		return NetworkAddress{}, newError(KindUnsupportedVersion, "ADDR-VER-002",
			fmt.Sprintf("unsupported envelope version %d", r.Version))
	}
	count, consumed, err := varint.FromUvarint(r.Payload)
	if err != nil {
		if errors.Is(err, varint.ErrUnderflow) {
			return NetworkAddress{}, wrapError(KindTruncated, "ADDR-TRUNC-012", "bad protocol count", err)
		}
		return NetworkAddress{}, wrapError(KindInvalidValue, "ADDR-VAL-038", "bad protocol count", err)
	}
	rest := r.Payload[consumed:]

	protos := make([]Protocol, 0, 4)
	for i := uint64(0); i < count; i++ {
		p, n, err := ReadProtocol(rest)
		if err != nil {
			return NetworkAddress{}, err
		}
		protos = append(protos, p)
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return NetworkAddress{}, newError(KindInvalidValue, "ADDR-VAL-003",
			fmt.Sprintf("%d trailing bytes after %d protocols", len(rest), count))
	}
	return New(protos...)
}

// DecodeRaw parses a full envelope and recovers the NetworkAddress.
//
// Round-trip law: DecodeRaw(EncodeRaw(a, v).Bytes()) == a for every valid a
// and every supported v.
func DecodeRaw(b []byte) (NetworkAddress, error) {
	r, err := ParseRaw(b)
	if err != nil {
		return NetworkAddress{}, err
	}
	return r.Decode()
}
