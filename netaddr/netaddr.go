package netaddr

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// NetworkAddress is an ordered, grammar-validated sequence of Protocol values
// describing one reachable endpoint.
//
// Grammar:
//   - non-empty
//   - element 0 is exactly one address-family variant (IP4, IP6, or DNSName)
//   - at most one transport (Port) may follow
//   - zero or more session/security variants may follow the transport
//
// A NetworkAddress is immutable once constructed. Equality is structural;
// ordering is lexicographic over the canonical bytes.
type NetworkAddress struct {
	protos []Protocol
	raw    []byte
}

// New constructs a NetworkAddress, validating the grammar and every value.
func New(protos ...Protocol) (NetworkAddress, error) {
	if err := checkGrammar(protos); err != nil {
		return NetworkAddress{}, err
	}
	raw, err := encodeProtocols(protos)
	if err != nil {
		return NetworkAddress{}, err
	}
	return NetworkAddress{protos: append([]Protocol(nil), protos...), raw: raw}, nil
}

// Append returns a new NetworkAddress with p appended, re-checking the
// grammar. The receiver is not modified.
func (a NetworkAddress) Append(p Protocol) (NetworkAddress, error) {
	next := make([]Protocol, 0, len(a.protos)+1)
	next = append(next, a.protos...)
	next = append(next, p)
	return New(next...)
}

// FromBytes parses a canonical byte sequence produced by Bytes.
func FromBytes(b []byte) (NetworkAddress, error) {
	var protos []Protocol
	for off := 0; off < len(b); {
		p, n, err := ReadProtocol(b[off:])
		if err != nil {
			return NetworkAddress{}, err
		}
		protos = append(protos, p)
		off += n
	}
	return New(protos...)
}

// Protocols returns the address's protocol sequence. The returned slice is a
// copy; the address itself is immutable.
func (a NetworkAddress) Protocols() []Protocol {
	return append([]Protocol(nil), a.protos...)
}

// Bytes returns the canonical encoding: each element's encoding concatenated
// in order with no separators. The returned slice is a copy.
func (a NetworkAddress) Bytes() []byte {
	return append([]byte(nil), a.raw...)
}

// IsZero reports whether a is the zero value (no protocols).
func (a NetworkAddress) IsZero() bool { return len(a.protos) == 0 }

// Equal reports structural equality. Because the encoding is canonical this
// is exactly byte equality.
func (a NetworkAddress) Equal(b NetworkAddress) bool {
	return bytes.Equal(a.raw, b.raw)
}

// Compare orders addresses lexicographically over their canonical bytes,
// for deterministic sorting and deduplication.
func (a NetworkAddress) Compare(b NetworkAddress) int {
	return bytes.Compare(a.raw, b.raw)
}

// String renders a human-readable multiaddr-style form, e.g.
// "/ip4/127.0.0.1/port/6180". Display only; it is not a parseable encoding.
func (a NetworkAddress) String() string {
	if a.IsZero() {
		return "/"
	}
	var sb strings.Builder
	for _, p := range a.protos {
		sb.WriteByte('/')
		sb.WriteString(tagName(p.WireTag()))
		switch v := p.(type) {
		case IP4:
			sb.WriteByte('/')
			sb.WriteString(v.String())
		case IP6:
			sb.WriteByte('/')
			sb.WriteString(v.String())
		case DNSName:
			sb.WriteByte('/')
			sb.WriteString(v.String())
		case Port:
			fmt.Fprintf(&sb, "/%d", uint16(v))
		case MemcomSessionID:
			sb.WriteByte('/')
			sb.WriteString(hex.EncodeToString(v[:]))
		case NoiseIKPublicKey:
			sb.WriteByte('/')
			sb.WriteString(hex.EncodeToString(v[:]))
		case HandshakeVersion:
			fmt.Fprintf(&sb, "/%d", uint8(v))
		}
	}
	return sb.String()
}

func checkGrammar(protos []Protocol) error {
	if len(protos) == 0 {
		return newError(KindInvalidGrammar, "ADDR-GRAM-001", "address must not be empty")
	}
	for i, p := range protos {
		if p == nil {
			return newError(KindInvalidValue, "ADDR-VAL-001", "nil protocol")
		}
		switch p.class() {
		case classFamily:
			if i != 0 {
				return newError(KindInvalidGrammar, "ADDR-GRAM-002",
					fmt.Sprintf("address-family %s allowed only in first position", tagName(p.WireTag())))
			}
		case classTransport:
			if i == 0 {
				return newError(KindInvalidGrammar, "ADDR-GRAM-003", "address must start with an address family")
			}
			// A transport may only directly follow the family; a second
			// transport or one after a session variant lands here too.
			if protos[i-1].class() != classFamily {
				return newError(KindInvalidGrammar, "ADDR-GRAM-004", "at most one transport, directly after the address family")
			}
		case classSession:
			if i == 0 {
				return newError(KindInvalidGrammar, "ADDR-GRAM-003", "address must start with an address family")
			}
		}
	}
	return nil
}

func encodeProtocols(protos []Protocol) ([]byte, error) {
	var raw []byte
	var err error
	for _, p := range protos {
		raw, err = AppendProtocol(raw, p)
		if err != nil {
			return nil, err
		}
	}
	return raw, nil
}
