package netaddr

import (
	"errors"
	"fmt"

	"github.com/multiformats/go-varint"
)

// AppendProtocol appends the canonical encoding of p (tag, optional length
// prefix, payload) to dst.
func AppendProtocol(dst []byte, p Protocol) ([]byte, error) {
	if p == nil {
		return nil, newError(KindInvalidValue, "ADDR-VAL-001", "nil protocol")
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	dst = append(dst, byte(p.WireTag()))
	if d, ok := p.(DNSName); ok {
		dst = append(dst, varint.ToUvarint(uint64(len(d.name)))...)
	}
	return p.appendPayload(dst), nil
}

// EncodeProtocol returns the canonical encoding of a single protocol value.
func EncodeProtocol(p Protocol) ([]byte, error) {
	return AppendProtocol(nil, p)
}

// ReadProtocol decodes one protocol value from the front of buf and returns
// the number of bytes consumed.
//
// Every length is validated against the remaining buffer before any indexing,
// so adversarial input can never read past the end of buf.
func ReadProtocol(buf []byte) (Protocol, int, error) {
	if len(buf) == 0 {
		return nil, 0, newError(KindTruncated, "ADDR-TRUNC-001", "empty input, expected protocol tag")
	}
	tag := Tag(buf[0])
	rest := buf[1:]

	fixed := func(n int) ([]byte, error) {
		if len(rest) < n {
			return nil, newError(KindTruncated, "ADDR-TRUNC-002",
				fmt.Sprintf("%s payload needs %d bytes, %d remain", tagName(tag), n, len(rest)))
		}
		return rest[:n], nil
	}

	switch tag {
	case TagIP4:
		b, err := fixed(ip4Len)
		if err != nil {
			return nil, 0, err
		}
		var p IP4
		copy(p[:], b)
		return p, 1 + ip4Len, nil

	case TagIP6:
		b, err := fixed(ip6Len)
		if err != nil {
			return nil, 0, err
		}
		var p IP6
		copy(p[:], b)
		return p, 1 + ip6Len, nil

	case TagDNSName:
		n, consumed, err := varint.FromUvarint(rest)
		if err != nil {
			// Underflow means the buffer ended mid-varint; anything else
			// (overflow, non-minimal encoding) is a malformed value even on
			// a complete buffer.
			if errors.Is(err, varint.ErrUnderflow) {
				return nil, 0, wrapError(KindTruncated, "ADDR-TRUNC-003", "bad DNS name length prefix", err)
			}
			return nil, 0, wrapError(KindInvalidValue, "ADDR-VAL-037", "bad DNS name length prefix", err)
		}
		rest = rest[consumed:]
		if uint64(len(rest)) < n {
			return nil, 0, newError(KindTruncated, "ADDR-TRUNC-004",
				fmt.Sprintf("DNS name declares %d bytes, %d remain", n, len(rest)))
		}
		if n == 0 || n > MaxDNSNameLen {
			return nil, 0, newError(KindInvalidValue, "ADDR-VAL-036",
				fmt.Sprintf("DNS name length %d outside 1..%d", n, MaxDNSNameLen))
		}
		p := DNSName{name: string(rest[:n])}
		// Decode is the left inverse of encode: validate accepts only the
		// canonical lowercase form, so folded and unfolded inputs cannot
		// decode to the same value.
		if err := p.validate(); err != nil {
			return nil, 0, err
		}
		return p, 1 + consumed + int(n), nil

	case TagPort:
		b, err := fixed(portLen)
		if err != nil {
			return nil, 0, err
		}
		return Port(uint16(b[0])<<8 | uint16(b[1])), 1 + portLen, nil

	case TagMemcomSessionID:
		b, err := fixed(sessionIDLen)
		if err != nil {
			return nil, 0, err
		}
		var p MemcomSessionID
		copy(p[:], b)
		return p, 1 + sessionIDLen, nil

	case TagNoiseIKPublicKey:
		b, err := fixed(noisePublicKeyLen)
		if err != nil {
			return nil, 0, err
		}
		var p NoiseIKPublicKey
		copy(p[:], b)
		return p, 1 + noisePublicKeyLen, nil

	case TagHandshakeVersion:
		b, err := fixed(handshakeVersionLen)
		if err != nil {
			return nil, 0, err
		}
		return HandshakeVersion(b[0]), 1 + handshakeVersionLen, nil

	default:
		return nil, 0, newError(KindUnknownTag, "ADDR-TAG-001",
			fmt.Sprintf("unknown protocol tag 0x%02x", byte(tag)))
	}
}

// DecodeProtocol decodes exactly one protocol value from buf and rejects
// trailing bytes.
func DecodeProtocol(buf []byte) (Protocol, error) {
	p, n, err := ReadProtocol(buf)
	if err != nil {
		return nil, err
	}
	if n != len(buf) {
		return nil, newError(KindInvalidValue, "ADDR-VAL-002",
			fmt.Sprintf("%d trailing bytes after protocol", len(buf)-n))
	}
	return p, nil
}
