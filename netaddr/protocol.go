// Package netaddr implements the canonical binary encoding for multi-layer
// network addresses: ordered stacks of address-family, transport, and
// security-handshake fields.
//
// The protocol set is closed and versioned. Every value has exactly one byte
// form; equal values always encode to identical bytes. This canonical form is
// what gets sealed and published, so the codec enforces it strictly: decoding
// is the exact left inverse of encoding and rejects any non-canonical input.
package netaddr

import (
	"fmt"
	"net"
)

// Tag identifies one protocol variant on the wire.
type Tag byte

// Wire tags. The set is closed; new variants require a new envelope version.
const (
	TagIP4              Tag = 0x01
	TagIP6              Tag = 0x02
	TagDNSName          Tag = 0x03
	TagPort             Tag = 0x10
	TagMemcomSessionID  Tag = 0x20
	TagNoiseIKPublicKey Tag = 0x21
	TagHandshakeVersion Tag = 0x22
)

// Payload widths in bytes. lengthPrefixed marks variable-width variants.
const (
	ip4Len              = 4
	ip6Len              = 16
	portLen             = 2
	sessionIDLen        = 16
	noisePublicKeyLen   = 32
	handshakeVersionLen = 1

	// MaxDNSNameLen bounds DNSName payloads, enforced both at construction
	// and at decode time before any buffer indexing.
	MaxDNSNameLen = 255
)

// class partitions variants for grammar validation.
type class int

const (
	classFamily class = iota
	classTransport
	classSession
)

// Protocol is one structured field of a network address.
//
// The variant set is sealed: only the types in this package implement it.
type Protocol interface {
	// WireTag returns the variant's fixed tag byte.
	WireTag() Tag

	// validate checks the value rules for the variant.
	validate() error

	// appendPayload appends the canonical payload encoding (without the tag
	// or any length prefix) to dst. The value must already be validated.
	appendPayload(dst []byte) []byte

	class() class
}

// IP4 is a 4-byte IPv4 address literal.
type IP4 [ip4Len]byte

// IP4FromIP converts a net.IP to an IP4.
func IP4FromIP(ip net.IP) (IP4, error) {
	v4 := ip.To4()
	if v4 == nil {
		return IP4{}, newError(KindInvalidValue, "ADDR-VAL-011", fmt.Sprintf("not an IPv4 address: %s", ip))
	}
	var p IP4
	copy(p[:], v4)
	return p, nil
}

func (p IP4) WireTag() Tag                    { return TagIP4 }
func (p IP4) validate() error                 { return nil }
func (p IP4) appendPayload(dst []byte) []byte { return append(dst, p[:]...) }
func (p IP4) class() class                    { return classFamily }

func (p IP4) String() string { return net.IP(p[:]).String() }

// IP6 is a 16-byte IPv6 address literal.
type IP6 [ip6Len]byte

// IP6FromIP converts a net.IP to an IP6. IPv4-mapped addresses are rejected;
// they must be encoded as IP4 so each value has exactly one byte form.
func IP6FromIP(ip net.IP) (IP6, error) {
	if ip.To4() != nil {
		return IP6{}, newError(KindInvalidValue, "ADDR-VAL-021", fmt.Sprintf("IPv4 address must use the ip4 variant: %s", ip))
	}
	v6 := ip.To16()
	if v6 == nil {
		return IP6{}, newError(KindInvalidValue, "ADDR-VAL-022", fmt.Sprintf("not an IPv6 address: %s", ip))
	}
	var p IP6
	copy(p[:], v6)
	return p, nil
}

func (p IP6) WireTag() Tag                    { return TagIP6 }
func (p IP6) validate() error                 { return nil }
func (p IP6) appendPayload(dst []byte) []byte { return append(dst, p[:]...) }
func (p IP6) class() class                    { return classFamily }

func (p IP6) String() string { return net.IP(p[:]).String() }

// DNSName is a hostname of 1..MaxDNSNameLen bytes in a restricted charset.
//
// The canonical form is lowercase; NewDNSName folds ASCII case so equal names
// always produce identical bytes.
type DNSName struct {
	name string
}

// NewDNSName validates and canonicalizes a hostname.
func NewDNSName(s string) (DNSName, error) {
	folded := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		folded[i] = c
	}
	d := DNSName{name: string(folded)}
	if err := d.validate(); err != nil {
		return DNSName{}, err
	}
	return d, nil
}

func (p DNSName) WireTag() Tag { return TagDNSName }

func (p DNSName) validate() error {
	if len(p.name) == 0 {
		return newError(KindInvalidValue, "ADDR-VAL-031", "empty DNS name")
	}
	if len(p.name) > MaxDNSNameLen {
		return newError(KindInvalidValue, "ADDR-VAL-032", fmt.Sprintf("DNS name exceeds %d bytes: %d", MaxDNSNameLen, len(p.name)))
	}
	if p.name[0] == '.' || p.name[len(p.name)-1] == '.' {
		return newError(KindInvalidValue, "ADDR-VAL-033", "DNS name must not start or end with a dot")
	}
	prevDot := false
	for i := 0; i < len(p.name); i++ {
		c := p.name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			prevDot = false
		case c == '.':
			if prevDot {
				return newError(KindInvalidValue, "ADDR-VAL-034", "DNS name has an empty label")
			}
			prevDot = true
		default:
			return newError(KindInvalidValue, "ADDR-VAL-035", fmt.Sprintf("disallowed character %q in DNS name", c))
		}
	}
	return nil
}

func (p DNSName) appendPayload(dst []byte) []byte { return append(dst, p.name...) }
func (p DNSName) class() class                    { return classFamily }

func (p DNSName) String() string { return p.name }

// Port is a 16-bit transport port, encoded big-endian.
type Port uint16

func (p Port) WireTag() Tag    { return TagPort }
func (p Port) validate() error { return nil }
func (p Port) appendPayload(dst []byte) []byte {
	return append(dst, byte(p>>8), byte(p))
}
func (p Port) class() class { return classTransport }

// MemcomSessionID is the fixed-width opaque session identifier carried by
// memcom-capable endpoints.
type MemcomSessionID [sessionIDLen]byte

func (p MemcomSessionID) WireTag() Tag                    { return TagMemcomSessionID }
func (p MemcomSessionID) validate() error                 { return nil }
func (p MemcomSessionID) appendPayload(dst []byte) []byte { return append(dst, p[:]...) }
func (p MemcomSessionID) class() class                    { return classSession }

// NoiseIKPublicKey is the endpoint's 32-byte static X25519 key for the
// Noise IK handshake.
type NoiseIKPublicKey [noisePublicKeyLen]byte

func (p NoiseIKPublicKey) WireTag() Tag                    { return TagNoiseIKPublicKey }
func (p NoiseIKPublicKey) validate() error                 { return nil }
func (p NoiseIKPublicKey) appendPayload(dst []byte) []byte { return append(dst, p[:]...) }
func (p NoiseIKPublicKey) class() class                    { return classSession }

// HandshakeVersion selects the handshake protocol revision an endpoint speaks.
type HandshakeVersion uint8

func (p HandshakeVersion) WireTag() Tag                    { return TagHandshakeVersion }
func (p HandshakeVersion) validate() error                 { return nil }
func (p HandshakeVersion) appendPayload(dst []byte) []byte { return append(dst, byte(p)) }
func (p HandshakeVersion) class() class                    { return classSession }

// tagName maps tags to display names used by NetworkAddress.String.
func tagName(t Tag) string {
	switch t {
	case TagIP4:
		return "ip4"
	case TagIP6:
		return "ip6"
	case TagDNSName:
		return "dns"
	case TagPort:
		return "port"
	case TagMemcomSessionID:
		return "memcom"
	case TagNoiseIKPublicKey:
		return "noise-ik"
	case TagHandshakeVersion:
		return "handshake"
	default:
		return fmt.Sprintf("unknown-0x%02x", byte(t))
	}
}
