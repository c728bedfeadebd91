package netaddr

import (
	"bytes"
	"testing"
)

// The documented version-1 vector: [IP4(127.0.0.1), Port(6180)] encodes to
// [version=01][count=02][ip4 tag=01][7f 00 00 01][port tag=10][18 24].
var rawVector = []byte{0x01, 0x02, 0x01, 0x7f, 0x00, 0x00, 0x01, 0x10, 0x18, 0x24}

func TestEncodeRawVector(t *testing.T) {
	a := mustAddr(t, mustIP4(t, "127.0.0.1"), Port(6180))
	r, err := EncodeRaw(a, Version1)
	if err != nil {
		t.Fatalf("EncodeRaw: %v", err)
	}
	if got := r.Bytes(); !bytes.Equal(got, rawVector) {
		t.Fatalf("envelope bytes = % x, want % x", got, rawVector)
	}

	got, err := DecodeRaw(rawVector)
	if err != nil {
		t.Fatalf("DecodeRaw: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("decoded %s, want %s", got, a)
	}
}

func TestDecodeRawUnsupportedVersion(t *testing.T) {
	b := append([]byte(nil), rawVector...)
	b[0] = 0x07
	if _, err := DecodeRaw(b); !IsKind(err, KindUnsupportedVersion) {
		t.Fatalf("got err=%v, want UnsupportedVersion", err)
	}
	if _, err := EncodeRaw(mustAddr(t, mustIP4(t, "127.0.0.1")), 9); !IsKind(err, KindUnsupportedVersion) {
		t.Fatalf("encode version 9: got err=%v, want UnsupportedVersion", err)
	}
}

func TestDecodeRawExactConsumption(t *testing.T) {
	// Trailing garbage after the declared protocols.
	b := append(append([]byte(nil), rawVector...), 0xFF)
	if _, err := DecodeRaw(b); !IsKind(err, KindInvalidValue) {
		t.Fatalf("trailing byte: got err=%v, want InvalidValue", err)
	}

	// Count larger than the protocols present.
	b = append([]byte(nil), rawVector...)
	b[1] = 0x03
	if _, err := DecodeRaw(b); !IsKind(err, KindTruncated) {
		t.Fatalf("overcount: got err=%v, want TruncatedInput", err)
	}

	// Count smaller than the protocols present leaves trailing bytes.
	b = append([]byte(nil), rawVector...)
	b[1] = 0x01
	if _, err := DecodeRaw(b); !IsKind(err, KindInvalidValue) {
		t.Fatalf("undercount: got err=%v, want InvalidValue", err)
	}
}

func TestDecodeRawCountCanonicality(t *testing.T) {
	// 0x82 0x00 spells the count 2 with a redundant byte. The buffer is
	// complete, so the non-minimal encoding is an invalid value, not a
	// truncation.
	b := append([]byte{Version1, 0x82, 0x00}, rawVector[2:]...)
	if _, err := DecodeRaw(b); !IsKind(err, KindInvalidValue) {
		t.Fatalf("non-minimal count: got err=%v, want InvalidValue", err)
	}

	// A count varint cut mid-encoding is a truncation.
	if _, err := DecodeRaw([]byte{Version1, 0x80}); !IsKind(err, KindTruncated) {
		t.Fatalf("cut count varint: got err=%v, want TruncatedInput", err)
	}
}

func TestRawRoundTrip(t *testing.T) {
	var key NoiseIKPublicKey
	for i := range key {
		key[i] = byte(i * 3)
	}
	addrs := []NetworkAddress{
		mustAddr(t, mustIP4(t, "127.0.0.1")),
		mustAddr(t, mustIP6(t, "2001:db8::42"), Port(1)),
		mustAddr(t, mustDNS(t, "a.b-c.example"), Port(65535), MemcomSessionID{0xAA}, key, HandshakeVersion(255)),
	}
	for _, a := range addrs {
		r, err := EncodeRaw(a, Version1)
		if err != nil {
			t.Fatalf("EncodeRaw(%s): %v", a, err)
		}
		got, err := DecodeRaw(r.Bytes())
		if err != nil {
			t.Fatalf("DecodeRaw(%s): %v", a, err)
		}
		if !got.Equal(a) {
			t.Fatalf("round trip mismatch: %s vs %s", got, a)
		}
	}
}

func TestDecodeRawEmptyAndTruncated(t *testing.T) {
	if _, err := DecodeRaw(nil); !IsKind(err, KindTruncated) {
		t.Fatalf("empty: got err=%v, want TruncatedInput", err)
	}
	if _, err := DecodeRaw([]byte{0x01}); !IsKind(err, KindTruncated) {
		t.Fatalf("version only: got err=%v, want TruncatedInput", err)
	}
	if _, err := DecodeRaw([]byte{0x01, 0x00}); !IsKind(err, KindInvalidGrammar) {
		t.Fatalf("zero count: got err=%v, want InvalidGrammar", err)
	}
}
