package seal

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"net"
	"testing"

	"sealaddr.dev/sealaddr/netaddr"
)

var (
	testSecret  = MasterSecret(bytes.Repeat([]byte{0x5A}, 32))
	otherSecret = MasterSecret(bytes.Repeat([]byte{0xA5}, 32))
)

func testAccount(b byte) AccountID {
	var id AccountID
	for i := range id {
		id[i] = b
	}
	return id
}

func testAddress(t *testing.T) netaddr.NetworkAddress {
	t.Helper()
	ip, err := netaddr.IP4FromIP(net.ParseIP("127.0.0.1"))
	if err != nil {
		t.Fatalf("IP4FromIP: %v", err)
	}
	a, err := netaddr.New(ip, netaddr.Port(6180), netaddr.HandshakeVersion(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	addr := testAddress(t)
	account := testAccount(0x11)

	e, err := Encrypt(addr, testSecret, account, 3, 42)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := e.Decrypt(testSecret)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !got.Equal(addr) {
		t.Fatalf("round trip mismatch: %s vs %s", got, addr)
	}
}

func TestDecryptWrongSecret(t *testing.T) {
	e, err := Encrypt(testAddress(t), testSecret, testAccount(0x11), 0, 1)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := e.Decrypt(otherSecret); !IsKind(err, KindDecryptionFailed) {
		t.Fatalf("got err=%v, want DecryptionFailed", err)
	}
}

func TestDecryptRejectsEveryBitFlip(t *testing.T) {
	e, err := Encrypt(testAddress(t), testSecret, testAccount(0x22), 1, 7)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	rec := e.Marshal()

	for i := 0; i < len(rec); i++ {
		for bit := 0; bit < 8; bit++ {
			mut := append([]byte(nil), rec...)
			mut[i] ^= 1 << bit
			f, err := Unmarshal(mut)
			if err != nil {
				t.Fatalf("Unmarshal flipped record: %v", err)
			}
			if _, err := f.Decrypt(testSecret); !IsKind(err, KindDecryptionFailed) {
				t.Fatalf("flip byte %d bit %d: got err=%v, want DecryptionFailed", i, bit, err)
			}
		}
	}
}

func TestDecryptWrongSequenceNumber(t *testing.T) {
	// The sequence number participates in both the nonce and the AAD; a
	// substituted value must fail authentication.
	e, err := Encrypt(testAddress(t), testSecret, testAccount(0x33), 0, 100)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	e.SequenceNumber = 101
	if _, err := e.Decrypt(testSecret); !IsKind(err, KindDecryptionFailed) {
		t.Fatalf("got err=%v, want DecryptionFailed", err)
	}
}

func TestDecodeFailedOnAuthenticatedGarbage(t *testing.T) {
	// A payload sealed under the correct key that is not a valid envelope
	// must surface DecodeFailed, not DecryptionFailed.
	account := testAccount(0x44)
	e := &EncNetworkAddress{AccountID: account, AddressIndex: 0, SequenceNumber: 5}

	key, err := DeriveKey(testSecret, account, 0)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatalf("NewGCM: %v", err)
	}
	nonce := DeriveNonce(5)
	e.Sealed = aead.Seal(nil, nonce[:], []byte{0xFF, 0xFF, 0xFF}, e.Marshal()[:headerLen])

	_, err = e.Decrypt(testSecret)
	if !IsKind(err, KindDecodeFailed) {
		t.Fatalf("got err=%v, want DecodeFailed", err)
	}

	// A future envelope version is visible as the underlying cause, so
	// scanners can distinguish "future format" from corruption.
	e.Sealed = aead.Seal(nil, nonce[:], []byte{0x09, 0x01, 0x22, 0x01}, e.Marshal()[:headerLen])
	_, err = e.Decrypt(testSecret)
	if !IsKind(err, KindDecodeFailed) {
		t.Fatalf("got err=%v, want DecodeFailed", err)
	}
	var ne *netaddr.Error
	if !errors.As(err, &ne) || ne.Kind != netaddr.KindUnsupportedVersion {
		t.Fatalf("cause = %v, want netaddr UnsupportedVersion", err)
	}
}

func TestMarshalUnmarshalRecord(t *testing.T) {
	e, err := Encrypt(testAddress(t), testSecret, testAccount(0x55), 7, 9000)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	rec := e.Marshal()
	got, err := Unmarshal(rec)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.AccountID != e.AccountID || got.AddressIndex != 7 || got.SequenceNumber != 9000 {
		t.Fatalf("header mismatch: %+v", got)
	}
	if !bytes.Equal(got.Sealed, e.Sealed) {
		t.Fatalf("sealed bytes mismatch")
	}
	if !bytes.Equal(got.Marshal(), rec) {
		t.Fatalf("re-marshal not byte-identical")
	}

	if _, err := Unmarshal(rec[:headerLen+tagLen-1]); !IsKind(err, KindInvalidRecord) {
		t.Fatalf("short record: got err=%v, want InvalidRecord", err)
	}
}

func TestShortMasterSecret(t *testing.T) {
	short := MasterSecret("too short")
	if _, err := Encrypt(testAddress(t), short, testAccount(0x66), 0, 0); !IsKind(err, KindInvalidSecret) {
		t.Fatalf("got err=%v, want InvalidSecret", err)
	}
	if _, err := DeriveKey(short, testAccount(0x66), 0); !IsKind(err, KindInvalidSecret) {
		t.Fatalf("DeriveKey: got err=%v, want InvalidSecret", err)
	}
}
