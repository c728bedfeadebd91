package secrets

import (
	"bytes"
	"testing"

	"sealaddr.dev/sealaddr/seal"
)

func testAccount(b byte) seal.AccountID {
	var id seal.AccountID
	for i := range id {
		id[i] = b
	}
	return id
}

func TestStoreRoundTrip(t *testing.T) {
	store := &Store{Directory: t.TempDir()}
	secret := seal.MasterSecret(bytes.Repeat([]byte{0x42}, 32))

	if _, err := store.Put("peer-a", secret, false); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get("peer-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Fatalf("loaded secret differs")
	}

	// Refuses to clobber without overwrite.
	if _, err := store.Put("peer-a", secret, false); err == nil {
		t.Fatalf("second Put without overwrite should fail")
	}
	if _, err := store.Put("peer-a", secret, true); err != nil {
		t.Fatalf("Put with overwrite: %v", err)
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "peer-a" {
		t.Fatalf("List = %v, want [peer-a]", names)
	}
}

func TestStoreRejectsBadInput(t *testing.T) {
	store := &Store{Directory: t.TempDir()}
	if _, err := store.Put("../escape", seal.MasterSecret(bytes.Repeat([]byte{1}, 32)), false); err == nil {
		t.Fatalf("path-escaping name should be rejected")
	}
	if _, err := store.Put("peer", seal.MasterSecret("short"), false); err == nil {
		t.Fatalf("short secret should be rejected")
	}
	if _, err := ParseSecretHex("abcd"); err == nil {
		t.Fatalf("short hex secret should be rejected")
	}
	if _, err := ParseSecretHex("0x" + "11223344556677889900aabbccddeeff"); err != nil {
		t.Fatalf("16-byte secret should parse: %v", err)
	}
}

func TestFingerprintStableAndDistinct(t *testing.T) {
	a := seal.MasterSecret(bytes.Repeat([]byte{0x01}, 32))
	b := seal.MasterSecret(bytes.Repeat([]byte{0x02}, 32))

	if Fingerprint(a) != Fingerprint(a) {
		t.Fatalf("fingerprint not deterministic")
	}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("distinct secrets share a fingerprint")
	}
	if Fingerprint(a) == "" {
		t.Fatalf("empty fingerprint")
	}
}

func testSequenceSource(t *testing.T, src SequenceSource) {
	t.Helper()
	account := testAccount(0x10)

	seq, err := src.Next(account, 0)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if seq != 0 {
		t.Fatalf("first Next = %d, want 0", seq)
	}
	if err := src.MarkUsed(account, 0, seq); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}

	seq, err = src.Next(account, 0)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if seq != 1 {
		t.Fatalf("second Next = %d, want 1", seq)
	}

	// Reuse and rollback are rejected.
	if err := src.MarkUsed(account, 0, 0); err == nil {
		t.Fatalf("MarkUsed(0) after 0 should fail")
	}

	// Gaps are fine; monotonicity is the only requirement.
	if err := src.MarkUsed(account, 0, 10); err != nil {
		t.Fatalf("MarkUsed(10): %v", err)
	}
	seq, err = src.Next(account, 0)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if seq != 11 {
		t.Fatalf("Next after gap = %d, want 11", seq)
	}

	// Slots are independent.
	seq, err = src.Next(account, 1)
	if err != nil {
		t.Fatalf("Next slot 1: %v", err)
	}
	if seq != 0 {
		t.Fatalf("fresh slot Next = %d, want 0", seq)
	}
}

func TestMemorySequence(t *testing.T) {
	testSequenceSource(t, NewMemorySequence())
}

func TestFileSequence(t *testing.T) {
	src, err := NewFileSequence(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSequence: %v", err)
	}
	testSequenceSource(t, src)
}

func TestFileSequenceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	account := testAccount(0x20)

	src, err := NewFileSequence(dir)
	if err != nil {
		t.Fatalf("NewFileSequence: %v", err)
	}
	if err := src.MarkUsed(account, 3, 7); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}

	reopened, err := NewFileSequence(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	seq, err := reopened.Next(account, 3)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if seq != 8 {
		t.Fatalf("Next after reopen = %d, want 8", seq)
	}
	if err := reopened.MarkUsed(account, 3, 7); err == nil {
		t.Fatalf("reusing a persisted sequence should fail")
	}
}
