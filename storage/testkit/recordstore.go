// Package testkit provides a conformance suite shared by record store backends.
package testkit

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"sealaddr.dev/sealaddr/seal"
	"sealaddr.dev/sealaddr/storage"
)

// NewStore constructs a fresh, empty record store instance for a test.
// The returned store MUST be isolated from other tests.
type NewStore func(t *testing.T) storage.RecordStore

// Record builds a well-formed sealed record for tests. The ciphertext is
// arbitrary bytes of AEAD-tag length so the record parses without a secret.
func Record(account seal.AccountID, index uint8, seq uint64, fill byte) []byte {
	sealed := bytes.Repeat([]byte{fill}, 24)
	rec := seal.EncNetworkAddress{
		AccountID:      account,
		AddressIndex:   index,
		SequenceNumber: seq,
		Sealed:         sealed,
	}
	return rec.Marshal()
}

func RunRecordStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	accountA := seal.AccountID{0x0a}
	accountB := seal.AccountID{0x0b}

	t.Run("AppendGetRoundTrip", func(t *testing.T) {
		store := newStore(t)
		want := Record(accountA, 0, 0, 0x11)

		id, err := store.Append(want)
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		wantID, err := storage.RecordCID(want)
		if err != nil {
			t.Fatalf("RecordCID failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Append CID mismatch: got %s want %s", id, wantID)
		}

		got, err := store.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("AppendIdempotent", func(t *testing.T) {
		store := newStore(t)
		rec := Record(accountA, 1, 7, 0x22)

		id1, err := store.Append(rec)
		if err != nil {
			t.Fatalf("Append(1) failed: %v", err)
		}
		id2, err := store.Append(rec)
		if err != nil {
			t.Fatalf("Append(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Append not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		store := newStore(t)
		rec := Record(accountA, 0, 3, 0x33)
		id, err := storage.RecordCID(rec)
		if err != nil {
			t.Fatalf("RecordCID failed: %v", err)
		}

		if store.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		_, err = store.Get(id)
		if !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err := store.Append(rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if !store.Has(id) {
			t.Fatalf("Has returned false after Append")
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		store := newStore(t)
		var undef cid.Cid
		if store.Has(undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := store.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
	})

	t.Run("RejectInvalidRecord", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.Append([]byte("not a sealed record")); !storage.IsInvalidRecord(err) {
			t.Fatalf("Append junk: got err=%v want ErrInvalidRecord", err)
		}
		if _, err := store.Append(nil); !storage.IsInvalidRecord(err) {
			t.Fatalf("Append nil: got err=%v want ErrInvalidRecord", err)
		}
	})

	t.Run("CandidatesByAccount", func(t *testing.T) {
		store := newStore(t)

		recs := [][]byte{
			Record(accountA, 0, 0, 0x41),
			Record(accountA, 0, 1, 0x42),
			Record(accountA, 1, 0, 0x43),
		}
		other := Record(accountB, 0, 0, 0x44)

		for _, rec := range recs {
			if _, err := store.Append(rec); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		if _, err := store.Append(other); err != nil {
			t.Fatalf("Append failed: %v", err)
		}

		candidates, err := store.Candidates(accountA)
		if err != nil {
			t.Fatalf("Candidates failed: %v", err)
		}
		if len(candidates) != len(recs) {
			t.Fatalf("Candidates: got %d records, want %d", len(candidates), len(recs))
		}
		for i := 1; i < len(candidates); i++ {
			if candidates[i-1].CID.String() >= candidates[i].CID.String() {
				t.Fatalf("Candidates not sorted by CID")
			}
		}
		for _, c := range candidates {
			id, err := storage.RecordCID(c.Record)
			if err != nil {
				t.Fatalf("RecordCID failed: %v", err)
			}
			if id != c.CID {
				t.Fatalf("candidate CID does not match its record bytes")
			}
		}

		candidates, err = store.Candidates(accountB)
		if err != nil {
			t.Fatalf("Candidates failed: %v", err)
		}
		if len(candidates) != 1 || !bytes.Equal(candidates[0].Record, other) {
			t.Fatalf("Candidates for second account wrong")
		}

		candidates, err = store.Candidates(seal.AccountID{0xff})
		if err != nil {
			t.Fatalf("Candidates failed: %v", err)
		}
		if len(candidates) != 0 {
			t.Fatalf("Candidates for unknown account: got %d, want 0", len(candidates))
		}
	})
}
