// Package storage defines the append-only record store that publishes
// EncNetworkAddress records, plus adapters and orchestration over it.
//
// The store is a storage abstraction, not a ledger: consensus, replication
// guarantees, and the account namespace live outside this module.
package storage

import (
	"github.com/ipfs/go-cid"

	"sealaddr.dev/sealaddr/seal"
)

// RecordStore is an append-only, content-addressed store for marshaled
// EncNetworkAddress records.
//
// Contract:
// - Append MUST be idempotent and MUST reject bytes that do not frame as a record.
// - Stored records MUST be immutable.
// - CIDs MUST be derived from the record bytes (RecordCID).
// - Get MUST return ErrNotFound when the CID is absent.
// - Candidates MUST return a deterministic order (ascending CID string).
type RecordStore interface {
	Append(record []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool

	// Candidates returns every stored record published under the account,
	// across all address slots and sequence numbers. Decryption decides
	// which of them the caller can actually read.
	Candidates(account seal.AccountID) ([]Candidate, error)
}

// Candidate is one record returned by a candidate scan.
type Candidate struct {
	CID    cid.Cid
	Record []byte
}

// checkRecord enforces the framing part of the Append contract.
func checkRecord(record []byte) (*seal.EncNetworkAddress, error) {
	e, err := seal.Unmarshal(record)
	if err != nil {
		return nil, ErrInvalidRecord
	}
	return e, nil
}
