package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"sealaddr.dev/sealaddr/seal"
)

// NamedStore associates a RecordStore with a stable backend name.
//
// Used for multi-backend publication where callers need per-backend receipts.
type NamedStore struct {
	Name  string
	Store RecordStore
}

// Replicating publishes to all configured backends.
//
// Reads fall back in order. Appends go to all backends and require all
// returned CIDs to match (otherwise ErrCIDMismatch is returned).
//
// Use AppendAll when you need the per-backend receipt mapping.
type Replicating struct {
	Backends []NamedStore
}

var _ RecordStore = (*Replicating)(nil)

// AppendAll writes the same record to all backends.
//
// It returns the canonical CID (computed from the record bytes) and a map of
// backend name -> returned CID. If any backend returns a different CID,
// ErrCIDMismatch is returned.
func (r Replicating) AppendAll(record []byte) (cid.Cid, map[string]cid.Cid, error) {
	if _, err := checkRecord(record); err != nil {
		return cid.Undef, nil, err
	}
	want, err := RecordCID(record)
	if err != nil {
		return cid.Undef, nil, err
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("storage: Replicating has no backends")
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		if b.Store == nil {
			return cid.Undef, nil, fmt.Errorf("storage: nil store for backend %q", b.Name)
		}
		got, err := b.Store.Append(record)
		if err != nil {
			return cid.Undef, nil, err
		}
		out[b.Name] = got
		if got != want {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r Replicating) Append(record []byte) (cid.Cid, error) {
	id, _, err := r.AppendAll(record)
	return id, err
}

func (r Replicating) Get(id cid.Cid) ([]byte, error) {
	return Fallback{Stores: r.stores()}.Get(id)
}

func (r Replicating) Has(id cid.Cid) bool {
	return Fallback{Stores: r.stores()}.Has(id)
}

func (r Replicating) Candidates(account seal.AccountID) ([]Candidate, error) {
	return Fallback{Stores: r.stores()}.Candidates(account)
}

func (r Replicating) stores() []RecordStore {
	out := make([]RecordStore, 0, len(r.Backends))
	for _, b := range r.Backends {
		out = append(out, b.Store)
	}
	return out
}
