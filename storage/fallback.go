package storage

import (
	"errors"

	"github.com/ipfs/go-cid"

	"sealaddr.dev/sealaddr/seal"
)

// Fallback provides deterministic, ordered fallback across multiple record
// stores.
//
// Read order is the slice order in Stores; callers MUST supply a fixed order.
// This avoids map-iteration nondeterminism and makes the retrieval strategy
// explicit.
//
// Append is defined to write only to the first store.
type Fallback struct {
	Stores []RecordStore
}

var _ RecordStore = Fallback{}

func (f Fallback) Append(record []byte) (cid.Cid, error) {
	if len(f.Stores) == 0 {
		return cid.Undef, errors.New("storage: Fallback has no stores")
	}
	return f.Stores[0].Append(record)
}

func (f Fallback) Get(id cid.Cid) ([]byte, error) {
	for _, s := range f.Stores {
		b, err := s.Get(id)
		if err == nil {
			return b, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (f Fallback) Has(id cid.Cid) bool {
	for _, s := range f.Stores {
		if s.Has(id) {
			return true
		}
	}
	return false
}

// Candidates returns the first store's non-empty candidate set, in order.
// Stores are alternative views of the same published log, not sources to be
// merged.
func (f Fallback) Candidates(account seal.AccountID) ([]Candidate, error) {
	if len(f.Stores) == 0 {
		return nil, errors.New("storage: Fallback has no stores")
	}
	var firstErr error
	for _, s := range f.Stores {
		out, err := s.Candidates(account)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, nil
}
