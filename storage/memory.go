package storage

import (
	"bytes"
	"sort"
	"sync"

	"github.com/ipfs/go-cid"

	"sealaddr.dev/sealaddr/seal"
)

// Memory is an in-process RecordStore for tests and development.
type Memory struct {
	mu      sync.RWMutex
	records map[cid.Cid][]byte
	// byAccount holds CIDs per account; order is re-derived on read so the
	// Candidates contract does not depend on insertion order.
	byAccount map[seal.AccountID][]cid.Cid
}

var _ RecordStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		records:   make(map[cid.Cid][]byte),
		byAccount: make(map[seal.AccountID][]cid.Cid),
	}
}

func (m *Memory) Append(record []byte) (cid.Cid, error) {
	e, err := checkRecord(record)
	if err != nil {
		return cid.Undef, err
	}
	id, err := RecordCID(record)
	if err != nil {
		return cid.Undef, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[id]; ok {
		if !bytes.Equal(existing, record) {
			return cid.Undef, ErrImmutable
		}
		return id, nil
	}
	m.records[id] = append([]byte(nil), record...)
	m.byAccount[e.AccountID] = append(m.byAccount[e.AccountID], id)
	return id, nil
}

func (m *Memory) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[id]
	return ok
}

func (m *Memory) Candidates(account seal.AccountID) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.byAccount[account]
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, Candidate{CID: id, Record: append([]byte(nil), m.records[id]...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CID.String() < out[j].CID.String() })
	return out, nil
}
