// Package localstore implements a filesystem-backed record store.
package localstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/ipfs/go-cid"

	"sealaddr.dev/sealaddr/seal"
	"sealaddr.dev/sealaddr/storage"
)

// Store is a local filesystem-backed record store.
//
// Records are stored immutably, keyed strictly by CID, with a per-account
// index of marker files. The implementation is offline and deterministic: it
// never uses the network and never depends on wall-clock time.
type Store struct {
	root string
}

var _ storage.RecordStore = (*Store)(nil)

// New constructs a store rooted at root. The directory will be created if
// needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localstore: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) Append(record []byte) (cid.Cid, error) {
	e, err := seal.Unmarshal(record)
	if err != nil {
		return cid.Undef, storage.ErrInvalidRecord
	}
	id, err := storage.RecordCID(record)
	if err != nil {
		return cid.Undef, err
	}

	path := s.recordPath(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := s.Get(id)
			if rerr != nil {
				// The file exists but is unreadable or corrupted; treat as an
				// immutability violation.
				return cid.Undef, storage.ErrImmutable
			}
			if !bytes.Equal(existing, record) {
				return cid.Undef, storage.ErrImmutable
			}
			return id, nil
		}
		return cid.Undef, err
	}

	if _, err := f.Write(record); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}

	if err := s.indexRecord(e.AccountID, id); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

func (s *Store) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	got, err := storage.RecordCID(b)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (s *Store) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(s.recordPath(id))
	return err == nil
}

func (s *Store) Candidates(account seal.AccountID) ([]storage.Candidate, error) {
	dir := s.accountDir(account)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	out := make([]storage.Candidate, 0, len(names))
	for _, name := range names {
		id, err := cid.Decode(name)
		if err != nil {
			return nil, storage.ErrInvalidCID
		}
		b, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, storage.Candidate{CID: id, Record: b})
	}
	return out, nil
}

func (s *Store) recordPath(id cid.Cid) string {
	c := id.String()
	if len(c) < 2 {
		return filepath.Join(s.root, "records", c)
	}
	return filepath.Join(s.root, "records", c[:2], c)
}

func (s *Store) accountDir(account seal.AccountID) string {
	return filepath.Join(s.root, "accounts", account.String())
}

// indexRecord drops an empty marker file named by the CID into the account's
// index directory. Idempotent.
func (s *Store) indexRecord(account seal.AccountID, id cid.Cid) error {
	dir := s.accountDir(account)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	marker := filepath.Join(dir, id.String())
	f, err := os.OpenFile(marker, os.O_WRONLY|os.O_CREATE, 0o444)
	if err != nil {
		return err
	}
	return f.Close()
}
