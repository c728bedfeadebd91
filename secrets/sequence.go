package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"sealaddr.dev/sealaddr/seal"
)

// SequenceSource hands out rotation sequence numbers for (account,
// address-slot) pairs.
//
// The seal package requires sequence numbers to be strictly increasing and
// never reused per (account, address-slot, master secret) — nonce uniqueness
// depends on it. Implementations must serialize rotation events per slot;
// callers ask Next for the number to encrypt with and MarkUsed it once the
// record is published.
type SequenceSource interface {
	// Next returns the next unused sequence number for the slot.
	Next(account seal.AccountID, addressIndex uint8) (uint64, error)

	// MarkUsed records seq as consumed. It fails if seq is not greater than
	// every previously marked number for the slot.
	MarkUsed(account seal.AccountID, addressIndex uint8, seq uint64) error
}

type slotKey struct {
	account seal.AccountID
	index   uint8
}

// MemorySequence is an in-process, single-writer SequenceSource.
//
// State is lost on restart; use FileSequence when records outlive the
// process.
type MemorySequence struct {
	mu   sync.Mutex
	last map[slotKey]uint64
	used map[slotKey]bool
}

func NewMemorySequence() *MemorySequence {
	return &MemorySequence{
		last: make(map[slotKey]uint64),
		used: make(map[slotKey]bool),
	}
}

func (m *MemorySequence) Next(account seal.AccountID, addressIndex uint8) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := slotKey{account, addressIndex}
	if !m.used[k] {
		return m.last[k], nil
	}
	return m.last[k] + 1, nil
}

func (m *MemorySequence) MarkUsed(account seal.AccountID, addressIndex uint8, seq uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := slotKey{account, addressIndex}
	if m.used[k] && seq <= m.last[k] {
		return fmt.Errorf("sequence %d already used for %s slot %d (last: %d)", seq, account, addressIndex, m.last[k])
	}
	m.last[k] = seq
	m.used[k] = true
	return nil
}

// FileSequence persists the high-water mark per slot under a directory, one
// file per (account, address-slot).
//
// Writes go through a temp file and rename so a crash never rolls the counter
// back to a reusable value.
type FileSequence struct {
	mu        sync.Mutex
	directory string
}

func NewFileSequence(directory string) (*FileSequence, error) {
	if directory == "" {
		return nil, fmt.Errorf("sequence directory is required")
	}
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return nil, err
	}
	return &FileSequence{directory: directory}, nil
}

func (f *FileSequence) slotPath(account seal.AccountID, addressIndex uint8) string {
	return filepath.Join(f.directory, fmt.Sprintf("%s-%d.seq", account, addressIndex))
}

// load returns the last marked number and whether any number was marked.
func (f *FileSequence) load(account seal.AccountID, addressIndex uint8) (uint64, bool, error) {
	data, err := os.ReadFile(f.slotPath(account, addressIndex))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	last, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt sequence file for %s slot %d: %w", account, addressIndex, err)
	}
	return last, true, nil
}

func (f *FileSequence) Next(account seal.AccountID, addressIndex uint8) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	last, marked, err := f.load(account, addressIndex)
	if err != nil {
		return 0, err
	}
	if !marked {
		return 0, nil
	}
	return last + 1, nil
}

func (f *FileSequence) MarkUsed(account seal.AccountID, addressIndex uint8, seq uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	last, marked, err := f.load(account, addressIndex)
	if err != nil {
		return err
	}
	if marked && seq <= last {
		return fmt.Errorf("sequence %d already used for %s slot %d (last: %d)", seq, account, addressIndex, last)
	}
	path := f.slotPath(account, addressIndex)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.FormatUint(seq, 10)+"\n"), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
