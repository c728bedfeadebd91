// Package directory recovers the current addresses of an account from its
// published sealed records.
package directory

import (
	"sort"

	"github.com/ipfs/go-cid"

	"sealaddr.dev/sealaddr/netaddr"
	"sealaddr.dev/sealaddr/seal"
	"sealaddr.dev/sealaddr/storage"
)

type SkipReason string

const (
	// SkipNotOurs marks records that do not open under the scanning secret:
	// another publisher's records, rotated-away secrets, or tampered bytes.
	// These cases are indistinguishable on purpose.
	SkipNotOurs SkipReason = "decryption failed"
	// SkipFutureFormat marks records that opened but carry an address format
	// version this build does not understand.
	SkipFutureFormat SkipReason = "unsupported address version"
	// SkipMalformed marks records that opened but whose plaintext is not a
	// well-formed address.
	SkipMalformed SkipReason = "malformed address payload"
	// SkipBadRecord marks bytes that are not a sealed record at all, or whose
	// header names a different account than the scan asked for.
	SkipBadRecord SkipReason = "invalid record"
)

type Skipped struct {
	CID    cid.Cid
	Reason SkipReason
}

// Entry is the winning record for one address slot.
type Entry struct {
	AddressIndex   uint8
	SequenceNumber uint64
	Address        netaddr.NetworkAddress
	CID            cid.Cid
}

type Report struct {
	AccountID seal.AccountID

	// Entries holds one entry per address slot that yielded at least one
	// readable record, sorted by AddressIndex.
	Entries []Entry

	// Skipped lists every candidate that did not contribute an entry,
	// sorted by CID.
	Skipped []Skipped
}

// Scan decrypts every candidate record for account and keeps, per address
// slot, the record with the highest sequence number. Records that cannot be
// opened or decoded are reported in Skipped rather than failing the scan;
// only a store error is fatal.
//
// Ties on sequence number within a slot are broken by CID order so the result
// does not depend on candidate enumeration order.
func Scan(store storage.RecordStore, account seal.AccountID, secret seal.MasterSecret) (*Report, error) {
	candidates, err := store.Candidates(account)
	if err != nil {
		return nil, err
	}

	report := &Report{AccountID: account}
	best := make(map[uint8]Entry)

	for _, c := range candidates {
		rec, err := seal.Unmarshal(c.Record)
		if err != nil || rec.AccountID != account {
			report.Skipped = append(report.Skipped, Skipped{CID: c.CID, Reason: SkipBadRecord})
			continue
		}

		addr, err := rec.Decrypt(secret)
		if err != nil {
			report.Skipped = append(report.Skipped, Skipped{CID: c.CID, Reason: classify(err)})
			continue
		}

		entry := Entry{
			AddressIndex:   rec.AddressIndex,
			SequenceNumber: rec.SequenceNumber,
			Address:        addr,
			CID:            c.CID,
		}
		cur, ok := best[rec.AddressIndex]
		if !ok || wins(entry, cur) {
			if ok {
				report.Skipped = append(report.Skipped, Skipped{CID: cur.CID, Reason: skipSuperseded})
			}
			best[rec.AddressIndex] = entry
			continue
		}
		report.Skipped = append(report.Skipped, Skipped{CID: c.CID, Reason: skipSuperseded})
	}

	for _, e := range best {
		report.Entries = append(report.Entries, e)
	}
	sort.Slice(report.Entries, func(i, j int) bool {
		return report.Entries[i].AddressIndex < report.Entries[j].AddressIndex
	})
	sort.Slice(report.Skipped, func(i, j int) bool {
		return report.Skipped[i].CID.String() < report.Skipped[j].CID.String()
	})
	return report, nil
}

// skipSuperseded marks readable records beaten by a higher sequence number in
// the same address slot.
const skipSuperseded SkipReason = "superseded"

func wins(candidate, current Entry) bool {
	if candidate.SequenceNumber != current.SequenceNumber {
		return candidate.SequenceNumber > current.SequenceNumber
	}
	return candidate.CID.String() < current.CID.String()
}

func classify(err error) SkipReason {
	switch {
	case seal.IsKind(err, seal.KindDecryptionFailed):
		return SkipNotOurs
	case seal.IsKind(err, seal.KindDecodeFailed):
		if netaddr.IsKind(err, netaddr.KindUnsupportedVersion) {
			return SkipFutureFormat
		}
		return SkipMalformed
	default:
		return SkipBadRecord
	}
}
