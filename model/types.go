package model

import (
	"sealaddr.dev/sealaddr/directory"
	"sealaddr.dev/sealaddr/seal"
)

// PublishReceipt reports one published sealed record.
type PublishReceipt struct {
	AccountID      string `json:"accountID"`
	AddressIndex   uint8  `json:"addressIndex"`
	SequenceNumber uint64 `json:"sequenceNumber"`
	Address        string `json:"address"`
	CID            string `json:"cid"`
}

// AddressEntry is the winning record for one address slot of a scan.
type AddressEntry struct {
	AddressIndex   uint8  `json:"addressIndex"`
	SequenceNumber uint64 `json:"sequenceNumber"`
	Address        string `json:"address"`
	CID            string `json:"cid"`
}

// SkippedRecord names a candidate record that did not contribute an address.
type SkippedRecord struct {
	CID    string `json:"cid"`
	Reason string `json:"reason"`
}

// ScanReport is the JSON projection of a directory scan.
type ScanReport struct {
	AccountID string          `json:"accountID"`
	Addresses []AddressEntry  `json:"addresses"`
	Skipped   []SkippedRecord `json:"skipped"`
}

// FromScan projects a directory report into its JSON boundary shape.
// Slices are always non-nil so consumers see [] rather than null.
func FromScan(report *directory.Report) ScanReport {
	out := ScanReport{
		AccountID: report.AccountID.String(),
		Addresses: []AddressEntry{},
		Skipped:   []SkippedRecord{},
	}
	for _, e := range report.Entries {
		out.Addresses = append(out.Addresses, AddressEntry{
			AddressIndex:   e.AddressIndex,
			SequenceNumber: e.SequenceNumber,
			Address:        e.Address.String(),
			CID:            e.CID.String(),
		})
	}
	for _, s := range report.Skipped {
		out.Skipped = append(out.Skipped, SkippedRecord{
			CID:    s.CID.String(),
			Reason: string(s.Reason),
		})
	}
	return out
}

// NewPublishReceipt builds the receipt for a record that was just appended.
func NewPublishReceipt(rec *seal.EncNetworkAddress, address, cid string) PublishReceipt {
	return PublishReceipt{
		AccountID:      rec.AccountID.String(),
		AddressIndex:   rec.AddressIndex,
		SequenceNumber: rec.SequenceNumber,
		Address:        address,
		CID:            cid,
	}
}
