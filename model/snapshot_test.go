package model

import (
	"encoding/json"
	"strings"
	"testing"

	"sealaddr.dev/sealaddr/directory"
	"sealaddr.dev/sealaddr/seal"
)

func TestSnapshot_PublishReceipt_JSONShape(t *testing.T) {
	receipt := PublishReceipt{
		AccountID:      "0x000102030405060708090a0b0c0d0e0f",
		AddressIndex:   2,
		SequenceNumber: 7,
		Address:        "/ip4/127.0.0.1/port/6180",
		CID:            "bafy-record-1",
	}

	b, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	const want = "{\n" +
		"  \"accountID\": \"0x000102030405060708090a0b0c0d0e0f\",\n" +
		"  \"addressIndex\": 2,\n" +
		"  \"sequenceNumber\": 7,\n" +
		"  \"address\": \"/ip4/127.0.0.1/port/6180\",\n" +
		"  \"cid\": \"bafy-record-1\"\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}

func TestFromScan_EmptyReportMarshalsEmptyArrays(t *testing.T) {
	out := FromScan(&directory.Report{AccountID: seal.AccountID{0x01}})
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(b), `"addresses":[]`) || !strings.Contains(string(b), `"skipped":[]`) {
		t.Fatalf("empty report should marshal empty arrays: %s", b)
	}
}

func TestSnapshot_ScanReport_JSONShape(t *testing.T) {
	report := ScanReport{
		AccountID: "0x000102030405060708090a0b0c0d0e0f",
		Addresses: []AddressEntry{
			{AddressIndex: 0, SequenceNumber: 3, Address: "/ip4/10.0.0.1/port/1000", CID: "bafy-a"},
		},
		Skipped: []SkippedRecord{
			{CID: "bafy-b", Reason: "decryption failed"},
		},
	}

	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	const want = "{\n" +
		"  \"accountID\": \"0x000102030405060708090a0b0c0d0e0f\",\n" +
		"  \"addresses\": [\n" +
		"    {\n" +
		"      \"addressIndex\": 0,\n" +
		"      \"sequenceNumber\": 3,\n" +
		"      \"address\": \"/ip4/10.0.0.1/port/1000\",\n" +
		"      \"cid\": \"bafy-a\"\n" +
		"    }\n" +
		"  ],\n" +
		"  \"skipped\": [\n" +
		"    {\n" +
		"      \"cid\": \"bafy-b\",\n" +
		"      \"reason\": \"decryption failed\"\n" +
		"    }\n" +
		"  ]\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}
