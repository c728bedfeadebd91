package directory_test

import (
	"bytes"
	"net"
	"testing"

	"sealaddr.dev/sealaddr/directory"
	"sealaddr.dev/sealaddr/netaddr"
	"sealaddr.dev/sealaddr/seal"
	"sealaddr.dev/sealaddr/storage"
	"sealaddr.dev/sealaddr/storage/testkit"
)

var (
	scanSecret  = seal.MasterSecret(bytes.Repeat([]byte{0x5a}, 32))
	otherSecret = seal.MasterSecret(bytes.Repeat([]byte{0xa5}, 32))
)

func testAddr(t *testing.T, port uint16) netaddr.NetworkAddress {
	t.Helper()
	ip4, err := netaddr.IP4FromIP(net.IPv4(10, 0, 0, 1))
	if err != nil {
		t.Fatalf("IP4FromIP: %v", err)
	}
	addr, err := netaddr.New(ip4, netaddr.Port(port))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return addr
}

func publish(t *testing.T, store storage.RecordStore, secret seal.MasterSecret, account seal.AccountID, index uint8, seq uint64, port uint16) {
	t.Helper()
	rec, err := seal.Encrypt(testAddr(t, port), secret, account, index, seq)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := store.Append(rec.Marshal()); err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestScanKeepsHighestSequencePerSlot(t *testing.T) {
	store := storage.NewMemory()
	account := seal.AccountID{0x01}

	publish(t, store, scanSecret, account, 0, 0, 1000)
	publish(t, store, scanSecret, account, 0, 1, 1001)
	publish(t, store, scanSecret, account, 0, 2, 1002)
	publish(t, store, scanSecret, account, 3, 0, 3000)

	report, err := directory.Scan(store, account, scanSecret)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(report.Entries))
	}
	if report.Entries[0].AddressIndex != 0 || report.Entries[0].SequenceNumber != 2 {
		t.Fatalf("slot 0: got index=%d seq=%d", report.Entries[0].AddressIndex, report.Entries[0].SequenceNumber)
	}
	if got := report.Entries[0].Address.String(); got != "/ip4/10.0.0.1/port/1002" {
		t.Fatalf("slot 0 address: %s", got)
	}
	if report.Entries[1].AddressIndex != 3 || report.Entries[1].SequenceNumber != 0 {
		t.Fatalf("slot 3: got index=%d seq=%d", report.Entries[1].AddressIndex, report.Entries[1].SequenceNumber)
	}
	if len(report.Skipped) != 2 {
		t.Fatalf("got %d skipped, want 2 superseded", len(report.Skipped))
	}
}

func TestScanSkipsForeignRecords(t *testing.T) {
	store := storage.NewMemory()
	account := seal.AccountID{0x02}

	publish(t, store, scanSecret, account, 0, 0, 1000)
	publish(t, store, otherSecret, account, 1, 0, 2000)

	report, err := directory.Scan(store, account, scanSecret)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Entries) != 1 || report.Entries[0].AddressIndex != 0 {
		t.Fatalf("entries: %+v", report.Entries)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != directory.SkipNotOurs {
		t.Fatalf("skipped: %+v", report.Skipped)
	}
}

func TestScanSkipsUnreadableRecords(t *testing.T) {
	store := storage.NewMemory()
	account := seal.AccountID{0x03}

	// A structurally valid record whose ciphertext never authenticated.
	if _, err := store.Append(testkit.Record(account, 0, 0, 0x7f)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	publish(t, store, scanSecret, account, 1, 4, 4000)

	report, err := directory.Scan(store, account, scanSecret)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Entries) != 1 || report.Entries[0].SequenceNumber != 4 {
		t.Fatalf("entries: %+v", report.Entries)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != directory.SkipNotOurs {
		t.Fatalf("skipped: %+v", report.Skipped)
	}
}

func TestScanEmptyAccount(t *testing.T) {
	store := storage.NewMemory()
	report, err := directory.Scan(store, seal.AccountID{0x04}, scanSecret)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Entries) != 0 || len(report.Skipped) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestScanDeterministicAcrossStores(t *testing.T) {
	account := seal.AccountID{0x05}

	build := func(order []uint64) *directory.Report {
		store := storage.NewMemory()
		for _, seq := range order {
			publish(t, store, scanSecret, account, 0, seq, uint16(1000+seq))
		}
		report, err := directory.Scan(store, account, scanSecret)
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		return report
	}

	a := build([]uint64{0, 1, 2})
	b := build([]uint64{2, 0, 1})

	if len(a.Entries) != 1 || len(b.Entries) != 1 {
		t.Fatalf("entries: %d vs %d", len(a.Entries), len(b.Entries))
	}
	if !a.Entries[0].Address.Equal(b.Entries[0].Address) || a.Entries[0].CID != b.Entries[0].CID {
		t.Fatalf("scan result depends on publish order")
	}
}
