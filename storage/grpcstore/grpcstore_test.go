package grpcstore

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/multiformats/go-varint"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"sealaddr.dev/sealaddr/seal"
	"sealaddr.dev/sealaddr/storage"
	"sealaddr.dev/sealaddr/storage/testkit"
)

func dialTestServer(t *testing.T, backing storage.RecordStore) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterRecordStoreServer(srv, &Server{Store: backing})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewRecordStoreClient(cc), Timeout: 2 * time.Second}
}

func TestGRPCStore_Memory_RoundTrip(t *testing.T) {
	client := dialTestServer(t, storage.NewMemory())

	account := seal.AccountID{0xaa, 0xbb}
	record := testkit.Record(account, 0, 5, 0x7e)

	id, err := client.Append(record)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !id.Defined() {
		t.Fatalf("expected defined CID")
	}
	if !client.Has(id) {
		t.Fatalf("Has: expected true")
	}
	got, err := client.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, record) {
		t.Fatalf("record mismatch")
	}

	candidates, err := client.Candidates(account)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].CID != id || !bytes.Equal(candidates[0].Record, record) {
		t.Fatalf("Candidates: got %+v", candidates)
	}
}

func TestGRPCStore_ErrorMapping(t *testing.T) {
	client := dialTestServer(t, storage.NewMemory())

	missing := testkit.Record(seal.AccountID{0x01}, 0, 0, 0x01)
	id, err := storage.RecordCID(missing)
	if err != nil {
		t.Fatalf("RecordCID: %v", err)
	}
	if _, err := client.Get(id); !storage.IsNotFound(err) {
		t.Fatalf("Get missing: got %v, want ErrNotFound", err)
	}

	if _, err := client.Append([]byte("junk")); !storage.IsInvalidRecord(err) {
		t.Fatalf("Append junk: got %v, want ErrInvalidRecord", err)
	}
}

func TestGRPCStore_Conformance(t *testing.T) {
	testkit.RunRecordStoreConformance(t, func(t *testing.T) storage.RecordStore {
		return dialTestServer(t, storage.NewMemory())
	})
}

func TestFrameRoundTrip(t *testing.T) {
	records := [][]byte{
		[]byte("one"),
		{},
		bytes.Repeat([]byte{0xab}, 300),
	}
	got, err := unframeRecords(frameRecords(records))
	if err != nil {
		t.Fatalf("unframeRecords: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if !bytes.Equal(got[i], records[i]) {
			t.Fatalf("record %d mismatch", i)
		}
	}

	empty, err := unframeRecords(frameRecords(nil))
	if err != nil {
		t.Fatalf("unframeRecords(empty): %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no records, got %d", len(empty))
	}
}

func TestUnframeRejectsMalformed(t *testing.T) {
	frame := frameRecords([][]byte{[]byte("abc")})

	if _, err := unframeRecords(frame[:len(frame)-1]); err == nil {
		t.Fatalf("expected error for short frame")
	}
	if _, err := unframeRecords(append(frame, 0x00)); err == nil {
		t.Fatalf("expected error for trailing bytes")
	}
	if _, err := unframeRecords([]byte{0x01}); err == nil {
		t.Fatalf("expected error for missing record length")
	}
	// A hostile count must produce an error, not size an allocation.
	if _, err := unframeRecords(varint.ToUvarint(1 << 60)); err == nil {
		t.Fatalf("expected error for oversized record count")
	}
}
