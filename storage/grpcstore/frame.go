package grpcstore

import (
	"fmt"

	"github.com/multiformats/go-varint"
)

// frameRecords packs a list of records into a single buffer: a varint record
// count followed by each record as varint length then bytes.
func frameRecords(records [][]byte) []byte {
	frame := varint.ToUvarint(uint64(len(records)))
	for _, rec := range records {
		frame = append(frame, varint.ToUvarint(uint64(len(rec)))...)
		frame = append(frame, rec...)
	}
	return frame
}

// unframeRecords reverses frameRecords. The whole buffer must be consumed.
func unframeRecords(frame []byte) ([][]byte, error) {
	count, n, err := varint.FromUvarint(frame)
	if err != nil {
		return nil, fmt.Errorf("record frame: bad count: %w", err)
	}
	frame = frame[n:]
	// Every record costs at least its one-byte length prefix, so a count
	// beyond the remaining frame is malformed. Checking here keeps a hostile
	// count from driving the allocation below.
	if count > uint64(len(frame)) {
		return nil, fmt.Errorf("record frame: count %d exceeds %d remaining bytes", count, len(frame))
	}
	records := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		size, n, err := varint.FromUvarint(frame)
		if err != nil {
			return nil, fmt.Errorf("record frame: bad length for record %d: %w", i, err)
		}
		frame = frame[n:]
		if uint64(len(frame)) < size {
			return nil, fmt.Errorf("record frame: record %d claims %d bytes, %d remain", i, size, len(frame))
		}
		rec := make([]byte, size)
		copy(rec, frame[:size])
		records = append(records, rec)
		frame = frame[size:]
	}
	if len(frame) != 0 {
		return nil, fmt.Errorf("record frame: %d trailing bytes", len(frame))
	}
	return records, nil
}
