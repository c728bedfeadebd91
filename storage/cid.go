package storage

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// RecordCID returns the CIDv1 (raw multicodec, sha2-256 multihash) every
// conforming store must key a record by. Publishers use it as the receipt for
// an Append.
func RecordCID(record []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(record, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}
