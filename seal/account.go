package seal

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AccountIDLen is the fixed width of account identifiers. The identifier
// namespace itself is owned by the external identity layer; this package only
// fixes the width the record format depends on.
const AccountIDLen = 16

// AccountID is a fixed-width account identifier.
type AccountID [AccountIDLen]byte

// ParseAccountID parses a hex account identifier, with or without the "0x"
// prefix.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return AccountID{}, fmt.Errorf("invalid account id hex: %w", err)
	}
	if len(b) != AccountIDLen {
		return AccountID{}, fmt.Errorf("account id must be %d bytes, got %d", AccountIDLen, len(b))
	}
	var id AccountID
	copy(id[:], b)
	return id, nil
}

func (id AccountID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}
