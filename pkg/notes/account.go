package notes

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// AccountMetadataBits is the number of most significant bits of an
	// AccountID reserved to metadata (account type and storage mode).
	AccountMetadataBits = 4

	accountIDHexLen = 16
)

// AccountID identifies accounts and faucets. Faucet ids double as asset ids.
type AccountID uint64

// ParseAccountID parses a 0x-prefixed, 16 digit hex string.
func ParseAccountID(s string) (AccountID, error) {
	str := strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(str) != accountIDHexLen {
		return 0, fmt.Errorf(
			"invalid account id %q: expected %d hex digits", s, accountIDHexLen,
		)
	}
	id, err := strconv.ParseUint(str, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q: %w", s, err)
	}
	return AccountID(id), nil
}

// String returns the 0x-prefixed hex representation of the id.
func (id AccountID) String() string {
	return fmt.Sprintf("0x%016x", uint64(id))
}

// Metadata returns the reserved most significant bits.
func (id AccountID) Metadata() uint8 {
	return uint8(uint64(id) >> (64 - AccountMetadataBits))
}

// TagByte returns the 8 bits right below the metadata bits (bits 52-59), the
// part of the id that survives in discovery tags.
func (id AccountID) TagByte() uint8 {
	return uint8(uint64(id) >> (64 - AccountMetadataBits - 8))
}
