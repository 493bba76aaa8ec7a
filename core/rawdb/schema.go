// Package rawdb contains the low level database accessors for confidential
// token records.
package rawdb

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

var (
	// accountPrefix + mint + owner -> confidential account record
	accountPrefix = []byte("ca")

	// mintPrefix + mint -> confidential mint record
	mintPrefix = []byte("cm")

	// contextPrefix + id -> verified proof context record
	contextPrefix = []byte("cx")
)

// AccountKeyLength is the length of an account record key.
const AccountKeyLength = 2 + 2*common.AddressLength

func accountKey(mint, owner common.Address) []byte {
	key := make([]byte, 0, AccountKeyLength)
	key = append(key, accountPrefix...)
	key = append(key, mint.Bytes()...)
	return append(key, owner.Bytes()...)
}

func mintAccountsPrefix(mint common.Address) []byte {
	return append(append([]byte{}, accountPrefix...), mint.Bytes()...)
}

func mintKey(mint common.Address) []byte {
	return append(append([]byte{}, mintPrefix...), mint.Bytes()...)
}

func contextKey(id uuid.UUID) []byte {
	return append(append([]byte{}, contextPrefix...), id[:]...)
}
