package rawdb

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/ctdb"
)

// ReadAccountState retrieves the confidential state of owner's account for
// mint, or nil if there is none.
func ReadAccountState(db ctdb.KeyValueReader, mint, owner common.Address) *ctoken.AccountState {
	data, _ := db.Get(accountKey(mint, owner))
	if len(data) == 0 {
		return nil
	}
	state, err := ctoken.DecodeAccountState(data)
	if err != nil {
		log.Error("Invalid confidential account record", "mint", mint, "owner", owner, "err", err)
		return nil
	}
	return state
}

// WriteAccountState stores the confidential state of owner's account.
func WriteAccountState(db ctdb.KeyValueWriter, mint, owner common.Address, state *ctoken.AccountState) {
	data, err := ctoken.EncodeAccountState(state)
	if err != nil {
		log.Crit("Failed to encode confidential account", "err", err)
	}
	if err := db.Put(accountKey(mint, owner), data); err != nil {
		log.Crit("Failed to store confidential account", "err", err)
	}
}

// DeleteAccountState removes the confidential state of owner's account.
func DeleteAccountState(db ctdb.KeyValueWriter, mint, owner common.Address) {
	if err := db.Delete(accountKey(mint, owner)); err != nil {
		log.Crit("Failed to delete confidential account", "err", err)
	}
}

// ReadMintAccounts returns the owners of every confidential account of mint.
func ReadMintAccounts(db ctdb.Iteratee, mint common.Address) []common.Address {
	prefix := mintAccountsPrefix(mint)
	it := NewKeyLengthIterator(db.NewIterator(prefix, nil), AccountKeyLength)
	defer it.Release()

	var owners []common.Address
	for it.Next() {
		owners = append(owners, common.BytesToAddress(it.Key()[len(prefix):]))
	}
	return owners
}

// ReadMintState retrieves the confidential state of mint, or nil if there
// is none.
func ReadMintState(db ctdb.KeyValueReader, mint common.Address) *ctoken.MintState {
	data, _ := db.Get(mintKey(mint))
	if len(data) == 0 {
		return nil
	}
	state, err := ctoken.DecodeMintState(data)
	if err != nil {
		log.Error("Invalid confidential mint record", "mint", mint, "err", err)
		return nil
	}
	return state
}

// WriteMintState stores the confidential state of mint.
func WriteMintState(db ctdb.KeyValueWriter, mint common.Address, state *ctoken.MintState) {
	data, err := ctoken.EncodeMintState(state)
	if err != nil {
		log.Crit("Failed to encode confidential mint", "err", err)
	}
	if err := db.Put(mintKey(mint), data); err != nil {
		log.Crit("Failed to store confidential mint", "err", err)
	}
}

// DeleteMintState removes the confidential state of mint.
func DeleteMintState(db ctdb.KeyValueWriter, mint common.Address) {
	if err := db.Delete(mintKey(mint)); err != nil {
		log.Crit("Failed to delete confidential mint", "err", err)
	}
}

// ReadContextRecord retrieves a verified proof context, or nil if there is
// none.
func ReadContextRecord(db ctdb.KeyValueReader, id uuid.UUID) *ctoken.ContextRecord {
	data, _ := db.Get(contextKey(id))
	if len(data) == 0 {
		return nil
	}
	rec, err := ctoken.DecodeContextRecord(data)
	if err != nil {
		log.Error("Invalid proof context record", "id", id, "err", err)
		return nil
	}
	return rec
}

// WriteContextRecord stores a verified proof context.
func WriteContextRecord(db ctdb.KeyValueWriter, id uuid.UUID, rec *ctoken.ContextRecord) {
	data, err := ctoken.EncodeContextRecord(rec)
	if err != nil {
		log.Crit("Failed to encode proof context", "err", err)
	}
	if err := db.Put(contextKey(id), data); err != nil {
		log.Crit("Failed to store proof context", "err", err)
	}
}

// DeleteContextRecord removes a proof context.
func DeleteContextRecord(db ctdb.KeyValueWriter, id uuid.UUID) {
	if err := db.Delete(contextKey(id)); err != nil {
		log.Crit("Failed to delete proof context", "err", err)
	}
}
