package rawdb

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/crypto/zkproofs"
	"github.com/tos-network/ctoken/ctdb/memorydb"
)

func TestAccountStateStorage(t *testing.T) {
	db := memorydb.New()
	mint, owner := common.HexToAddress("0x01"), common.HexToAddress("0xBEEF")

	if ReadAccountState(db, mint, owner) != nil {
		t.Fatal("non-existent account returned")
	}
	in := &ctoken.AccountState{ElGamalPubkey: ctoken.Pubkey{9}, PendingCreditCounter: 3, Approved: true}
	WriteAccountState(db, mint, owner, in)
	out := ReadAccountState(db, mint, owner)
	if out == nil || *out != *in {
		t.Fatalf("account mismatch: %+v", out)
	}
	if ReadAccountState(db, common.HexToAddress("0x02"), owner) != nil {
		t.Fatal("account visible under another mint")
	}
	DeleteAccountState(db, mint, owner)
	if ReadAccountState(db, mint, owner) != nil {
		t.Fatal("deleted account returned")
	}
}

func TestReadMintAccounts(t *testing.T) {
	db := memorydb.New()
	mint, other := common.HexToAddress("0x01"), common.HexToAddress("0x02")
	owners := []common.Address{common.HexToAddress("0xA1"), common.HexToAddress("0xA2")}
	for _, owner := range owners {
		WriteAccountState(db, mint, owner, &ctoken.AccountState{})
	}
	WriteAccountState(db, other, common.HexToAddress("0xA3"), &ctoken.AccountState{})
	WriteMintState(db, mint, &ctoken.MintState{})

	got := ReadMintAccounts(db, mint)
	if len(got) != len(owners) {
		t.Fatalf("got %d accounts, want %d", len(got), len(owners))
	}
	for i := range owners {
		if got[i] != owners[i] {
			t.Fatalf("account %d: got %x want %x", i, got[i], owners[i])
		}
	}
}

func TestMintStateStorage(t *testing.T) {
	db := memorydb.New()
	mint := common.HexToAddress("0x01")
	in := &ctoken.MintState{FeeBasisPoints: 50, MaximumFee: 7}
	WriteMintState(db, mint, in)
	if out := ReadMintState(db, mint); out == nil || *out != *in {
		t.Fatalf("mint mismatch: %+v", out)
	}
	// A corrupt record reads as absent.
	if err := db.Put(mintKey(mint), []byte("garbage")); err != nil {
		t.Fatal(err)
	}
	if ReadMintState(db, mint) != nil {
		t.Fatal("corrupt mint returned")
	}
}

func TestContextRecordStorage(t *testing.T) {
	db := memorydb.New()
	id := uuid.New()
	in := &ctoken.ContextRecord{
		ProofType: zkproofs.ProofTypePubkeyValidity,
		Context:   bytes.Repeat([]byte{0}, 32),
		Authority: common.HexToAddress("0xC0"),
	}
	WriteContextRecord(db, id, in)
	out := ReadContextRecord(db, id)
	if out == nil || out.ProofType != in.ProofType || !bytes.Equal(out.Context, in.Context) {
		t.Fatalf("record mismatch: %+v", out)
	}
	DeleteContextRecord(db, id)
	if ReadContextRecord(db, id) != nil {
		t.Fatal("deleted record returned")
	}
}
