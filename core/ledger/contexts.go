package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/core/rawdb"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

// CreateContextRecord verifies data and stores its context under a fresh
// id. Later operations may point at the record instead of carrying the
// proof inline.
func (l *Ledger) CreateContextRecord(data zkproofs.ProofData, authority common.Address) (id uuid.UUID, err error) {
	defer func() { err = finish("create_context_record", err, "id", id) }()

	rec, err := ctoken.NewContextRecord(data, authority)
	if err != nil {
		return uuid.Nil, err
	}
	id = uuid.New()
	rawdb.WriteContextRecord(l.db, id, rec)
	return id, nil
}

// CloseContextRecord removes a record. Only its authority may close it.
func (l *Ledger) CloseContextRecord(id uuid.UUID, authority common.Address) (err error) {
	defer func() { err = finish("close_context_record", err, "id", id) }()

	rec, err := l.ReadContextRecord(id)
	if err != nil {
		return err
	}
	if rec.Authority != authority {
		return ErrContextRecordAuthority
	}
	rawdb.DeleteContextRecord(l.db, id)
	return nil
}
