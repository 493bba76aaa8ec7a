package zkproofs

import (
	"fmt"

	"github.com/bwesterb/go-ristretto"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

func groupedValidityContextSize(handles int) int {
	return handles*32 + elgamal.GroupedCiphertextSize(handles)
}

func batchedGroupedValidityContextSize(handles int) int {
	return handles*32 + 2*elgamal.GroupedCiphertextSize(handles)
}

func checkHandleCount(handles int) error {
	if handles != 2 && handles != 3 {
		return fmt.Errorf("%w: %d handles", ErrInvalidProofType, handles)
	}
	return nil
}

func appendPubkeys(t *transcript, pubkeys []*elgamal.PublicKey) {
	for _, pk := range pubkeys {
		t.appendMessage("pubkey", pk.Bytes())
	}
}

func pubkeyBytes(pubkeys []*elgamal.PublicKey) []byte {
	parts := make([][]byte, len(pubkeys))
	for i, pk := range pubkeys {
		parts[i] = pk.Bytes()
	}
	return joinBytes(parts...)
}

func handlePoints(g *elgamal.GroupedCiphertext) []*ristretto.Point {
	out := make([]*ristretto.Point, len(g.Handles))
	for i := range g.Handles {
		out[i] = g.Handles[i].Point()
	}
	return out
}

// GroupedValidityContext is a grouped ciphertext and the keys its handles
// are bound to, in handle order.
type GroupedValidityContext struct {
	Pubkeys    []*elgamal.PublicKey
	Ciphertext *elgamal.GroupedCiphertext
}

func (c *GroupedValidityContext) ProofType() ProofType {
	if len(c.Pubkeys) == 3 {
		return ProofTypeGroupedCiphertext3HandlesValidity
	}
	return ProofTypeGroupedCiphertext2HandlesValidity
}

func (c *GroupedValidityContext) Bytes() []byte {
	return joinBytes(pubkeyBytes(c.Pubkeys), c.Ciphertext.Bytes())
}

func (c *GroupedValidityContext) transcript() *transcript {
	t := newTranscript("grouped-ciphertext-validity-instruction")
	appendPubkeys(t, c.Pubkeys)
	t.appendMessage("grouped-ciphertext", c.Ciphertext.Bytes())
	return t
}

func decodeGroupedValidityContext(raw []byte, handles int) (*GroupedValidityContext, error) {
	r := newByteReader(raw, groupedValidityContextSize(handles))
	c := &GroupedValidityContext{Pubkeys: make([]*elgamal.PublicKey, handles)}
	for i := range c.Pubkeys {
		c.Pubkeys[i] = r.pubkey()
	}
	c.Ciphertext = r.grouped(handles)
	if err := r.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

type GroupedValidityData struct {
	context *GroupedValidityContext
	proof   *GroupedCiphertextValidityProof
}

// NewGroupedValidityData proves that ct is a valid encryption of amount
// under every key in pubkeys with the given opening.
func NewGroupedValidityData(pubkeys []*elgamal.PublicKey, ct *elgamal.GroupedCiphertext, amount uint64, opening *elgamal.Opening) (*GroupedValidityData, error) {
	if err := checkHandleCount(len(pubkeys)); err != nil {
		return nil, err
	}
	expect, err := elgamal.EncryptGroupedWithOpening(pubkeys, amount, opening)
	if err != nil {
		return nil, err
	}
	if !expect.Equal(ct) {
		return nil, ErrInvalidOpening
	}
	ctx := &GroupedValidityContext{Pubkeys: pubkeys, Ciphertext: ct}
	proof, err := proveGroupedValidity(pubkeys, elgamal.ScalarFromUint64(amount), opening.Scalar(), ctx.transcript())
	if err != nil {
		return nil, err
	}
	return &GroupedValidityData{context: ctx, proof: proof}, nil
}

func (d *GroupedValidityData) ProofType() ProofType  { return d.context.ProofType() }
func (d *GroupedValidityData) Context() ProofContext { return d.context }
func (d *GroupedValidityData) Bytes() []byte         { return joinBytes(d.context.Bytes(), d.proof.Bytes()) }

func (d *GroupedValidityData) Verify() error {
	c := d.context
	return d.proof.verify(c.Pubkeys, c.Ciphertext.Commitment.Point(), handlePoints(c.Ciphertext), c.transcript())
}

// BatchedGroupedValidityContext covers the low and high halves of a split
// amount, both encrypted to the same keys.
type BatchedGroupedValidityContext struct {
	Pubkeys []*elgamal.PublicKey
	Lo      *elgamal.GroupedCiphertext
	Hi      *elgamal.GroupedCiphertext
}

func (c *BatchedGroupedValidityContext) ProofType() ProofType {
	if len(c.Pubkeys) == 3 {
		return ProofTypeBatchedGroupedCiphertext3HandlesValidity
	}
	return ProofTypeBatchedGroupedCiphertext2HandlesValidity
}

func (c *BatchedGroupedValidityContext) Bytes() []byte {
	return joinBytes(pubkeyBytes(c.Pubkeys), c.Lo.Bytes(), c.Hi.Bytes())
}

// transcript binds the context and derives the batching challenge t.
func (c *BatchedGroupedValidityContext) transcript() (*transcript, *ristretto.Scalar) {
	t := newTranscript("batched-grouped-ciphertext-validity-instruction")
	appendPubkeys(t, c.Pubkeys)
	t.appendMessage("grouped-ciphertext-lo", c.Lo.Bytes())
	t.appendMessage("grouped-ciphertext-hi", c.Hi.Bytes())
	t.appendDomainSeparator("batched-validity-proof")
	return t, t.challengeScalar("t")
}

func decodeBatchedGroupedValidityContext(raw []byte, handles int) (*BatchedGroupedValidityContext, error) {
	r := newByteReader(raw, batchedGroupedValidityContextSize(handles))
	c := &BatchedGroupedValidityContext{Pubkeys: make([]*elgamal.PublicKey, handles)}
	for i := range c.Pubkeys {
		c.Pubkeys[i] = r.pubkey()
	}
	c.Lo = r.grouped(handles)
	c.Hi = r.grouped(handles)
	if err := r.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

type BatchedGroupedValidityData struct {
	context *BatchedGroupedValidityContext
	proof   *GroupedCiphertextValidityProof
}

// NewBatchedGroupedValidityData proves both halves valid with a single
// proof over lo + t·hi.
func NewBatchedGroupedValidityData(pubkeys []*elgamal.PublicKey, lo, hi *elgamal.GroupedCiphertext, amountLo, amountHi uint64, openingLo, openingHi *elgamal.Opening) (*BatchedGroupedValidityData, error) {
	if err := checkHandleCount(len(pubkeys)); err != nil {
		return nil, err
	}
	for _, half := range []struct {
		ct      *elgamal.GroupedCiphertext
		amount  uint64
		opening *elgamal.Opening
	}{{lo, amountLo, openingLo}, {hi, amountHi, openingHi}} {
		expect, err := elgamal.EncryptGroupedWithOpening(pubkeys, half.amount, half.opening)
		if err != nil {
			return nil, err
		}
		if !expect.Equal(half.ct) {
			return nil, ErrInvalidOpening
		}
	}
	ctx := &BatchedGroupedValidityContext{Pubkeys: pubkeys, Lo: lo, Hi: hi}
	t, tChal := ctx.transcript()
	amount := muladd(tChal, elgamal.ScalarFromUint64(amountHi), elgamal.ScalarFromUint64(amountLo))
	opening := muladd(tChal, openingHi.Scalar(), openingLo.Scalar())
	proof, err := proveGroupedValidity(pubkeys, amount, opening, t)
	if err != nil {
		return nil, err
	}
	return &BatchedGroupedValidityData{context: ctx, proof: proof}, nil
}

func (d *BatchedGroupedValidityData) ProofType() ProofType  { return d.context.ProofType() }
func (d *BatchedGroupedValidityData) Context() ProofContext { return d.context }
func (d *BatchedGroupedValidityData) Bytes() []byte         { return joinBytes(d.context.Bytes(), d.proof.Bytes()) }

func (d *BatchedGroupedValidityData) Verify() error {
	c := d.context
	if len(c.Lo.Handles) != len(c.Pubkeys) || len(c.Hi.Handles) != len(c.Pubkeys) {
		return ErrLengthMismatch
	}
	t, tChal := c.transcript()
	commitment, handles := batchGrouped(c.Lo, c.Hi, tChal)
	return d.proof.verify(c.Pubkeys, commitment, handles, t)
}
