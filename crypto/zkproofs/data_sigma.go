package zkproofs

import (
	"github.com/tos-network/ctoken/crypto/elgamal"
)

const (
	pubkeyValidityContextSize               = 32
	zeroCiphertextContextSize               = 32 + 64
	ciphertextCommitmentEqualityContextSize = 32 + 64 + 32
	ciphertextCiphertextEqualityContextSize = 32 + 32 + 64 + 64
)

// PubkeyValidityContext is the key whose secret the prover knows.
type PubkeyValidityContext struct {
	Pubkey *elgamal.PublicKey
}

func (c *PubkeyValidityContext) ProofType() ProofType { return ProofTypePubkeyValidity }
func (c *PubkeyValidityContext) Bytes() []byte         { return c.Pubkey.Bytes() }

func (c *PubkeyValidityContext) transcript() *transcript {
	t := newTranscript("pubkey-validity-instruction")
	t.appendMessage("pubkey", c.Pubkey.Bytes())
	return t
}

func decodePubkeyValidityContext(raw []byte) (*PubkeyValidityContext, error) {
	r := newByteReader(raw, pubkeyValidityContextSize)
	c := &PubkeyValidityContext{Pubkey: r.pubkey()}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

type PubkeyValidityData struct {
	context *PubkeyValidityContext
	proof   *PubkeyValidityProof
}

func NewPubkeyValidityData(kp *elgamal.Keypair) (*PubkeyValidityData, error) {
	ctx := &PubkeyValidityContext{Pubkey: kp.Public}
	proof, err := provePubkeyValidity(kp, ctx.transcript())
	if err != nil {
		return nil, err
	}
	return &PubkeyValidityData{context: ctx, proof: proof}, nil
}

func (d *PubkeyValidityData) ProofType() ProofType  { return ProofTypePubkeyValidity }
func (d *PubkeyValidityData) Context() ProofContext { return d.context }
func (d *PubkeyValidityData) Bytes() []byte         { return joinBytes(d.context.Bytes(), d.proof.Bytes()) }

func (d *PubkeyValidityData) Verify() error {
	return d.proof.verify(d.context.Pubkey, d.context.transcript())
}

// ZeroCiphertextContext is a ciphertext claimed to encrypt zero.
type ZeroCiphertextContext struct {
	Pubkey     *elgamal.PublicKey
	Ciphertext *elgamal.Ciphertext
}

func (c *ZeroCiphertextContext) ProofType() ProofType { return ProofTypeZeroCiphertext }

func (c *ZeroCiphertextContext) Bytes() []byte {
	return joinBytes(c.Pubkey.Bytes(), c.Ciphertext.Bytes())
}

func (c *ZeroCiphertextContext) transcript() *transcript {
	t := newTranscript("zero-ciphertext-instruction")
	t.appendMessage("pubkey", c.Pubkey.Bytes())
	t.appendMessage("ciphertext", c.Ciphertext.Bytes())
	return t
}

func decodeZeroCiphertextContext(raw []byte) (*ZeroCiphertextContext, error) {
	r := newByteReader(raw, zeroCiphertextContextSize)
	c := &ZeroCiphertextContext{Pubkey: r.pubkey(), Ciphertext: r.ciphertext()}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

type ZeroCiphertextData struct {
	context *ZeroCiphertextContext
	proof   *ZeroCiphertextProof
}

func NewZeroCiphertextData(kp *elgamal.Keypair, ct *elgamal.Ciphertext) (*ZeroCiphertextData, error) {
	ctx := &ZeroCiphertextContext{Pubkey: kp.Public, Ciphertext: ct}
	proof, err := proveZeroCiphertext(kp, ct, ctx.transcript())
	if err != nil {
		return nil, err
	}
	return &ZeroCiphertextData{context: ctx, proof: proof}, nil
}

func (d *ZeroCiphertextData) ProofType() ProofType  { return ProofTypeZeroCiphertext }
func (d *ZeroCiphertextData) Context() ProofContext { return d.context }
func (d *ZeroCiphertextData) Bytes() []byte         { return joinBytes(d.context.Bytes(), d.proof.Bytes()) }

func (d *ZeroCiphertextData) Verify() error {
	return d.proof.verify(d.context.Pubkey, d.context.Ciphertext, d.context.transcript())
}

// CiphertextCommitmentEqualityContext binds a ciphertext to a commitment of
// the same value.
type CiphertextCommitmentEqualityContext struct {
	Pubkey     *elgamal.PublicKey
	Ciphertext *elgamal.Ciphertext
	Commitment *elgamal.Commitment
}

func (c *CiphertextCommitmentEqualityContext) ProofType() ProofType {
	return ProofTypeCiphertextCommitmentEquality
}

func (c *CiphertextCommitmentEqualityContext) Bytes() []byte {
	return joinBytes(c.Pubkey.Bytes(), c.Ciphertext.Bytes(), c.Commitment.Bytes())
}

func (c *CiphertextCommitmentEqualityContext) transcript() *transcript {
	t := newTranscript("ciphertext-commitment-equality-instruction")
	t.appendMessage("pubkey", c.Pubkey.Bytes())
	t.appendMessage("ciphertext", c.Ciphertext.Bytes())
	t.appendMessage("commitment", c.Commitment.Bytes())
	return t
}

func decodeCiphertextCommitmentEqualityContext(raw []byte) (*CiphertextCommitmentEqualityContext, error) {
	r := newByteReader(raw, ciphertextCommitmentEqualityContextSize)
	c := &CiphertextCommitmentEqualityContext{Pubkey: r.pubkey(), Ciphertext: r.ciphertext(), Commitment: r.commitment()}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

type CiphertextCommitmentEqualityData struct {
	context *CiphertextCommitmentEqualityContext
	proof   *CiphertextCommitmentEqualityProof
}

// NewCiphertextCommitmentEqualityData proves that ct, decryptable by kp,
// and commitment (opened by opening) both hide amount.
func NewCiphertextCommitmentEqualityData(kp *elgamal.Keypair, ct *elgamal.Ciphertext, commitment *elgamal.Commitment, opening *elgamal.Opening, amount uint64) (*CiphertextCommitmentEqualityData, error) {
	if !elgamal.CommitWithOpening(amount, opening).Equal(commitment) {
		return nil, ErrInvalidOpening
	}
	ctx := &CiphertextCommitmentEqualityContext{Pubkey: kp.Public, Ciphertext: ct, Commitment: commitment}
	proof, err := proveCiphertextCommitmentEquality(kp, ct, opening, amount, ctx.transcript())
	if err != nil {
		return nil, err
	}
	return &CiphertextCommitmentEqualityData{context: ctx, proof: proof}, nil
}

func (d *CiphertextCommitmentEqualityData) ProofType() ProofType {
	return ProofTypeCiphertextCommitmentEquality
}
func (d *CiphertextCommitmentEqualityData) Context() ProofContext { return d.context }
func (d *CiphertextCommitmentEqualityData) Bytes() []byte {
	return joinBytes(d.context.Bytes(), d.proof.Bytes())
}

func (d *CiphertextCommitmentEqualityData) Verify() error {
	c := d.context
	return d.proof.verify(c.Pubkey, c.Ciphertext, c.Commitment, c.transcript())
}

// CiphertextCiphertextEqualityContext binds two ciphertexts under different
// keys that hide the same value.
type CiphertextCiphertextEqualityContext struct {
	FirstPubkey      *elgamal.PublicKey
	SecondPubkey     *elgamal.PublicKey
	FirstCiphertext  *elgamal.Ciphertext
	SecondCiphertext *elgamal.Ciphertext
}

func (c *CiphertextCiphertextEqualityContext) ProofType() ProofType {
	return ProofTypeCiphertextCiphertextEquality
}

func (c *CiphertextCiphertextEqualityContext) Bytes() []byte {
	return joinBytes(c.FirstPubkey.Bytes(), c.SecondPubkey.Bytes(), c.FirstCiphertext.Bytes(), c.SecondCiphertext.Bytes())
}

func (c *CiphertextCiphertextEqualityContext) transcript() *transcript {
	t := newTranscript("ciphertext-ciphertext-equality-instruction")
	t.appendMessage("first-pubkey", c.FirstPubkey.Bytes())
	t.appendMessage("second-pubkey", c.SecondPubkey.Bytes())
	t.appendMessage("first-ciphertext", c.FirstCiphertext.Bytes())
	t.appendMessage("second-ciphertext", c.SecondCiphertext.Bytes())
	return t
}

func decodeCiphertextCiphertextEqualityContext(raw []byte) (*CiphertextCiphertextEqualityContext, error) {
	r := newByteReader(raw, ciphertextCiphertextEqualityContextSize)
	c := &CiphertextCiphertextEqualityContext{
		FirstPubkey:      r.pubkey(),
		SecondPubkey:     r.pubkey(),
		FirstCiphertext:  r.ciphertext(),
		SecondCiphertext: r.ciphertext(),
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

type CiphertextCiphertextEqualityData struct {
	context *CiphertextCiphertextEqualityContext
	proof   *CiphertextCiphertextEqualityProof
}

// NewCiphertextCiphertextEqualityData proves that firstCT (decryptable by
// first) and secondCT (encrypted to second under secondOpening) hide amount.
func NewCiphertextCiphertextEqualityData(first *elgamal.Keypair, second *elgamal.PublicKey, firstCT, secondCT *elgamal.Ciphertext, secondOpening *elgamal.Opening, amount uint64) (*CiphertextCiphertextEqualityData, error) {
	if !second.EncryptWithOpening(amount, secondOpening).Equal(secondCT) {
		return nil, ErrInvalidOpening
	}
	ctx := &CiphertextCiphertextEqualityContext{
		FirstPubkey:      first.Public,
		SecondPubkey:     second,
		FirstCiphertext:  firstCT,
		SecondCiphertext: secondCT,
	}
	proof, err := proveCiphertextCiphertextEquality(first, second, firstCT, secondOpening, amount, ctx.transcript())
	if err != nil {
		return nil, err
	}
	return &CiphertextCiphertextEqualityData{context: ctx, proof: proof}, nil
}

func (d *CiphertextCiphertextEqualityData) ProofType() ProofType {
	return ProofTypeCiphertextCiphertextEquality
}
func (d *CiphertextCiphertextEqualityData) Context() ProofContext { return d.context }
func (d *CiphertextCiphertextEqualityData) Bytes() []byte {
	return joinBytes(d.context.Bytes(), d.proof.Bytes())
}

func (d *CiphertextCiphertextEqualityData) Verify() error {
	c := d.context
	return d.proof.verify(c.FirstPubkey, c.SecondPubkey, c.FirstCiphertext, c.SecondCiphertext, c.transcript())
}
