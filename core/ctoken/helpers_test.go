package ctoken

import (
	"testing"

	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

// testMaxBalance bounds the balances tests decrypt by discrete log.
const testMaxBalance = 1 << 24

func newKeypair(t *testing.T) *elgamal.Keypair {
	t.Helper()
	kp, err := elgamal.NewKeypair()
	if err != nil {
		t.Fatalf("keypair: %v", err)
	}
	return kp
}

func newAeKey(t *testing.T) *authenc.AeKey {
	t.Helper()
	key, err := authenc.NewAeKey()
	if err != nil {
		t.Fatalf("ae key: %v", err)
	}
	return key
}

// encryptBalance returns a balance of amount under kp and its mirror.
func encryptBalance(t *testing.T, pk *elgamal.PublicKey, key *authenc.AeKey, amount uint64) (Ciphertext, authenc.AeCiphertext) {
	t.Helper()
	ct, _, err := pk.Encrypt(amount)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	mirror, err := key.Encrypt(amount)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	return CiphertextFrom(ct), mirror
}

func decrypt(t *testing.T, kp *elgamal.Keypair, ct *elgamal.Ciphertext) uint64 {
	t.Helper()
	amount, ok := kp.Secret.Decrypt(ct, testMaxBalance)
	if !ok {
		t.Fatalf("ciphertext does not decrypt below %d", testMaxBalance)
	}
	return amount
}

func decryptStored(t *testing.T, kp *elgamal.Keypair, ct Ciphertext) uint64 {
	t.Helper()
	decoded, err := ct.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return decrypt(t, kp, decoded)
}

func decryptMirrorT(t *testing.T, key *authenc.AeKey, mirror authenc.AeCiphertext) uint64 {
	t.Helper()
	amount, err := key.Decrypt(mirror)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	return amount
}

// verifyBundle checks every proof verifies, including after a wire round
// trip, and returns the decoded contexts.
func verifyBundle(t *testing.T, proofs []zkproofs.ProofData) []zkproofs.ProofContext {
	t.Helper()
	contexts := make([]zkproofs.ProofContext, len(proofs))
	for i, p := range proofs {
		decoded, err := zkproofs.DecodeProofData(p.ProofType(), p.Bytes())
		if err != nil {
			t.Fatalf("proof %d (%v): decode: %v", i, p.ProofType(), err)
		}
		if err := decoded.Verify(); err != nil {
			t.Fatalf("proof %d (%v): verify: %v", i, p.ProofType(), err)
		}
		contexts[i] = decoded.Context()
	}
	return contexts
}
