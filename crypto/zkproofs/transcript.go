package zkproofs

import (
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

type transcript struct {
	t *merlin.Transcript
}

func newTranscript(label string) *transcript {
	return &transcript{t: merlin.NewTranscript(label)}
}

func (t *transcript) appendMessage(label string, msg []byte) {
	t.t.AppendMessage([]byte(label), msg)
}

func (t *transcript) appendU64(label string, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	t.appendMessage(label, buf[:])
}

func (t *transcript) appendPoint(label string, p *ristretto.Point) {
	t.appendMessage(label, p.Bytes())
}

// validateAndAppendPoint rejects the identity before appending.
func (t *transcript) validateAndAppendPoint(label string, p *ristretto.Point) error {
	if p.Equals(elgamal.IdentityPoint()) {
		return ErrIdentityPoint
	}
	t.appendPoint(label, p)
	return nil
}

func (t *transcript) appendScalar(label string, s *ristretto.Scalar) {
	t.appendMessage(label, s.Bytes())
}

func (t *transcript) appendDomainSeparator(label string) {
	t.appendMessage("dom-sep", []byte(label))
}

func (t *transcript) appendDomainSeparatorN(label string, n uint64) {
	t.appendDomainSeparator(label)
	t.appendU64("n", n)
}

func (t *transcript) challengeScalar(label string) *ristretto.Scalar {
	var wide [64]byte
	copy(wide[:], t.t.ExtractBytes([]byte(label), 64))
	var s ristretto.Scalar
	return s.SetReduced(&wide)
}
