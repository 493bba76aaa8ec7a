package elgamal

import "fmt"

const (
	MinGroupedHandles = 1
	MaxGroupedHandles = 3
)

// GroupedCiphertext is one commitment shared by several decrypt handles, one
// per recipient key. All handles use the same opening.
type GroupedCiphertext struct {
	Commitment Commitment
	Handles    []DecryptHandle
}

// GroupedCiphertextSize returns the encoded size for the given handle count.
func GroupedCiphertextSize(handles int) int {
	return PointSize + handles*DecryptHandleSize
}

// EncryptGroupedWithOpening encrypts amount once for every key in pubkeys.
func EncryptGroupedWithOpening(pubkeys []*PublicKey, amount uint64, opening *Opening) (*GroupedCiphertext, error) {
	if len(pubkeys) < MinGroupedHandles || len(pubkeys) > MaxGroupedHandles {
		return nil, fmt.Errorf("%w: %d", ErrHandleCount, len(pubkeys))
	}
	g := &GroupedCiphertext{
		Commitment: *CommitWithOpening(amount, opening),
		Handles:    make([]DecryptHandle, len(pubkeys)),
	}
	for i, pk := range pubkeys {
		g.Handles[i] = *pk.DecryptHandle(opening)
	}
	return g, nil
}

// EncryptGrouped encrypts amount for every key in pubkeys under a fresh opening.
func EncryptGrouped(pubkeys []*PublicKey, amount uint64) (*GroupedCiphertext, *Opening, error) {
	opening, err := NewOpening()
	if err != nil {
		return nil, nil, err
	}
	g, err := EncryptGroupedWithOpening(pubkeys, amount, opening)
	if err != nil {
		return nil, nil, err
	}
	return g, opening, nil
}

func GroupedCiphertextFromBytes(raw []byte, handles int) (*GroupedCiphertext, error) {
	if handles < MinGroupedHandles || handles > MaxGroupedHandles {
		return nil, fmt.Errorf("%w: %d", ErrHandleCount, handles)
	}
	if len(raw) != GroupedCiphertextSize(handles) {
		return nil, ErrMalformedCiphertext
	}
	c, err := CommitmentFromBytes(raw[:PointSize])
	if err != nil {
		return nil, err
	}
	g := &GroupedCiphertext{Commitment: *c, Handles: make([]DecryptHandle, handles)}
	for i := 0; i < handles; i++ {
		off := PointSize + i*DecryptHandleSize
		h, err := DecryptHandleFromBytes(raw[off : off+DecryptHandleSize])
		if err != nil {
			return nil, err
		}
		g.Handles[i] = *h
	}
	return g, nil
}

func (g *GroupedCiphertext) Bytes() []byte {
	out := make([]byte, 0, GroupedCiphertextSize(len(g.Handles)))
	out = append(out, g.Commitment.Bytes()...)
	for i := range g.Handles {
		out = append(out, g.Handles[i].Bytes()...)
	}
	return out
}

// Extract returns the single-recipient view at index.
func (g *GroupedCiphertext) Extract(index int) (*Ciphertext, error) {
	if index < 0 || index >= len(g.Handles) {
		return nil, fmt.Errorf("%w: handle %d of %d", ErrCiphertextExtraction, index, len(g.Handles))
	}
	return &Ciphertext{Commitment: g.Commitment, Handle: g.Handles[index]}, nil
}

func (g *GroupedCiphertext) Equal(other *GroupedCiphertext) bool {
	if len(g.Handles) != len(other.Handles) || !g.Commitment.Equal(&other.Commitment) {
		return false
	}
	for i := range g.Handles {
		if !g.Handles[i].Equal(&other.Handles[i]) {
			return false
		}
	}
	return true
}
