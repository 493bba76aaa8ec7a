package elgamal

// Backend is the ciphertext algebra consumed by the proof assemblers.
type Backend interface {
	EncryptGrouped(pubkeys []*PublicKey, amount uint64) (*GroupedCiphertext, *Opening, error)
	ExtractView(g *GroupedCiphertext, index int) (*Ciphertext, error)
	Add(a, b *Ciphertext) *Ciphertext
	Sub(a, b *Ciphertext) *Ciphertext
}

type ristrettoBackend struct{}

var defaultBackend Backend = ristrettoBackend{}

// DefaultBackend returns the pure-Go ristretto255 implementation.
func DefaultBackend() Backend {
	return defaultBackend
}

func (ristrettoBackend) EncryptGrouped(pubkeys []*PublicKey, amount uint64) (*GroupedCiphertext, *Opening, error) {
	return EncryptGrouped(pubkeys, amount)
}

func (ristrettoBackend) ExtractView(g *GroupedCiphertext, index int) (*Ciphertext, error) {
	if g == nil {
		return nil, ErrCiphertextExtraction
	}
	return g.Extract(index)
}

func (ristrettoBackend) Add(a, b *Ciphertext) *Ciphertext {
	return a.Add(b)
}

func (ristrettoBackend) Sub(a, b *Ciphertext) *Ciphertext {
	return a.Sub(b)
}
